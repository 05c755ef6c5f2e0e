package notification

import (
	"fmt"
	"log/slog"
)

// LogNotifier writes rendered notices to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier writes to logger, or to the default logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	if notification.To == "" {
		return fmt.Errorf("notification requires 'To' address")
	}
	subject, err := subjectFor(notification, template)
	if err != nil {
		return err
	}
	body := notification.Body
	if body == "" {
		body, err = renderText(string(noticeType), template.Text, notification.Data)
		if err != nil {
			return err
		}
	}
	l.logger.Info("Notification", "type", noticeType, "to", notification.To, "subject", subject, "body", body)
	return nil
}
