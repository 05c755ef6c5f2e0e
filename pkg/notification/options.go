package notification

import "log/slog"

// NotificationManagerOption is a function that configures a NotificationManager
type NotificationManagerOption func(*NotificationManager) error

// WithSMTP adds an email notifier with the provided SMTP configuration
func WithSMTP(config SMTPConfig) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		emailNotifier, err := NewEmailNotifier(config)
		if err != nil {
			return err
		}
		nm.RegisterNotifier(EmailSystem, emailNotifier)
		return nil
	}
}

// WithLogNotifier delivers email notices to the log instead of an SMTP server.
func WithLogNotifier(logger *slog.Logger) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		nm.RegisterNotifier(EmailSystem, NewLogNotifier(logger))
		return nil
	}
}

// WithNotifier registers an arbitrary notifier, typically a MockNotifier in tests.
func WithNotifier(system NotificationSystem, notifier Notifier) NotificationManagerOption {
	return func(nm *NotificationManager) error {
		nm.RegisterNotifier(system, notifier)
		return nil
	}
}

// WithDefaultTemplates registers the built-in email templates.
func WithDefaultTemplates() NotificationManagerOption {
	return func(nm *NotificationManager) error {
		for noticeType, tmpl := range defaultTemplates {
			if err := nm.RegisterNotification(noticeType, EmailSystem, tmpl); err != nil {
				return err
			}
		}
		return nil
	}
}
