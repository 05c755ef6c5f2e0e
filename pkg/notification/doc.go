// Package notification delivers out-of-band messages such as login codes.
//
// A NotificationManager maps a NoticeType to a template and a
// NotificationSystem to a Notifier. Two notifiers ship with the package:
// EmailNotifier (SMTP via go-mail) and LogNotifier, which writes the
// rendered message to the structured log and stands in for email in
// development. MockNotifier records what was sent for tests.
//
//	nm, err := notification.NewNotificationManager(
//		notification.WithLogNotifier(slog.Default()),
//		notification.WithDefaultTemplates(),
//	)
//	err = nm.Send(notification.LoginOTPNotice, notification.EmailSystem, notification.NotificationData{
//		To:   "alice@example.com",
//		Data: map[string]string{"Name": "Alice", "OTP": "123456"},
//	})
package notification
