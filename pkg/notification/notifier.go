package notification

// NotificationSystem represents a delivery channel.
type NotificationSystem string

// NoticeType identifies a kind of message and selects its template.
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	LoginOTPNotice         NoticeType = "login_otp"
	ProjectCompletedNotice NoticeType = "project_completed"
)

type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address)
	Subject string            // Optional: overrides the template subject
	Body    string            // Optional: pre-rendered content
	Data    map[string]string // Template values
}

// NoticeTemplate holds the subject and bodies for one NoticeType.
// Text and Html are Go templates executed against NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
