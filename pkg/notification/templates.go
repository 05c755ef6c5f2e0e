package notification

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

var defaultTemplates = map[NoticeType]NoticeTemplate{
	LoginOTPNotice: {
		Subject: "Your login code",
		Text:    "Hi {{.Name}},\n\nYour login code is {{.OTP}}. It expires in {{.ExpiresIn}}.\n",
		Html:    `<p>Hi {{.Name}},</p><p>Your login code is <strong>{{.OTP}}</strong>. It expires in {{.ExpiresIn}}.</p>`,
	},
	ProjectCompletedNotice: {
		Subject: "Project completed: {{.ProjectName}}",
		Text:    "All tasks in project {{.ProjectName}} ({{.ProjectID}}) are done.\n",
		Html:    `<p>All tasks in project <strong>{{.ProjectName}}</strong> ({{.ProjectID}}) are done.</p>`,
	},
}

func renderText(name, tmpl string, data map[string]string) (string, error) {
	if tmpl == "" {
		return "", nil
	}
	t, err := texttemplate.New(name).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(name, tmpl string, data map[string]string) (string, error) {
	if tmpl == "" {
		return "", nil
	}
	t, err := htmltemplate.New(name).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// subjectFor renders the template subject unless the caller supplied one.
func subjectFor(notification NotificationData, tmpl NoticeTemplate) (string, error) {
	if notification.Subject != "" {
		return notification.Subject, nil
	}
	return renderText("subject", tmpl.Subject, notification.Data)
}
