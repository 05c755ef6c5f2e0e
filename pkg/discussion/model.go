package discussion

import "time"

// Message attribute names match the legacy discussions table. A nil
// ProjectID marks a message in the general channel.
type Message struct {
	MessageID string    `json:"messageId" dynamodbav:"messageId"`
	ProjectID *string   `json:"projectId" dynamodbav:"projectId"`
	UserID    string    `json:"userId" dynamodbav:"userId"`
	UserName  string    `json:"userName" dynamodbav:"userName"`
	Content   string    `json:"content" dynamodbav:"content"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}
