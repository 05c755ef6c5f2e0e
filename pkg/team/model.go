package team

import "time"

const DefaultRole = "Contributor"

// Member attribute names match the legacy team table.
type Member struct {
	MemberID  string    `json:"memberId" dynamodbav:"memberId"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Role      string    `json:"role" dynamodbav:"role"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}
