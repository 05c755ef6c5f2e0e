package discussion

import (
	"context"
	"sort"
)

// Repository stores messages. ListMessages returns newest first and, for a
// non-empty projectID, only that project's messages.
type Repository interface {
	CreateMessage(ctx context.Context, m Message) (Message, error)
	ListMessages(ctx context.Context, projectID string) ([]Message, error)
	DeleteMessage(ctx context.Context, messageID string) error
}

func sortNewestFirst(ms []Message) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.After(ms[j].CreatedAt)
		}
		return ms[i].MessageID > ms[j].MessageID
	})
}

func inProject(m Message, projectID string) bool {
	return projectID == "" || (m.ProjectID != nil && *m.ProjectID == projectID)
}
