package discussion

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/protus/pkg/errors"
)

// NewMessage is the input of PostMessage. An empty ProjectID posts to the
// general channel.
type NewMessage struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Content   string `json:"content"`
}

type DiscussionService struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type Option func(*DiscussionService)

func WithClock(now func() time.Time) Option {
	return func(s *DiscussionService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *DiscussionService) {
		s.newID = newID
	}
}

func NewDiscussionService(repo Repository, opts ...Option) *DiscussionService {
	s := &DiscussionService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DiscussionService) ListMessages(ctx context.Context, projectID string) ([]Message, error) {
	messages, err := s.repo.ListMessages(ctx, projectID)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list messages")
	}
	return messages, nil
}

func (s *DiscussionService) PostMessage(ctx context.Context, nm NewMessage) (Message, error) {
	if strings.TrimSpace(nm.Content) == "" || nm.UserID == "" || nm.UserName == "" {
		return Message{}, errors.InvalidInput("content, userId, and userName are required")
	}
	m := Message{
		MessageID: s.newID(),
		UserID:    nm.UserID,
		UserName:  nm.UserName,
		Content:   nm.Content,
		CreatedAt: s.now().UTC(),
	}
	if nm.ProjectID != "" {
		projectID := nm.ProjectID
		m.ProjectID = &projectID
	}

	created, err := s.repo.CreateMessage(ctx, m)
	if err != nil {
		return Message{}, errors.InternalWrap(err, "failed to post message")
	}
	slog.Info("Message posted", "messageId", created.MessageID, "userId", created.UserID)
	return created, nil
}

func (s *DiscussionService) DeleteMessage(ctx context.Context, messageID string) error {
	if err := s.repo.DeleteMessage(ctx, messageID); err != nil {
		return errors.InternalWrap(err, "failed to delete message")
	}
	return nil
}
