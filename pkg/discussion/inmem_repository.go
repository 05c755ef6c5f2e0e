package discussion

import (
	"context"
	"sync"
)

type InMemoryRepository struct {
	mu       sync.RWMutex
	messages map[string]Message
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{messages: make(map[string]Message)}
}

func (r *InMemoryRepository) CreateMessage(ctx context.Context, m Message) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.MessageID] = m
	return m, nil
}

func (r *InMemoryRepository) ListMessages(ctx context.Context, projectID string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Message{}
	for _, m := range r.messages {
		if inProject(m, projectID) {
			out = append(out, m)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) DeleteMessage(ctx context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, messageID)
	return nil
}

func (r *InMemoryRepository) restore(messages []Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = make(map[string]Message, len(messages))
	for _, m := range messages {
		r.messages[m.MessageID] = m
	}
}
