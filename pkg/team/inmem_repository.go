package team

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	members map[string]Member
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		members: make(map[string]Member),
	}
}

func (r *InMemoryRepository) CreateMember(ctx context.Context, m Member) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.MemberID] = m
	return m, nil
}

func (r *InMemoryRepository) ListMembers(ctx context.Context) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sortMembers(out)
	return out, nil
}

func (r *InMemoryRepository) DeleteMember(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, memberID)
	return nil
}

func sortMembers(ms []Member) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.Before(ms[j].CreatedAt)
		}
		return ms[i].MemberID < ms[j].MemberID
	})
}

func (r *InMemoryRepository) snapshot() []Member {
	members, _ := r.ListMembers(context.Background())
	return members
}

func (r *InMemoryRepository) restore(members []Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = make(map[string]Member, len(members))
	for _, m := range members {
		r.members[m.MemberID] = m
	}
}
