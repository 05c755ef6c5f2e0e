package team

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/protus/pkg/errors"
)

// NewMember is the input of AddMember. An empty role becomes DefaultRole.
type NewMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type TeamService struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

type Option func(*TeamService)

func WithClock(now func() time.Time) Option {
	return func(s *TeamService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *TeamService) {
		s.newID = newID
	}
}

func NewTeamService(repo Repository, opts ...Option) *TeamService {
	s := &TeamService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TeamService) ListMembers(ctx context.Context) ([]Member, error) {
	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list members")
	}
	return members, nil
}

func (s *TeamService) AddMember(ctx context.Context, nm NewMember) (Member, error) {
	name := strings.TrimSpace(nm.Name)
	email := strings.TrimSpace(nm.Email)
	if name == "" || email == "" {
		return Member{}, errors.InvalidInput("name and email are required")
	}
	role := nm.Role
	if role == "" {
		role = DefaultRole
	}

	m, err := s.repo.CreateMember(ctx, Member{
		MemberID:  s.newID(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return Member{}, errors.InternalWrap(err, "failed to add member")
	}
	slog.Info("Team member added", "memberId", m.MemberID, "role", m.Role)
	return m, nil
}

// RemoveMember succeeds whether or not the member exists.
func (s *TeamService) RemoveMember(ctx context.Context, memberID string) error {
	if err := s.repo.DeleteMember(ctx, memberID); err != nil {
		return errors.InternalWrap(err, "failed to remove member")
	}
	slog.Info("Team member removed", "memberId", memberID)
	return nil
}
