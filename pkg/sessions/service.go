package sessions

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/tokengenerator"
	"github.com/tendant/protus/pkg/user"
)

// Service resolves and revokes session tokens
type Service struct {
	users user.UserRepository
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new session service
func NewService(users user.UserRepository, opts ...Option) *Service {
	s := &Service{users: users, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateToken returns the user holding token, or nil when the token is
// empty, unknown or expired. An expired token is removed from its record.
func (s *Service) ValidateToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}

	u, err := s.users.FindUserByToken(ctx, token)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by token: %w", err)
	}

	if tokengenerator.Expired(u, s.now()) {
		slog.Info("Session token expired", "userId", u.UserID)
		s.revoke(ctx, u.UserID, token)
		return nil, nil
	}
	return &u, nil
}

// GetMe returns the public view of the token's user.
func (s *Service) GetMe(ctx context.Context, token string) (user.PublicUser, error) {
	u, err := s.ValidateToken(ctx, token)
	if err != nil {
		return user.PublicUser{}, errors.InternalWrap(err, "failed to validate token")
	}
	if u == nil {
		return user.PublicUser{}, errors.New(errors.ErrCodeTokenInvalid, "Invalid token")
	}
	return u.ToPublic(), nil
}

// Logout revokes token. Unknown or expired tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	u, err := s.ValidateToken(ctx, token)
	if err != nil {
		return errors.InternalWrap(err, "failed to validate token")
	}
	if u == nil {
		return nil
	}
	s.revoke(ctx, u.UserID, token)
	slog.Info("User logged out", "userId", u.UserID)
	return nil
}

// revoke clears token from the record unless it has been replaced meanwhile.
func (s *Service) revoke(ctx context.Context, userID, token string) {
	_, err := s.users.UpdateUser(ctx, userID, user.UserUpdate{ClearToken: true, ExpectToken: &token})
	if err == nil || stderrors.Is(err, user.ErrConditionFailed) || stderrors.Is(err, user.ErrUserNotFound) {
		return
	}
	slog.Error("Failed to revoke session token", "userId", userID, "err", err)
}
