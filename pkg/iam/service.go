package iam

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/user"
)

// IamService performs administrative actions on user accounts.
type IamService struct {
	users user.UserRepository
}

func NewIamService(users user.UserRepository) *IamService {
	return &IamService{users: users}
}

// ListUsers returns every account, oldest first, without credentials.
func (s *IamService) ListUsers(ctx context.Context) ([]user.PublicUser, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list users")
	}
	return user.ToPublicList(users), nil
}

// ApproveUser assigns role and activates the account.
func (s *IamService) ApproveUser(ctx context.Context, userID, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return errors.InvalidInput("role is required")
	}
	status := user.StatusActive
	if err := s.update(ctx, userID, user.UserUpdate{Role: &role, Status: &status}); err != nil {
		return err
	}
	slog.Info("User approved", "userId", userID, "role", role)
	return nil
}

// UpdateUserRole changes the role and leaves the status untouched.
func (s *IamService) UpdateUserRole(ctx context.Context, userID, role string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return errors.InvalidInput("role is required")
	}
	if err := s.update(ctx, userID, user.UserUpdate{Role: &role}); err != nil {
		return err
	}
	slog.Info("User role updated", "userId", userID, "role", role)
	return nil
}

// DeleteUser removes the account. Deleting an unknown id succeeds.
func (s *IamService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return errors.InternalWrap(err, "failed to delete user")
	}
	slog.Info("User deleted", "userId", userID)
	return nil
}

func (s *IamService) update(ctx context.Context, userID string, upd user.UserUpdate) error {
	if _, err := s.users.UpdateUser(ctx, userID, upd); err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return errors.NotFound("user", userID)
		}
		return errors.InternalWrap(err, "failed to update user")
	}
	return nil
}
