package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NewUser carries the caller-supplied attributes of an account being created.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	GoogleID     string
}

// UserService provisions accounts with first-user bootstrap.
type UserService struct {
	repo  UserRepository
	now   func() time.Time
	newID func() string
}

// Option is a function that configures a UserService
type Option func(*UserService)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *UserService) {
		s.now = now
	}
}

// WithIDGenerator overrides user id generation
func WithIDGenerator(newID func() string) Option {
	return func(s *UserService) {
		s.newID = newID
	}
}

func NewUserService(repo UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying store for read paths.
func (s *UserService) Repository() UserRepository {
	return s.repo
}

func (s *UserService) newRecord(nu NewUser) User {
	return User{
		UserID:    s.newID(),
		Email:     nu.Email,
		Name:      nu.Name,
		Password:  nu.PasswordHash,
		Role:      RoleAdmin,
		Status:    StatusActive,
		GoogleID:  nu.GoogleID,
		CreatedAt: s.now().UTC(),
	}
}

// Bootstrap creates the account only if the store is empty, as an active
// Admin. It fails with ErrUsersExist otherwise.
func (s *UserService) Bootstrap(ctx context.Context, nu NewUser) (User, error) {
	created, err := s.repo.CreateFirstUser(ctx, s.newRecord(nu))
	if err != nil {
		if errors.Is(err, ErrUsersExist) {
			return User{}, err
		}
		return User{}, fmt.Errorf("failed to create first user: %w", err)
	}
	slog.Info("Bootstrapped first user as admin", "userId", created.UserID, "email", created.Email)
	return created, nil
}

// Provision creates an account. The very first account in the store becomes
// an active Admin; every later one is Pending until approved. The boolean
// result reports whether this call bootstrapped the store. ErrEmailExists is
// returned unchanged for duplicate emails.
func (s *UserService) Provision(ctx context.Context, nu NewUser) (User, bool, error) {
	created, err := s.Bootstrap(ctx, nu)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, ErrUsersExist) {
		return User{}, false, err
	}

	u := s.newRecord(nu)
	u.Role = RolePending
	u.Status = StatusPending
	created, err = s.repo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, false, err
		}
		return User{}, false, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("Created pending user", "userId", created.UserID, "email", created.Email)
	return created, false, nil
}
