package signup

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/login"
	"github.com/tendant/protus/pkg/user"
)

// SignupService handles user registration business logic
type SignupService struct {
	userService         *user.UserService
	hasher              login.PasswordHasher
	registrationEnabled bool
}

// SignupServiceOption is a functional option for configuring SignupService
type SignupServiceOption func(*SignupService)

// NewSignupService creates a new SignupService with the given options
func NewSignupService(userService *user.UserService, opts ...SignupServiceOption) *SignupService {
	s := &SignupService{
		userService:         userService,
		hasher:              login.SHA256Hasher{},
		registrationEnabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithPasswordHasher sets how new passwords are hashed.
func WithPasswordHasher(hasher login.PasswordHasher) SignupServiceOption {
	return func(s *SignupService) {
		s.hasher = hasher
	}
}

// WithRegistrationEnabled toggles open registration. The bootstrap account
// can always be created.
func WithRegistrationEnabled(enabled bool) SignupServiceOption {
	return func(s *SignupService) {
		s.registrationEnabled = enabled
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a password account. The first account becomes an active
// Admin and later ones wait for approval.
func (s *SignupService) Register(ctx context.Context, req RegisterRequest) (user.PublicUser, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return user.PublicUser{}, errors.InvalidInput("email, password, and name are required")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.PublicUser{}, errors.InternalWrap(err, "failed to hash password")
	}
	nu := user.NewUser{Email: req.Email, Name: req.Name, PasswordHash: hash}

	var created user.User
	if s.registrationEnabled {
		created, _, err = s.userService.Provision(ctx, nu)
	} else {
		created, err = s.userService.Bootstrap(ctx, nu)
	}
	if err != nil {
		switch {
		case stderrors.Is(err, user.ErrEmailExists):
			return user.PublicUser{}, errors.New(errors.ErrCodeUserAlreadyExists, "User already exists")
		case stderrors.Is(err, user.ErrUsersExist):
			slog.Warn("Registration attempt while registration is disabled")
			return user.PublicUser{}, errors.Forbidden("Registration is disabled")
		}
		return user.PublicUser{}, errors.InternalWrap(err, "failed to register user")
	}
	return created.ToPublic(), nil
}
