package user

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrUsersExist      = errors.New("store already holds users")
	ErrTokenExists     = errors.New("session token already in use")
	ErrConditionFailed = errors.New("user update precondition failed")
)

// UserRepository is the credential store adapter. Lookups by email and token
// are indexed; uniqueness and first-user detection are enforced by the store.
type UserRepository interface {
	// CreateUser inserts u, failing with ErrEmailExists if the email is taken.
	CreateUser(ctx context.Context, u User) (User, error)
	// CreateFirstUser inserts u only when the store holds no user at all,
	// failing with ErrUsersExist otherwise.
	CreateFirstUser(ctx context.Context, u User) (User, error)

	GetUserByID(ctx context.Context, userID string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByToken(ctx context.Context, token string) (User, error)
	FindUsersByRoleStatus(ctx context.Context, role, status string) ([]User, error)
	ListUsers(ctx context.Context) ([]User, error)

	// UpdateUser applies upd and returns the updated record. It never creates
	// a record: a missing id yields ErrUserNotFound.
	UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error)
	// DeleteUser removes the record and its index entries. Deleting a missing
	// record is not an error.
	DeleteUser(ctx context.Context, userID string) error
}
