package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tendant/protus/pkg/user"
)

// AuthUser is the identity attached to a request by AuthUserMiddleware.
type AuthUser struct {
	UserID string
	Email  string
	Name   string
	Role   string
	Status string
}

func (i AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", i.UserID),
		slog.String("role", i.Role),
	)
}

// HasAnyRole reports whether the identity holds one of roles.
func (i AuthUser) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.Role == role {
			return true
		}
	}
	return false
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "protus context value " + k.name
}

var AuthUserKey = &contextKey{"AuthUser"}

// TokenValidator resolves a session token to its user. A nil user with a nil
// error means the token identifies nobody.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*user.User, error)
}

// TokenFromHeader returns the bearer token of the Authorization header, or
// the header value itself when it carries no "Bearer " prefix.
func TokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// AuthUserMiddleware resolves the bearer token of every request and attaches
// the resulting AuthUser to the context. Requests without a valid token pass
// through unauthenticated; RequireRole and RequireAdmin enforce access.
func AuthUserMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromHeader(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			u, err := validator.ValidateToken(ctx, token)
			if err != nil {
				slog.Error("Failed to validate token", "err", err)
			}
			if u != nil {
				authUser := &AuthUser{UserID: u.UserID, Email: u.Email, Name: u.Name, Role: u.Role, Status: u.Status}
				slog.Debug("authenticated user", "user", authUser)
				ctx = context.WithValue(ctx, AuthUserKey, authUser)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAuthUser returns the identity attached by AuthUserMiddleware.
func GetAuthUser(r *http.Request) (*AuthUser, bool) {
	authUser, ok := r.Context().Value(AuthUserKey).(*AuthUser)
	return authUser, ok && authUser != nil
}
