package client

import (
	"log/slog"
	"net/http"

	"github.com/tendant/protus/pkg/common"
	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/user"
)

// RequireRole returns a middleware that checks if the authenticated, active
// user has any of the specified roles.
// Returns 401 Unauthorized if not authenticated.
// Returns 403 Forbidden if authenticated but missing required role.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := GetAuthUser(r)
			if !ok {
				slog.Debug("Unauthenticated request to role-protected resource", "requiredRoles", roles)
				common.RenderError(w, r, errors.Unauthorized("Unauthorized"))
				return
			}

			if !authUser.HasAnyRole(roles...) || authUser.Status != user.StatusActive {
				slog.Warn("User lacks required role",
					"userId", authUser.UserID,
					"userRole", authUser.Role,
					"requiredRoles", roles)
				common.RenderError(w, r, errors.Forbidden("Forbidden: insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only active Admin users.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(user.RoleAdmin)(next)
}
