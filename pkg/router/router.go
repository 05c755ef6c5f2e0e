package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tendant/protus/pkg/client"
	"github.com/tendant/protus/pkg/common"
	discussionapi "github.com/tendant/protus/pkg/discussion/api"
	externalproviderapi "github.com/tendant/protus/pkg/externalprovider/api"
	iamapi "github.com/tendant/protus/pkg/iam/api"
	loginapi "github.com/tendant/protus/pkg/login/api"
	projectapi "github.com/tendant/protus/pkg/project/api"
	sessionsapi "github.com/tendant/protus/pkg/sessions/api"
	"github.com/tendant/protus/pkg/signup"
	teamapi "github.com/tendant/protus/pkg/team/api"
)

// Config holds the handles mounted by SetupRoutes.
type Config struct {
	SignupHandle           signup.Handle
	LoginHandle            loginapi.Handle
	SessionsHandle         *sessionsapi.Handler
	ExternalProviderHandle *externalproviderapi.Handle
	UserHandle             iamapi.Handle
	ProjectHandle          projectapi.Handle
	TeamHandle             teamapi.Handle
	DiscussionHandle       discussionapi.Handle

	// TokenValidator resolves bearer tokens for the admin routes.
	TokenValidator       client.TokenValidator
	AdminRoutesProtected bool
	RequestTimeout       time.Duration
}

// SetupRoutes mounts every API route on router.
func SetupRoutes(router chi.Router, cfg Config) {
	router.NotFound(common.NotFound)
	router.MethodNotAllowed(common.NotFound)

	router.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		// Several handles share the /auth prefix, so they register on one sub-router.
		r.Route("/auth", func(r chi.Router) {
			cfg.SignupHandle.RegisterRoutes(r)
			cfg.LoginHandle.RegisterRoutes(r)
			if cfg.SessionsHandle != nil {
				cfg.SessionsHandle.RegisterRoutes(r)
			}
			if cfg.ExternalProviderHandle != nil {
				cfg.ExternalProviderHandle.RegisterRoutes(r)
			}
		})

		r.Route("/users", func(r chi.Router) {
			if cfg.AdminRoutesProtected {
				r.Use(client.AuthUserMiddleware(cfg.TokenValidator))
				r.Use(client.RequireAdmin)
			}
			cfg.UserHandle.RegisterRoutes(r)
		})

		cfg.ProjectHandle.RegisterRoutes(r)
		cfg.TeamHandle.RegisterRoutes(r)
		cfg.DiscussionHandle.RegisterRoutes(r)
	})
}
