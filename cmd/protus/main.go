// Command protus runs the protus API: registration, two-step login,
// sessions, Google sign-in, user administration, projects, the team roster
// and discussions.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/tendant/chi-demo/app"

	"github.com/tendant/protus/pkg/config"
	"github.com/tendant/protus/pkg/discussion"
	discussionapi "github.com/tendant/protus/pkg/discussion/api"
	"github.com/tendant/protus/pkg/externalprovider"
	externalproviderapi "github.com/tendant/protus/pkg/externalprovider/api"
	"github.com/tendant/protus/pkg/iam"
	iamapi "github.com/tendant/protus/pkg/iam/api"
	"github.com/tendant/protus/pkg/login"
	loginapi "github.com/tendant/protus/pkg/login/api"
	"github.com/tendant/protus/pkg/notification"
	"github.com/tendant/protus/pkg/project"
	projectapi "github.com/tendant/protus/pkg/project/api"
	"github.com/tendant/protus/pkg/router"
	"github.com/tendant/protus/pkg/sessions"
	sessionsapi "github.com/tendant/protus/pkg/sessions/api"
	"github.com/tendant/protus/pkg/signup"
	"github.com/tendant/protus/pkg/team"
	teamapi "github.com/tendant/protus/pkg/team/api"
	"github.com/tendant/protus/pkg/tokengenerator"
	"github.com/tendant/protus/pkg/twofa"
	"github.com/tendant/protus/pkg/user"
)

func main() {
	cfg, err := config.Load(".env", ".env.local")
	if err != nil {
		slog.Error("Failed loading config", "err", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("Failed opening store", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer st.close()

	notificationManager, err := newNotificationManager(cfg)
	if err != nil {
		slog.Error("Failed creating notification manager", "notifier", cfg.Notifier, "err", err)
		os.Exit(1)
	}

	hasher, err := login.NewPasswordHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		slog.Error("Failed creating password hasher", "err", err)
		os.Exit(1)
	}
	if cfg.Auth.PasswordHasher != login.HasherBcrypt {
		slog.Warn("Passwords are hashed with unsalted SHA-256, set PASSWORD_HASHER=bcrypt for new deployments")
	}

	sessionIssuer := tokengenerator.NewSessionIssuer(nil, cfg.Auth.SessionTTL)
	userService := user.NewUserService(st.users)
	sessionService := sessions.NewService(st.users)

	signupService := signup.NewSignupService(userService,
		signup.WithPasswordHasher(hasher),
		signup.WithRegistrationEnabled(cfg.Auth.RegistrationEnabled),
	)
	loginService := login.NewLoginService(st.users,
		login.WithPasswordHasher(hasher),
		login.WithOTPGenerator(twofa.NewOTPGenerator(twofa.WithTTL(cfg.Auth.OTPTTL))),
		login.WithSessionIssuer(sessionIssuer),
		login.WithNotificationManager(notificationManager),
	)
	googleService := externalprovider.NewGoogleService(cfg.Google, userService,
		externalprovider.WithSessionIssuer(sessionIssuer),
		externalprovider.WithRegistrationEnabled(cfg.Auth.RegistrationEnabled),
	)
	if !cfg.Google.IsConfigured() {
		slog.Warn("Google sign-in is not configured, set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	projectService := project.NewProjectService(st.projects, st.users,
		project.WithNotificationManager(notificationManager),
	)

	server := app.NewApp(app.WithPort(cfg.Port))
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins(),
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		router.SetupRoutes(r, router.Config{
			SignupHandle:   signup.NewHandle(signupService),
			LoginHandle:    loginapi.NewHandle(loginService),
			SessionsHandle: sessionsapi.NewHandler(sessionService),
			ExternalProviderHandle: externalproviderapi.NewHandle(googleService).
				WithFrontendURL(cfg.FrontendURL).
				WithSecureCookie(strings.HasPrefix(cfg.BaseURL, "https://")),
			UserHandle:           iamapi.NewHandle(iam.NewIamService(st.users)),
			ProjectHandle:        projectapi.NewHandle(projectService),
			TeamHandle:           teamapi.NewHandle(team.NewTeamService(st.team)),
			DiscussionHandle:     discussionapi.NewHandle(discussion.NewDiscussionService(st.discussions)),
			TokenValidator:       sessionService,
			AdminRoutesProtected: cfg.Auth.AdminRoutesProtected,
			RequestTimeout:       cfg.RequestTimeout,
		})
	})

	slog.Info("Protus API ready",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"notifier", cfg.Notifier,
		"registration", cfg.Auth.RegistrationEnabled,
		"adminRoutesProtected", cfg.Auth.AdminRoutesProtected,
	)
	server.Run()
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func newNotificationManager(cfg config.Config) (*notification.NotificationManager, error) {
	deliver := notification.WithLogNotifier(slog.Default().With("component", "notification"))
	if cfg.Notifier == "email" {
		deliver = notification.WithSMTP(cfg.Email.ToSMTPConfig())
	}
	return notification.NewNotificationManager(deliver, notification.WithDefaultTemplates())
}
