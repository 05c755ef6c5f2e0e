package externalprovider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/tendant/protus/pkg/config"
	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/tokengenerator"
	"github.com/tendant/protus/pkg/user"
)

// exchangeTimeout bounds the code exchange and the profile fetch together.
const exchangeTimeout = 10 * time.Second

var scopes = []string{"openid", "email", "profile"}

// GoogleProfile is the userinfo answer. The v2 endpoint names the subject
// "id"; the OpenID Connect endpoint names it "sub".
type GoogleProfile struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Subject returns the provider's stable id for the account.
func (p GoogleProfile) Subject() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Sub
}

// DisplayName returns the profile name, or the local part of the email.
func (p GoogleProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}

// GoogleService signs users in with a Google authorization code. Federated
// logins skip the one-time code step.
type GoogleService struct {
	cfg                 config.GoogleConfig
	userService         *user.UserService
	sessionIssuer       *tokengenerator.SessionIssuer
	httpClient          *http.Client
	registrationEnabled bool
	now                 func() time.Time
}

// Option configures a GoogleService
type Option func(*GoogleService)

// WithHTTPClient sets the client used to reach the provider.
func WithHTTPClient(client *http.Client) Option {
	return func(s *GoogleService) {
		s.httpClient = client
	}
}

func WithSessionIssuer(issuer *tokengenerator.SessionIssuer) Option {
	return func(s *GoogleService) {
		s.sessionIssuer = issuer
	}
}

// WithRegistrationEnabled controls whether unknown emails get an account.
// The bootstrap account can always be created.
func WithRegistrationEnabled(enabled bool) Option {
	return func(s *GoogleService) {
		s.registrationEnabled = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *GoogleService) {
		s.now = now
	}
}

func NewGoogleService(cfg config.GoogleConfig, userService *user.UserService, opts ...Option) *GoogleService {
	s := &GoogleService{
		cfg:                 cfg,
		userService:         userService,
		sessionIssuer:       tokengenerator.NewSessionIssuer(nil, 0),
		httpClient:          http.DefaultClient,
		registrationEnabled: true,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GoogleService) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  s.cfg.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.cfg.AuthURL,
			TokenURL:  s.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// GenerateState returns a random value binding a callback to its browser.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var errNotConfigured = errors.New(errors.ErrCodeConfigurationMissing, "Google OAuth not configured")

// IsConfigured reports whether client credentials are set.
func (s *GoogleService) IsConfigured() bool {
	return s.cfg.IsConfigured()
}

// AuthCodeURL returns the provider consent URL.
func (s *GoogleService) AuthCodeURL(state string) (string, error) {
	if !s.cfg.HasClientID() {
		return "", errors.New(errors.ErrCodeConfigurationMissing, "Google OAuth not configured. Set GOOGLE_CLIENT_ID in .env.local")
	}
	return s.oauth2Config().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Login exchanges code for a profile, finds or creates the account and
// starts a session. It returns the session token.
//
// Errors carry CONFIGURATION_MISSING, UPSTREAM_AUTH_FAILURE,
// PENDING_APPROVAL or FORBIDDEN (registration disabled).
func (s *GoogleService) Login(ctx context.Context, code string) (string, error) {
	if !s.IsConfigured() {
		return "", errNotConfigured
	}

	profile, err := s.fetchProfile(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeUpstreamAuthFailure, "Google authentication failed")
	}

	u, err := s.findOrCreateUser(ctx, profile)
	if err != nil {
		return "", err
	}
	if !u.IsActive() {
		slog.Info("Federated login for account pending approval", "userId", u.UserID)
		return "", errors.New(errors.ErrCodePendingApproval, "Account pending approval")
	}

	now := s.now()
	token, err := s.sessionIssuer.Issue(now)
	if err != nil {
		return "", errors.InternalWrap(err, "failed to generate session token")
	}
	loginAt := now.UTC()
	if _, err := s.users().UpdateUser(ctx, u.UserID, user.UserUpdate{Token: &token, LastLogin: &loginAt}); err != nil {
		return "", errors.InternalWrap(err, "failed to start session")
	}

	slog.Info("User logged in with Google", "userId", u.UserID)
	return token.Value, nil
}

func (s *GoogleService) users() user.UserRepository {
	return s.userService.Repository()
}

func (s *GoogleService) fetchProfile(ctx context.Context, code string) (GoogleProfile, error) {
	if code == "" {
		return GoogleProfile{}, fmt.Errorf("authorization code is missing")
	}

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	conf := s.oauth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to exchange code: %w", err)
	}
	if tok.AccessToken == "" {
		return GoogleProfile{}, fmt.Errorf("token response has no access token")
	}

	resp, err := conf.Client(ctx, tok).Get(s.cfg.UserInfoURL)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to read user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to decode user info: %w", err)
	}
	if profile.Email == "" {
		return GoogleProfile{}, fmt.Errorf("user info has no email")
	}
	return profile, nil
}

func (s *GoogleService) findOrCreateUser(ctx context.Context, profile GoogleProfile) (user.User, error) {
	existing, err := s.users().FindUserByEmail(ctx, profile.Email)
	if err == nil {
		return existing, nil
	}
	if !stderrors.Is(err, user.ErrUserNotFound) {
		return user.User{}, errors.InternalWrap(err, "failed to find user")
	}

	nu := user.NewUser{Email: profile.Email, Name: profile.DisplayName(), GoogleID: profile.Subject()}
	var created user.User
	if s.registrationEnabled {
		created, _, err = s.userService.Provision(ctx, nu)
	} else {
		created, err = s.userService.Bootstrap(ctx, nu)
	}
	switch {
	case err == nil:
		return created, nil
	case stderrors.Is(err, user.ErrEmailExists):
		// A concurrent sign-up created the account first.
		existing, err := s.users().FindUserByEmail(ctx, profile.Email)
		if err != nil {
			return user.User{}, errors.InternalWrap(err, "failed to find user")
		}
		return existing, nil
	case stderrors.Is(err, user.ErrUsersExist):
		return user.User{}, errors.Forbidden("Registration is disabled")
	}
	return user.User{}, errors.InternalWrap(err, "failed to create user")
}
