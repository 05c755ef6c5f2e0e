package login

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/notification"
	"github.com/tendant/protus/pkg/tokengenerator"
	"github.com/tendant/protus/pkg/twofa"
	"github.com/tendant/protus/pkg/user"
)

const otpSentMessage = "OTP sent to your email"

type LoginService struct {
	users               user.UserRepository
	hasher              PasswordHasher
	otpGenerator        *twofa.OTPGenerator
	sessionIssuer       *tokengenerator.SessionIssuer
	notificationManager *notification.NotificationManager
	now                 func() time.Time
}

// Option is a function that configures a LoginService
type Option func(*LoginService)

func WithPasswordHasher(hasher PasswordHasher) Option {
	return func(s *LoginService) {
		s.hasher = hasher
	}
}

func WithOTPGenerator(g *twofa.OTPGenerator) Option {
	return func(s *LoginService) {
		s.otpGenerator = g
	}
}

func WithSessionIssuer(issuer *tokengenerator.SessionIssuer) Option {
	return func(s *LoginService) {
		s.sessionIssuer = issuer
	}
}

// WithNotificationManager sets where login codes are delivered. Without one
// codes are stored but never sent.
func WithNotificationManager(nm *notification.NotificationManager) Option {
	return func(s *LoginService) {
		s.notificationManager = nm
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *LoginService) {
		s.now = now
	}
}

func NewLoginService(users user.UserRepository, opts ...Option) *LoginService {
	s := &LoginService{
		users:         users,
		hasher:        SHA256Hasher{},
		otpGenerator:  twofa.NewOTPGenerator(),
		sessionIssuer: tokengenerator.NewSessionIssuer(nil, 0),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hasher returns the password hasher used for new credentials.
func (s *LoginService) Hasher() PasswordHasher {
	return s.hasher
}

// LoginResult is the answer to a successful first login step.
type LoginResult struct {
	RequiresOTP bool   `json:"requiresOTP"`
	UserID      string `json:"userId"`
	Message     string `json:"message"`
}

// VerifyResult is the public view of the user plus the new session token.
type VerifyResult struct {
	user.PublicUser
	Token string `json:"token"`
}

// Login checks the password and, for active accounts, issues and delivers a
// one-time code. Unknown email and wrong password are indistinguishable.
func (s *LoginService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, errors.InvalidInput("email and password are required")
	}

	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			slog.Warn("Login with unknown email")
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, errors.InternalWrap(err, "failed to find user")
	}

	ok, err := s.hasher.Verify(password, u.Password)
	if err != nil {
		slog.Warn("Stored password hash could not be checked", "userId", u.UserID, "err", err)
		return LoginResult{}, invalidCredentials()
	}
	if !ok {
		slog.Warn("Login with wrong password", "userId", u.UserID)
		return LoginResult{}, invalidCredentials()
	}

	if !u.IsActive() {
		return LoginResult{}, errors.New(errors.ErrCodePendingApproval, "Account pending approval")
	}

	code, err := s.otpGenerator.Issue(s.now())
	if err != nil {
		return LoginResult{}, errors.InternalWrap(err, "failed to generate OTP")
	}
	if _, err := s.users.UpdateUser(ctx, u.UserID, user.UserUpdate{OTP: &code}); err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, errors.InternalWrap(err, "failed to store OTP")
	}

	s.sendOTP(u, code)

	return LoginResult{RequiresOTP: true, UserID: u.UserID, Message: otpSentMessage}, nil
}

// sendOTP delivers the code. Delivery failures are logged, never returned.
func (s *LoginService) sendOTP(u user.User, code user.Credential) {
	if s.notificationManager == nil {
		slog.Warn("No notification manager configured, OTP not delivered", "userId", u.UserID)
		return
	}
	err := s.notificationManager.Send(notification.LoginOTPNotice, notification.EmailSystem, notification.NotificationData{
		To: u.Email,
		Data: map[string]string{
			"Name":      u.Name,
			"OTP":       code.Value,
			"ExpiresIn": formatTTL(s.otpGenerator.TTL()),
		},
	})
	if err != nil {
		slog.Error("Failed to send OTP", "userId", u.UserID, "err", err)
	}
}

// VerifyOTP completes login: a matching, unexpired code is consumed and a
// session token is issued. An expired code is cleared.
func (s *LoginService) VerifyOTP(ctx context.Context, userID, code string) (VerifyResult, error) {
	if userID == "" || code == "" {
		return VerifyResult{}, errors.InvalidInput("userId and otp are required")
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, user.ErrUserNotFound) {
			return VerifyResult{}, errors.New(errors.ErrCodeInvalidUser, "Invalid user")
		}
		return VerifyResult{}, errors.InternalWrap(err, "failed to get user")
	}

	now := s.now()
	switch err := twofa.Check(u, code, now); {
	case stderrors.Is(err, twofa.ErrInvalidOTP):
		slog.Warn("OTP mismatch", "userId", u.UserID)
		return VerifyResult{}, invalidOTP()
	case stderrors.Is(err, twofa.ErrOTPExpired):
		slog.Warn("OTP expired", "userId", u.UserID)
		s.clearOTP(ctx, u)
		return VerifyResult{}, errors.New(errors.ErrCodeOTPExpired, "OTP expired")
	case err != nil:
		return VerifyResult{}, errors.InternalWrap(err, "failed to check OTP")
	}

	token, err := s.sessionIssuer.Issue(now)
	if err != nil {
		return VerifyResult{}, errors.InternalWrap(err, "failed to generate session token")
	}
	loginAt := now.UTC()
	updated, err := s.users.UpdateUser(ctx, u.UserID, user.UserUpdate{
		LastLogin: &loginAt,
		ClearOTP:  true,
		Token:     &token,
		ExpectOTP: &u.OTP,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, user.ErrConditionFailed):
			// Another request consumed the code first.
			return VerifyResult{}, invalidOTP()
		case stderrors.Is(err, user.ErrUserNotFound):
			return VerifyResult{}, errors.New(errors.ErrCodeInvalidUser, "Invalid user")
		}
		return VerifyResult{}, errors.InternalWrap(err, "failed to start session")
	}

	slog.Info("User logged in", "userId", updated.UserID)
	return VerifyResult{PublicUser: updated.ToPublic(), Token: token.Value}, nil
}

func (s *LoginService) clearOTP(ctx context.Context, u user.User) {
	_, err := s.users.UpdateUser(ctx, u.UserID, user.UserUpdate{ClearOTP: true, ExpectOTP: &u.OTP})
	if err != nil && !stderrors.Is(err, user.ErrConditionFailed) && !stderrors.Is(err, user.ErrUserNotFound) {
		slog.Error("Failed to clear expired OTP", "userId", u.UserID, "err", err)
	}
}

func invalidCredentials() *errors.Error {
	return errors.New(errors.ErrCodeInvalidCredentials, "Invalid credentials")
}

func invalidOTP() *errors.Error {
	return errors.New(errors.ErrCodeInvalidOTP, "Invalid OTP")
}

func formatTTL(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
