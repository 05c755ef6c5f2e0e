package tokengenerator

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendant/protus/pkg/user"
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// TokenGenerator produces opaque session token values.
type TokenGenerator interface {
	GenerateToken() (string, error)
}

// UUIDTokenGenerator issues random (version 4) UUIDs, 122 bits of entropy.
type UUIDTokenGenerator struct{}

func (UUIDTokenGenerator) GenerateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SessionIssuer pairs generated tokens with their expiry.
type SessionIssuer struct {
	generator TokenGenerator
	ttl       time.Duration
}

// NewSessionIssuer creates an issuer; a non-positive ttl uses DefaultSessionTTL.
func NewSessionIssuer(generator TokenGenerator, ttl time.Duration) *SessionIssuer {
	if generator == nil {
		generator = UUIDTokenGenerator{}
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionIssuer{generator: generator, ttl: ttl}
}

// TTL returns the session validity window.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue returns a new session token expiring ttl after now.
func (s *SessionIssuer) Issue(now time.Time) (user.Credential, error) {
	token, err := s.generator.GenerateToken()
	if err != nil {
		return user.Credential{}, err
	}
	return user.Credential{Value: token, ExpiresAt: now.Add(s.ttl).UTC()}, nil
}

// Expired reports whether the token stored on u is unusable at now.
// A token without an expiry never expires.
func Expired(u user.User, now time.Time) bool {
	if u.TokenExpiry == nil {
		return false
	}
	return !now.Before(*u.TokenExpiry)
}
