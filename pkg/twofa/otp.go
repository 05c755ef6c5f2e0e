package twofa

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/tendant/protus/pkg/user"
)

const (
	otpMin = 100000
	otpMax = 999999

	DefaultOTPTTL = 5 * time.Minute
)

var (
	ErrInvalidOTP = errors.New("invalid otp")
	ErrOTPExpired = errors.New("otp expired")
)

// OTPGenerator issues six-digit login codes and checks them against the
// code stored on a user record.
type OTPGenerator struct {
	ttl    time.Duration
	reader io.Reader
}

// Option is a function that configures an OTPGenerator
type Option func(*OTPGenerator)

// WithTTL sets how long an issued code stays valid
func WithTTL(ttl time.Duration) Option {
	return func(g *OTPGenerator) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithRandReader replaces the entropy source
func WithRandReader(reader io.Reader) Option {
	return func(g *OTPGenerator) {
		g.reader = reader
	}
}

func NewOTPGenerator(opts ...Option) *OTPGenerator {
	g := &OTPGenerator{
		ttl:    DefaultOTPTTL,
		reader: rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TTL returns the validity window of issued codes.
func (g *OTPGenerator) TTL() time.Duration {
	return g.ttl
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func (g *OTPGenerator) GenerateCode() (string, error) {
	n, err := rand.Int(g.reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// Issue generates a code that expires ttl after now.
func (g *OTPGenerator) Issue(now time.Time) (user.Credential, error) {
	code, err := g.GenerateCode()
	if err != nil {
		return user.Credential{}, err
	}
	return user.Credential{Value: code, ExpiresAt: now.Add(g.ttl).UTC()}, nil
}

// Check validates code against the one stored on u. A missing or different
// code is ErrInvalidOTP; a matching code at or after its expiry is ErrOTPExpired.
func Check(u user.User, code string, now time.Time) error {
	if u.OTP == "" || subtle.ConstantTimeCompare([]byte(u.OTP), []byte(code)) != 1 {
		return ErrInvalidOTP
	}
	if u.OTPExpiry == nil || !now.Before(*u.OTPExpiry) {
		return ErrOTPExpired
	}
	return nil
}
