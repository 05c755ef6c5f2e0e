package twofa

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/user"
)

func TestGenerateCode(t *testing.T) {
	g := NewOTPGenerator()
	for i := 0; i < 500; i++ {
		code, err := g.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, otpMin)
		assert.LessOrEqual(t, n, otpMax)
	}
}

func TestGenerateCode_Bounds(t *testing.T) {
	// All-zero entropy maps to the lowest code.
	g := NewOTPGenerator(WithRandReader(bytes.NewReader(make([]byte, 64))))
	code, err := g.GenerateCode()
	require.NoError(t, err)
	assert.Equal(t, "100000", code)

	_, err = NewOTPGenerator(WithRandReader(bytes.NewReader(nil))).GenerateCode()
	assert.Error(t, err)
}

func TestIssue(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	g := NewOTPGenerator(WithTTL(2 * time.Minute))

	cred, err := g.Issue(now)
	require.NoError(t, err)
	assert.Len(t, cred.Value, 6)
	assert.Equal(t, now.Add(2*time.Minute), cred.ExpiresAt)
	assert.Equal(t, 2*time.Minute, g.TTL())

	assert.Equal(t, DefaultOTPTTL, NewOTPGenerator(WithTTL(0)).TTL())
}

func TestCheck(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	expiry := now.Add(5 * time.Minute)
	u := user.User{OTP: "123456", OTPExpiry: &expiry}

	assert.NoError(t, Check(u, "123456", now))
	assert.NoError(t, Check(u, "123456", expiry.Add(-time.Millisecond)))
	assert.ErrorIs(t, Check(u, "123456", expiry), ErrOTPExpired)
	assert.ErrorIs(t, Check(u, "654321", now), ErrInvalidOTP)
	assert.ErrorIs(t, Check(u, "", now), ErrInvalidOTP)
	assert.ErrorIs(t, Check(user.User{}, "123456", now), ErrInvalidOTP)

	// Mismatch is reported before expiry.
	assert.ErrorIs(t, Check(u, "000000", expiry.Add(time.Hour)), ErrInvalidOTP)
}
