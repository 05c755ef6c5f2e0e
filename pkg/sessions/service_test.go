package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/user"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, token string, expiry time.Time) *user.InMemoryUserRepository {
	t.Helper()
	ctx := context.Background()
	repo := user.NewInMemoryUserRepository()
	_, err := repo.CreateUser(ctx, user.User{
		UserID: "u1", Email: "a@x.com", Name: "A", Password: "hash",
		Role: user.RoleAdmin, Status: user.StatusActive, CreatedAt: baseTime,
	})
	require.NoError(t, err)
	_, err = repo.UpdateUser(ctx, "u1", user.UserUpdate{Token: &user.Credential{Value: token, ExpiresAt: expiry}})
	require.NoError(t, err)
	return repo
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	now := baseTime
	repo := seed(t, "tok", baseTime.Add(time.Hour))
	svc := NewService(repo, WithClock(func() time.Time { return now }))

	u, err := svc.ValidateToken(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = svc.ValidateToken(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = svc.ValidateToken(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.UserID)

	now = baseTime.Add(time.Hour)
	u, err = svc.ValidateToken(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, u, "token is rejected at its expiry")

	stored, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.Token, "expired token is revoked")
	assert.Nil(t, stored.TokenExpiry)

	now = baseTime
	u, err = svc.ValidateToken(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, u, "revocation is permanent")
}

func TestGetMe(t *testing.T) {
	ctx := context.Background()
	svc := NewService(seed(t, "tok", baseTime.Add(time.Hour)), WithClock(func() time.Time { return baseTime }))

	me, err := svc.GetMe(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.Email)

	_, err = svc.GetMe(ctx, "nope")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))

	_, err = svc.GetMe(ctx, "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenInvalid))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	repo := seed(t, "tok", baseTime.Add(time.Hour))
	svc := NewService(repo, WithClock(func() time.Time { return baseTime }))

	require.NoError(t, svc.Logout(ctx, "tok"))
	stored, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, stored.Token)

	u, err := svc.ValidateToken(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, u)

	assert.NoError(t, svc.Logout(ctx, "tok"), "second logout is a no-op")
	assert.NoError(t, svc.Logout(ctx, ""))
}
