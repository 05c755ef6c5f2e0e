package signup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/login"
	"github.com/tendant/protus/pkg/user"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo := user.NewInMemoryUserRepository()
	svc := NewSignupService(user.NewUserService(repo))

	admin, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)
	assert.Equal(t, user.StatusActive, admin.Status)
	assert.NotEmpty(t, admin.UserID)

	stored, err := repo.GetUserByID(ctx, admin.UserID)
	require.NoError(t, err)
	ok, err := login.SHA256Hasher{}.Verify("pw", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok, "password stored hashed")
	assert.NotEqual(t, "pw", stored.Password)

	pending, err := svc.Register(ctx, RegisterRequest{Email: "b@x.com", Password: "pw", Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, user.RolePending, pending.Role)
	assert.Equal(t, user.StatusPending, pending.Status)

	_, err = svc.Register(ctx, RegisterRequest{Email: "b@x.com", Password: "other", Name: "B2"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserAlreadyExists))

	for _, req := range []RegisterRequest{
		{Password: "pw", Name: "n"},
		{Email: "c@x.com", Name: "n"},
		{Email: "c@x.com", Password: "pw"},
	} {
		_, err := svc.Register(ctx, req)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	}
}

func TestRegister_Disabled(t *testing.T) {
	ctx := context.Background()
	svc := NewSignupService(user.NewUserService(user.NewInMemoryUserRepository()),
		WithRegistrationEnabled(false))

	first, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, first.Role)

	_, err = svc.Register(ctx, RegisterRequest{Email: "b@x.com", Password: "pw", Name: "B"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeForbidden))
}
