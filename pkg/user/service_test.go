package user

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo UserRepository) *UserService {
	n := 0
	var mu sync.Mutex
	return NewUserService(repo,
		WithClock(func() time.Time { return baseTime }),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("user-%d", n)
		}),
	)
}

func TestProvision(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewInMemoryUserRepository())

	alice, bootstrap, err := svc.Provision(ctx, NewUser{Email: "alice@x.com", Name: "Alice", PasswordHash: "h1"})
	require.NoError(t, err)
	assert.True(t, bootstrap)
	assert.Equal(t, "user-1", alice.UserID)
	assert.Equal(t, RoleAdmin, alice.Role)
	assert.Equal(t, StatusActive, alice.Status)
	assert.True(t, alice.CreatedAt.Equal(baseTime))

	bob, bootstrap, err := svc.Provision(ctx, NewUser{Email: "bob@x.com", Name: "Bob", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.False(t, bootstrap)
	assert.Equal(t, RolePending, bob.Role)
	assert.Equal(t, StatusPending, bob.Status)

	_, _, err = svc.Provision(ctx, NewUser{Email: "bob@x.com", Name: "Other", PasswordHash: "h3"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, err = svc.Provision(ctx, NewUser{Email: "alice@x.com", Name: "Alice again"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestProvision_FederatedAccount(t *testing.T) {
	svc := newTestService(NewInMemoryUserRepository())

	u, _, err := svc.Provision(context.Background(), NewUser{Email: "g@x.com", Name: "G", GoogleID: "google-1"})
	require.NoError(t, err)
	assert.Empty(t, u.Password)
	assert.Equal(t, "google-1", u.GoogleID)
}

func TestProvision_ConcurrentRegistrations(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()
	svc := newTestService(repo)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Provision(ctx, NewUser{Email: fmt.Sprintf("u%d@x.com", i), Name: "U"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	admins, err := repo.FindUsersByRoleStatus(ctx, RoleAdmin, StatusActive)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	all, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewInMemoryUserRepository())

	first, err := svc.Bootstrap(ctx, NewUser{Email: "root@x.com", Name: "Root", PasswordHash: "h"})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin())

	_, err = svc.Bootstrap(ctx, NewUser{Email: "second@x.com", Name: "Second", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrUsersExist)
}
