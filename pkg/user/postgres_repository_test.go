package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/pgtest"
)

func TestPostgresUserRepository(t *testing.T) {
	pool := pgtest.Start(t)

	runRepositoryContract(t, func(t *testing.T) UserRepository {
		_, err := pool.Exec(context.Background(), `TRUNCATE users`)
		require.NoError(t, err)
		return NewPostgresUserRepository(pool)
	})
}
