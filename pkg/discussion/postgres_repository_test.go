package discussion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/pgtest"
)

func TestPostgresRepository(t *testing.T) {
	pool := pgtest.Start(t)

	runRepositoryContract(t, func(t *testing.T) Repository {
		_, err := pool.Exec(context.Background(), `TRUNCATE discussions`)
		require.NoError(t, err)
		return NewPostgresRepository(pool)
	})
}
