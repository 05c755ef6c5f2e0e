package discussion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMessage(projectID, content string, offset time.Duration) Message {
	m := Message{
		MessageID: uuid.NewString(),
		UserID:    "u-1",
		UserName:  "Ann",
		Content:   content,
		CreatedAt: baseTime.Add(offset),
	}
	if projectID != "" {
		m.ProjectID = &projectID
	}
	return m
}

func contents(ms []Message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Content)
	}
	return out
}

func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("list newest first with project filter", func(t *testing.T) {
		repo := newRepo(t)
		for _, m := range []Message{
			newTestMessage("", "general", 0),
			newTestMessage("p-1", "first", time.Minute),
			newTestMessage("p-2", "other", 2*time.Minute),
			newTestMessage("p-1", "second", 3*time.Minute),
		} {
			_, err := repo.CreateMessage(ctx, m)
			require.NoError(t, err)
		}

		all, err := repo.ListMessages(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "other", "first", "general"}, contents(all))
		assert.Nil(t, all[3].ProjectID)
		require.NotNil(t, all[0].ProjectID)
		assert.Equal(t, "p-1", *all[0].ProjectID)
		assert.True(t, all[0].CreatedAt.Equal(baseTime.Add(3*time.Minute)))

		scoped, err := repo.ListMessages(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first"}, contents(scoped))

		none, err := repo.ListMessages(ctx, "p-9")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		m := newTestMessage("", "bye", 0)
		_, err := repo.CreateMessage(ctx, m)
		require.NoError(t, err)

		require.NoError(t, repo.DeleteMessage(ctx, m.MessageID))
		require.NoError(t, repo.DeleteMessage(ctx, "missing"))

		all, err := repo.ListMessages(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestInMemoryRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return NewInMemoryRepository()
	})
}

func TestFileRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		repo, err := NewFileRepository(t.TempDir())
		require.NoError(t, err)
		return repo
	})
}

func TestFileRepository_Persistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewFileRepository(dir)
	require.NoError(t, err)
	_, err = repo.CreateMessage(ctx, newTestMessage("p-1", "kept", 0))
	require.NoError(t, err)

	reopened, err := NewFileRepository(dir)
	require.NoError(t, err)
	all, err := reopened.ListMessages(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, contents(all))
}
