package project

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestProject(name string, offset time.Duration) Project {
	at := baseTime.Add(offset)
	return Project{
		ProjectID: uuid.NewString(),
		Name:      name,
		Status:    DefaultProjectStatus,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func newTestTask(projectID, title string, offset time.Duration) Task {
	at := baseTime.Add(offset)
	return Task{
		ProjectID: projectID,
		TaskID:    uuid.NewString(),
		Title:     title,
		Status:    DefaultTaskStatus,
		Priority:  DefaultTaskPriority,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// runRepositoryContract exercises behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("create and get project", func(t *testing.T) {
		repo := newRepo(t)

		p := newTestProject("Apollo", 0)
		_, err := repo.CreateProject(ctx, p)
		require.NoError(t, err)

		got, err := repo.GetProject(ctx, p.ProjectID)
		require.NoError(t, err)
		assert.Equal(t, "Apollo", got.Name)
		assert.Nil(t, got.Owner)
		assert.Equal(t, DefaultProjectStatus, got.Status)
		assert.True(t, got.CreatedAt.Equal(p.CreatedAt))

		_, err = repo.GetProject(ctx, "missing")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("list projects oldest first", func(t *testing.T) {
		repo := newRepo(t)

		later := newTestProject("Later", time.Minute)
		earlier := newTestProject("Earlier", 0)
		for _, p := range []Project{later, earlier} {
			_, err := repo.CreateProject(ctx, p)
			require.NoError(t, err)
		}

		projects, err := repo.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, earlier.ProjectID, projects[0].ProjectID)
		assert.Equal(t, later.ProjectID, projects[1].ProjectID)
	})

	t.Run("update project", func(t *testing.T) {
		repo := newRepo(t)

		p := newTestProject("Apollo", 0)
		p.Owner = strPtr("alice")
		_, err := repo.CreateProject(ctx, p)
		require.NoError(t, err)

		updated, err := repo.UpdateProject(ctx, p.ProjectID, ProjectUpdate{
			Status:    strPtr("archived"),
			UpdatedAt: baseTime.Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, "Apollo", updated.Name)
		assert.Equal(t, "archived", updated.Status)
		require.NotNil(t, updated.Owner)
		assert.Equal(t, "alice", *updated.Owner)
		assert.True(t, updated.UpdatedAt.Equal(baseTime.Add(time.Hour)))

		updated, err = repo.UpdateProject(ctx, p.ProjectID, ProjectUpdate{
			Owner:     Nullable{Set: true},
			UpdatedAt: baseTime.Add(2 * time.Hour),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.Owner)

		got, err := repo.GetProject(ctx, p.ProjectID)
		require.NoError(t, err)
		assert.Nil(t, got.Owner)
		assert.Equal(t, "archived", got.Status)

		_, err = repo.UpdateProject(ctx, "missing", ProjectUpdate{Name: strPtr("x"), UpdatedAt: baseTime})
		assert.ErrorIs(t, err, ErrProjectNotFound)
		_, err = repo.GetProject(ctx, "missing")
		assert.ErrorIs(t, err, ErrProjectNotFound, "updates never create records")
	})

	t.Run("tasks are scoped to their project", func(t *testing.T) {
		repo := newRepo(t)

		a := newTestProject("A", 0)
		b := newTestProject("B", time.Second)
		for _, p := range []Project{a, b} {
			_, err := repo.CreateProject(ctx, p)
			require.NoError(t, err)
		}

		second := newTestTask(a.ProjectID, "second", time.Minute)
		first := newTestTask(a.ProjectID, "first", 0)
		first.DueDate = strPtr("2025-04-01")
		other := newTestTask(b.ProjectID, "other", 0)
		for _, task := range []Task{second, first, other} {
			_, err := repo.CreateTask(ctx, task)
			require.NoError(t, err)
		}

		tasks, err := repo.ListTasks(ctx, a.ProjectID)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "first", tasks[0].Title)
		assert.Equal(t, "second", tasks[1].Title)
		require.NotNil(t, tasks[0].DueDate)
		assert.Equal(t, "2025-04-01", *tasks[0].DueDate)
		assert.Nil(t, tasks[0].Assignee)

		tasks, err = repo.ListTasks(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("update task", func(t *testing.T) {
		repo := newRepo(t)

		p := newTestProject("A", 0)
		_, err := repo.CreateProject(ctx, p)
		require.NoError(t, err)
		task := newTestTask(p.ProjectID, "write docs", 0)
		task.DueDate = strPtr("2025-04-01")
		_, err = repo.CreateTask(ctx, task)
		require.NoError(t, err)

		updated, err := repo.UpdateTask(ctx, p.ProjectID, task.TaskID, TaskUpdate{
			Status:    strPtr(TaskStatusDone),
			Assignee:  Nullable{Set: true, Value: strPtr("bob")},
			DueDate:   Nullable{Set: true},
			UpdatedAt: baseTime.Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, "write docs", updated.Title)
		assert.Equal(t, TaskStatusDone, updated.Status)
		assert.Equal(t, DefaultTaskPriority, updated.Priority)
		require.NotNil(t, updated.Assignee)
		assert.Equal(t, "bob", *updated.Assignee)
		assert.Nil(t, updated.DueDate)

		tasks, err := repo.ListTasks(ctx, p.ProjectID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, TaskStatusDone, tasks[0].Status)
		assert.Nil(t, tasks[0].DueDate)

		_, err = repo.UpdateTask(ctx, p.ProjectID, "missing", TaskUpdate{Title: strPtr("x"), UpdatedAt: baseTime})
		assert.ErrorIs(t, err, ErrTaskNotFound)
		tasks, err = repo.ListTasks(ctx, p.ProjectID)
		require.NoError(t, err)
		assert.Len(t, tasks, 1, "updates never create records")
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
	p := newTestProject("Apollo", 0)
	_, err = repo.CreateProject(ctx, p)
	require.NoError(t, err)
	task := newTestTask(p.ProjectID, "one", 0)
	_, err = repo.CreateTask(ctx, task)
	require.NoError(t, err)

	reopened, err := NewFileRepository(dir)
	require.NoError(t, err)
	got, err := reopened.GetProject(ctx, p.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", got.Name)
	tasks, err := reopened.ListTasks(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.TaskID, tasks[0].TaskID)
}
