package project

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/notification"
	"github.com/tendant/protus/pkg/user"
)

type fixture struct {
	repo     *InMemoryRepository
	users    *user.InMemoryUserRepository
	notifier *notification.MockNotifier
	svc      *ProjectService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     NewInMemoryRepository(),
		users:    user.NewInMemoryUserRepository(),
		notifier: &notification.MockNotifier{},
		now:      baseTime,
	}
	nm, err := notification.NewNotificationManager(
		notification.WithNotifier(notification.EmailSystem, f.notifier),
		notification.WithDefaultTemplates(),
	)
	require.NoError(t, err)

	seq := 0
	f.svc = NewProjectService(f.repo, f.users,
		WithNotificationManager(nm),
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	return f
}

func (f *fixture) addUser(t *testing.T, id, role, status string) {
	t.Helper()
	_, err := f.users.CreateUser(context.Background(), user.User{
		UserID:    id,
		Email:     id + "@x.com",
		Name:      "Name " + id,
		Role:      role,
		Status:    status,
		CreatedAt: baseTime,
	})
	require.NoError(t, err)
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateProject(ctx, NewProject{Name: "  "})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	p, err := f.svc.CreateProject(ctx, NewProject{Name: "Apollo"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ProjectID)
	assert.Equal(t, DefaultProjectStatus, p.Status)
	assert.Nil(t, p.Owner)
	assert.Equal(t, baseTime, p.CreatedAt)
	assert.Equal(t, baseTime, p.UpdatedAt)

	p, err = f.svc.CreateProject(ctx, NewProject{Name: "Gemini", Owner: strPtr("alice"), Status: "planning"})
	require.NoError(t, err)
	assert.Equal(t, "planning", p.Status)
	require.NotNil(t, p.Owner)
	assert.Equal(t, "alice", *p.Owner)

	projects, err := f.svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestGetAndUpdateProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetProject(ctx, "missing")
	require.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	e, _ := errors.As(err)
	assert.Equal(t, "Project not found", e.Message)

	p, err := f.svc.CreateProject(ctx, NewProject{Name: "Apollo", Owner: strPtr("alice")})
	require.NoError(t, err)

	f.now = baseTime.Add(time.Hour)
	updated, err := f.svc.UpdateProject(ctx, p.ProjectID, ProjectUpdate{Name: strPtr(""), Status: strPtr("closed")})
	require.NoError(t, err)
	assert.Equal(t, "Apollo", updated.Name, "empty name is ignored")
	assert.Equal(t, "closed", updated.Status)
	assert.Equal(t, baseTime.Add(time.Hour), updated.UpdatedAt)
	assert.Equal(t, baseTime, updated.CreatedAt)
	require.NotNil(t, updated.Owner)

	_, err = f.svc.UpdateProject(ctx, "missing", ProjectUpdate{Name: strPtr("x")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestCreateTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateTask(ctx, NewTask{ProjectID: "p"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))
	_, err = f.svc.CreateTask(ctx, NewTask{Title: "t"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = f.svc.CreateTask(ctx, NewTask{ProjectID: "missing", Title: "t"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	p, err := f.svc.CreateProject(ctx, NewProject{Name: "Apollo"})
	require.NoError(t, err)

	task, err := f.svc.CreateTask(ctx, NewTask{ProjectID: p.ProjectID, Title: "write docs"})
	require.NoError(t, err)
	assert.Equal(t, p.ProjectID, task.ProjectID)
	assert.Equal(t, DefaultTaskStatus, task.Status)
	assert.Equal(t, DefaultTaskPriority, task.Priority)
	assert.Nil(t, task.Assignee)
	assert.Nil(t, task.DueDate)

	tasks, err := f.svc.ListTasks(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.TaskID, tasks[0].TaskID)
}

func TestUpdateTask_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateTask(context.Background(), "p", "t", TaskUpdate{Title: strPtr("x")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestUpdateTask_CompletionNotifiesActiveAdmins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "admin", user.RoleAdmin, user.StatusActive)
	f.addUser(t, "dormant", user.RoleAdmin, user.StatusPending)
	f.addUser(t, "member", "Member", user.StatusActive)

	p, err := f.svc.CreateProject(ctx, NewProject{Name: "Apollo"})
	require.NoError(t, err)
	first, err := f.svc.CreateTask(ctx, NewTask{ProjectID: p.ProjectID, Title: "one"})
	require.NoError(t, err)
	second, err := f.svc.CreateTask(ctx, NewTask{ProjectID: p.ProjectID, Title: "two"})
	require.NoError(t, err)

	_, err = f.svc.UpdateTask(ctx, p.ProjectID, first.TaskID, TaskUpdate{Status: strPtr(TaskStatusDone)})
	require.NoError(t, err)
	assert.Zero(t, f.notifier.Count(), "one task is still open")

	_, err = f.svc.UpdateTask(ctx, p.ProjectID, second.TaskID, TaskUpdate{Title: strPtr("renamed")})
	require.NoError(t, err)
	assert.Zero(t, f.notifier.Count())

	_, err = f.svc.UpdateTask(ctx, p.ProjectID, second.TaskID, TaskUpdate{Status: strPtr(TaskStatusDone)})
	require.NoError(t, err)
	require.Equal(t, 1, f.notifier.Count())
	sent, _ := f.notifier.Last()
	assert.Equal(t, "admin@x.com", sent.To)
	assert.Equal(t, "Apollo", sent.Data["ProjectName"])
	assert.Equal(t, p.ProjectID, sent.Data["ProjectID"])
	assert.Equal(t, notification.ProjectCompletedNotice, f.notifier.SentTypes[0])
}

func TestUpdateTask_NotificationFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "admin", user.RoleAdmin, user.StatusActive)
	f.notifier.Err = fmt.Errorf("smtp down")

	p, err := f.svc.CreateProject(ctx, NewProject{Name: "Apollo"})
	require.NoError(t, err)
	task, err := f.svc.CreateTask(ctx, NewTask{ProjectID: p.ProjectID, Title: "one"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTask(ctx, p.ProjectID, task.TaskID, TaskUpdate{Status: strPtr(TaskStatusDone)})
	require.NoError(t, err)
	assert.Equal(t, TaskStatusDone, updated.Status)
}

func TestAllDone(t *testing.T) {
	assert.False(t, allDone(nil))
	assert.False(t, allDone([]Task{{Status: TaskStatusDone}, {Status: DefaultTaskStatus}}))
	assert.True(t, allDone([]Task{{Status: TaskStatusDone}, {Status: TaskStatusDone}}))
}
