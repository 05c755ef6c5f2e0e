package project

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/protus/pkg/errors"
	"github.com/tendant/protus/pkg/notification"
	"github.com/tendant/protus/pkg/user"
)

const unknownProjectName = "Unknown Project"

// NewProject is the input of CreateProject. Empty fields take defaults.
type NewProject struct {
	Name   string  `json:"name"`
	Owner  *string `json:"owner"`
	Status string  `json:"status"`
}

// NewTask is the input of CreateTask. Empty fields take defaults.
type NewTask struct {
	ProjectID string  `json:"projectId"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	Assignee  *string `json:"assignee"`
	Priority  string  `json:"priority"`
	DueDate   *string `json:"dueDate"`
}

type ProjectService struct {
	repo                Repository
	users               user.UserRepository
	notificationManager *notification.NotificationManager
	now                 func() time.Time
	newID               func() string
}

type Option func(*ProjectService)

// WithNotificationManager enables project completion notices to admins.
func WithNotificationManager(nm *notification.NotificationManager) Option {
	return func(s *ProjectService) {
		s.notificationManager = nm
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ProjectService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *ProjectService) {
		s.newID = newID
	}
}

// NewProjectService needs the user store to look up admins on completion.
func NewProjectService(repo Repository, users user.UserRepository, opts ...Option) *ProjectService {
	s := &ProjectService{
		repo:  repo,
		users: users,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list projects")
	}
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID string) (Project, error) {
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		if stderrors.Is(err, ErrProjectNotFound) {
			return Project{}, errors.New(errors.ErrCodeNotFound, "Project not found")
		}
		return Project{}, errors.InternalWrap(err, "failed to get project")
	}
	return p, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, np NewProject) (Project, error) {
	name := strings.TrimSpace(np.Name)
	if name == "" {
		return Project{}, errors.InvalidInput("name is required")
	}
	now := s.now().UTC()
	p := Project{
		ProjectID: s.newID(),
		Name:      name,
		Owner:     np.Owner,
		Status:    orDefault(np.Status, DefaultProjectStatus),
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.CreateProject(ctx, p)
	if err != nil {
		return Project{}, errors.InternalWrap(err, "failed to create project")
	}
	slog.Info("Project created", "projectId", created.ProjectID, "name", created.Name)
	return created, nil
}

// UpdateProject changes the given attributes. Empty name and status are ignored.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (Project, error) {
	upd.Name = nonEmpty(upd.Name)
	upd.Status = nonEmpty(upd.Status)
	upd.UpdatedAt = s.now().UTC()

	p, err := s.repo.UpdateProject(ctx, projectID, upd)
	if err != nil {
		if stderrors.Is(err, ErrProjectNotFound) {
			return Project{}, errors.New(errors.ErrCodeNotFound, "Project not found")
		}
		return Project{}, errors.InternalWrap(err, "failed to update project")
	}
	return p, nil
}

func (s *ProjectService) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to list tasks")
	}
	return tasks, nil
}

// CreateTask adds a task to an existing project.
func (s *ProjectService) CreateTask(ctx context.Context, nt NewTask) (Task, error) {
	title := strings.TrimSpace(nt.Title)
	if nt.ProjectID == "" || title == "" {
		return Task{}, errors.InvalidInput("projectId and title are required")
	}
	if _, err := s.GetProject(ctx, nt.ProjectID); err != nil {
		return Task{}, err
	}

	now := s.now().UTC()
	t := Task{
		ProjectID: nt.ProjectID,
		TaskID:    s.newID(),
		Title:     title,
		Status:    orDefault(nt.Status, DefaultTaskStatus),
		Assignee:  nt.Assignee,
		Priority:  orDefault(nt.Priority, DefaultTaskPriority),
		DueDate:   nt.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, errors.InternalWrap(err, "failed to create task")
	}
	slog.Info("Task created", "projectId", created.ProjectID, "taskId", created.TaskID)
	return created, nil
}

// UpdateTask changes the given attributes. Marking a task done when every
// other task of the project is done notifies the active admins.
func (s *ProjectService) UpdateTask(ctx context.Context, projectID, taskID string, upd TaskUpdate) (Task, error) {
	upd.Title = nonEmpty(upd.Title)
	upd.Status = nonEmpty(upd.Status)
	upd.Priority = nonEmpty(upd.Priority)
	upd.UpdatedAt = s.now().UTC()

	t, err := s.repo.UpdateTask(ctx, projectID, taskID, upd)
	if err != nil {
		if stderrors.Is(err, ErrTaskNotFound) {
			return Task{}, errors.New(errors.ErrCodeNotFound, "Task not found")
		}
		return Task{}, errors.InternalWrap(err, "failed to update task")
	}

	if upd.Status != nil && *upd.Status == TaskStatusDone {
		s.checkCompletion(ctx, projectID)
	}
	return t, nil
}

// checkCompletion notifies admins when all tasks of the project are done.
// Failures are logged and never reach the caller.
func (s *ProjectService) checkCompletion(ctx context.Context, projectID string) {
	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		slog.Error("Failed to list tasks for completion check", "projectId", projectID, "err", err)
		return
	}
	if !allDone(tasks) {
		return
	}

	name := unknownProjectName
	if p, err := s.repo.GetProject(ctx, projectID); err == nil {
		name = p.Name
	}
	slog.Info("Project completed", "projectId", projectID, "name", name)

	admins, err := s.users.FindUsersByRoleStatus(ctx, user.RoleAdmin, user.StatusActive)
	if err != nil {
		slog.Error("Failed to find admins", "projectId", projectID, "err", err)
		return
	}
	if s.notificationManager == nil {
		return
	}
	for _, admin := range admins {
		err := s.notificationManager.Send(notification.ProjectCompletedNotice, notification.EmailSystem, notification.NotificationData{
			To: admin.Email,
			Data: map[string]string{
				"Name":        admin.Name,
				"ProjectName": name,
				"ProjectID":   projectID,
			},
		})
		if err != nil {
			slog.Error("Failed to notify admin", "projectId", projectID, "userId", admin.UserID, "err", err)
		}
	}
}

func allDone(tasks []Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if t.Status != TaskStatusDone {
			return false
		}
	}
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
