package project

import (
	"context"
	"sort"
	"sync"
)

type taskKey struct {
	projectID string
	taskID    string
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]Project
	tasks    map[taskKey]Task
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		projects: make(map[string]Project),
		tasks:    make(map[taskKey]Task),
	}
}

func (r *InMemoryRepository) CreateProject(ctx context.Context, p Project) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ProjectID] = p
	return p, nil
}

func (r *InMemoryRepository) GetProject(ctx context.Context, projectID string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[projectID]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) ListProjects(ctx context.Context) ([]Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

func (r *InMemoryRepository) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	upd.apply(&p)
	r.projects[projectID] = p
	return p, nil
}

func (r *InMemoryRepository) CreateTask(ctx context.Context, t Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[taskKey{t.ProjectID, t.TaskID}] = t
	return t, nil
}

func (r *InMemoryRepository) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Task{}
	for k, t := range r.tasks {
		if k.projectID == projectID {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

func (r *InMemoryRepository) UpdateTask(ctx context.Context, projectID, taskID string, upd TaskUpdate) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := taskKey{projectID, taskID}
	t, ok := r.tasks[k]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	upd.apply(&t)
	r.tasks[k] = t
	return t, nil
}

func sortProjects(ps []Project) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ProjectID < ps[j].ProjectID
	})
}

func sortTasks(ts []Task) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.Before(ts[j].CreatedAt)
		}
		return ts[i].TaskID < ts[j].TaskID
	})
}

func (r *InMemoryRepository) snapshot() ([]Project, []Task) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	projects := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		projects = append(projects, p)
	}
	tasks := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sortProjects(projects)
	sortTasks(tasks)
	return projects, tasks
}

func (r *InMemoryRepository) restore(projects []Project, tasks []Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = make(map[string]Project, len(projects))
	for _, p := range projects {
		r.projects[p.ProjectID] = p
	}
	r.tasks = make(map[taskKey]Task, len(tasks))
	for _, t := range tasks {
		r.tasks[taskKey{t.ProjectID, t.TaskID}] = t
	}
}
