package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps projects and tasks in memory and writes them to
// projects.json after every mutation.
type FileRepository struct {
	dataDir string
	mem     *InMemoryRepository
	mutex   sync.Mutex
}

type fileData struct {
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
}

func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir: dataDir,
		mem:     NewInMemoryRepository(),
	}
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return repo, nil
}

func (r *FileRepository) filePath() string {
	return filepath.Join(r.dataDir, "projects.json")
}

func (r *FileRepository) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var stored fileData
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	r.mem.restore(stored.Projects, stored.Tasks)
	return nil
}

func (r *FileRepository) save() error {
	projects, tasks := r.mem.snapshot()
	data, err := json.MarshalIndent(fileData{Projects: projects, Tasks: tasks}, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.filePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath())
}

func (r *FileRepository) mutate(fn func() error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	projects, tasks := r.mem.snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := r.save(); err != nil {
		r.mem.restore(projects, tasks)
		return fmt.Errorf("failed to persist projects: %w", err)
	}
	return nil
}

func (r *FileRepository) CreateProject(ctx context.Context, p Project) (Project, error) {
	var created Project
	err := r.mutate(func() (err error) {
		created, err = r.mem.CreateProject(ctx, p)
		return err
	})
	return created, err
}

func (r *FileRepository) GetProject(ctx context.Context, projectID string) (Project, error) {
	return r.mem.GetProject(ctx, projectID)
}

func (r *FileRepository) ListProjects(ctx context.Context) ([]Project, error) {
	return r.mem.ListProjects(ctx)
}

func (r *FileRepository) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (Project, error) {
	var updated Project
	err := r.mutate(func() (err error) {
		updated, err = r.mem.UpdateProject(ctx, projectID, upd)
		return err
	})
	return updated, err
}

func (r *FileRepository) CreateTask(ctx context.Context, t Task) (Task, error) {
	var created Task
	err := r.mutate(func() (err error) {
		created, err = r.mem.CreateTask(ctx, t)
		return err
	})
	return created, err
}

func (r *FileRepository) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	return r.mem.ListTasks(ctx, projectID)
}

func (r *FileRepository) UpdateTask(ctx context.Context, projectID, taskID string, upd TaskUpdate) (Task, error) {
	var updated Task
	err := r.mutate(func() (err error) {
		updated, err = r.mem.UpdateTask(ctx, projectID, taskID, upd)
		return err
	})
	return updated, err
}
