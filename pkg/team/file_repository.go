package team

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps members in memory and writes them to team.json after
// every mutation.
type FileRepository struct {
	dataDir string
	mem     *InMemoryRepository
	mutex   sync.Mutex
}

type fileData struct {
	Members []Member `json:"members"`
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
	return filepath.Join(r.dataDir, "team.json")
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
	r.mem.restore(stored.Members)
	return nil
}

func (r *FileRepository) save() error {
	data, err := json.MarshalIndent(fileData{Members: r.mem.snapshot()}, "", "  ")
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

	members := r.mem.snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := r.save(); err != nil {
		r.mem.restore(members)
		return fmt.Errorf("failed to persist team: %w", err)
	}
	return nil
}

func (r *FileRepository) CreateMember(ctx context.Context, m Member) (Member, error) {
	var created Member
	err := r.mutate(func() (err error) {
		created, err = r.mem.CreateMember(ctx, m)
		return err
	})
	return created, err
}

func (r *FileRepository) ListMembers(ctx context.Context) ([]Member, error) {
	return r.mem.ListMembers(ctx)
}

func (r *FileRepository) DeleteMember(ctx context.Context, memberID string) error {
	return r.mutate(func() error {
		return r.mem.DeleteMember(ctx, memberID)
	})
}
