package discussion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps messages in memory and writes them to
// discussions.json after every mutation.
type FileRepository struct {
	dataDir string
	mem     *InMemoryRepository
	mutex   sync.Mutex
}

type fileData struct {
	Messages []Message `json:"messages"`
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
	return filepath.Join(r.dataDir, "discussions.json")
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
	r.mem.restore(stored.Messages)
	return nil
}

func (r *FileRepository) save(messages []Message) error {
	data, err := json.MarshalIndent(fileData{Messages: messages}, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.filePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath())
}

func (r *FileRepository) mutate(ctx context.Context, fn func() error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	before, err := r.mem.ListMessages(ctx, "")
	if err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	after, err := r.mem.ListMessages(ctx, "")
	if err != nil {
		return err
	}
	if err := r.save(after); err != nil {
		r.mem.restore(before)
		return fmt.Errorf("failed to persist discussions: %w", err)
	}
	return nil
}

func (r *FileRepository) CreateMessage(ctx context.Context, m Message) (Message, error) {
	var created Message
	err := r.mutate(ctx, func() (err error) {
		created, err = r.mem.CreateMessage(ctx, m)
		return err
	})
	return created, err
}

func (r *FileRepository) ListMessages(ctx context.Context, projectID string) ([]Message, error) {
	return r.mem.ListMessages(ctx, projectID)
}

func (r *FileRepository) DeleteMessage(ctx context.Context, messageID string) error {
	return r.mutate(ctx, func() error {
		return r.mem.DeleteMessage(ctx, messageID)
	})
}
