package user

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileUserRepository implements UserRepository on top of the in-memory
// repository, persisting every mutation to a JSON file.
type FileUserRepository struct {
	dataDir string
	mem     *InMemoryUserRepository
	mutex   sync.Mutex
}

// userData represents the structure of data stored in the JSON file
type userData struct {
	Users []User `json:"users"`
}

// NewFileUserRepository creates a new file-based user repository
func NewFileUserRepository(dataDir string) (*FileUserRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileUserRepository{
		dataDir: dataDir,
		mem:     NewInMemoryUserRepository(),
	}
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	return repo, nil
}

func (r *FileUserRepository) filePath() string {
	return filepath.Join(r.dataDir, "users.json")
}

func (r *FileUserRepository) load() error {
	data, err := os.ReadFile(r.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var stored userData
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	r.mem.restore(stored.Users)
	return nil
}

func (r *FileUserRepository) save() error {
	data, err := json.MarshalIndent(userData{Users: r.mem.snapshot()}, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.filePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath())
}

// mutate runs fn against the in-memory state and persists the result,
// restoring the previous state if the file cannot be written.
func (r *FileUserRepository) mutate(fn func() error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	before := r.mem.snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := r.save(); err != nil {
		r.mem.restore(before)
		return fmt.Errorf("failed to persist users: %w", err)
	}
	return nil
}

func (r *FileUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	var created User
	err := r.mutate(func() (err error) {
		created, err = r.mem.CreateUser(ctx, u)
		return err
	})
	return created, err
}

func (r *FileUserRepository) CreateFirstUser(ctx context.Context, u User) (User, error) {
	var created User
	err := r.mutate(func() (err error) {
		created, err = r.mem.CreateFirstUser(ctx, u)
		return err
	})
	return created, err
}

func (r *FileUserRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	return r.mem.GetUserByID(ctx, userID)
}

func (r *FileUserRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return r.mem.FindUserByEmail(ctx, email)
}

func (r *FileUserRepository) FindUserByToken(ctx context.Context, token string) (User, error) {
	return r.mem.FindUserByToken(ctx, token)
}

func (r *FileUserRepository) FindUsersByRoleStatus(ctx context.Context, role, status string) ([]User, error) {
	return r.mem.FindUsersByRoleStatus(ctx, role, status)
}

func (r *FileUserRepository) ListUsers(ctx context.Context) ([]User, error) {
	return r.mem.ListUsers(ctx)
}

func (r *FileUserRepository) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error) {
	var updated User
	err := r.mutate(func() (err error) {
		updated, err = r.mem.UpdateUser(ctx, userID, upd)
		return err
	})
	return updated, err
}

func (r *FileUserRepository) DeleteUser(ctx context.Context, userID string) error {
	return r.mutate(func() error {
		return r.mem.DeleteUser(ctx, userID)
	})
}
