package user

import (
	"context"
	"sort"
	"sync"
)

// InMemoryUserRepository implements UserRepository using in-memory storage
type InMemoryUserRepository struct {
	mu           sync.RWMutex
	users        map[string]User   // userID -> user
	usersByEmail map[string]string // email -> userID
	usersByToken map[string]string // token -> userID
}

// NewInMemoryUserRepository creates a new in-memory user repository
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:        make(map[string]User),
		usersByEmail: make(map[string]string),
		usersByToken: make(map[string]string),
	}
}

// CreateUser inserts a user, failing when the email is already indexed
func (r *InMemoryUserRepository) CreateUser(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(u)
}

// CreateFirstUser inserts a user only into an empty store
func (r *InMemoryUserRepository) CreateFirstUser(ctx context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.users) > 0 {
		return User{}, ErrUsersExist
	}
	return r.insertLocked(u)
}

func (r *InMemoryUserRepository) insertLocked(u User) (User, error) {
	if _, ok := r.usersByEmail[u.Email]; ok {
		return User{}, ErrEmailExists
	}
	if u.Token != "" {
		if _, ok := r.usersByToken[u.Token]; ok {
			return User{}, ErrTokenExists
		}
		r.usersByToken[u.Token] = u.UserID
	}
	r.users[u.UserID] = u
	r.usersByEmail[u.Email] = u.UserID
	return u, nil
}

// GetUserByID returns a user by ID
func (r *InMemoryUserRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// FindUserByEmail finds a user by exact email
func (r *InMemoryUserRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(r.usersByEmail, email)
}

// FindUserByToken finds the user currently holding a session token
func (r *InMemoryUserRepository) FindUserByToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUserNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(r.usersByToken, token)
}

func (r *InMemoryUserRepository) lookupLocked(index map[string]string, key string) (User, error) {
	userID, ok := index[key]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// FindUsersByRoleStatus returns users matching both role and status
func (r *InMemoryUserRepository) FindUsersByRoleStatus(ctx context.Context, role, status string) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []User{}
	for _, u := range r.users {
		if u.Role == role && u.Status == status {
			users = append(users, u)
		}
	}
	sortByCreated(users)
	return users, nil
}

// ListUsers returns all users ordered by creation time
func (r *InMemoryUserRepository) ListUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sortByCreated(users)
	return users, nil
}

// UpdateUser applies attribute changes to an existing user
func (r *InMemoryUserRepository) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if err := upd.check(u); err != nil {
		return User{}, err
	}

	oldToken := u.Token
	upd.apply(&u)
	if u.Token != oldToken {
		if u.Token != "" {
			if owner, taken := r.usersByToken[u.Token]; taken && owner != userID {
				return User{}, ErrTokenExists
			}
			r.usersByToken[u.Token] = userID
		}
		if oldToken != "" {
			delete(r.usersByToken, oldToken)
		}
	}
	r.users[userID] = u
	return u, nil
}

// DeleteUser removes a user and its index entries
func (r *InMemoryUserRepository) DeleteUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil
	}
	delete(r.usersByEmail, u.Email)
	if u.Token != "" {
		delete(r.usersByToken, u.Token)
	}
	delete(r.users, userID)
	return nil
}

// snapshot returns a copy of all records, used by the file repository to roll back
func (r *InMemoryUserRepository) snapshot() []User {
	users, _ := r.ListUsers(context.Background())
	return users
}

// restore replaces all records and rebuilds the indexes
func (r *InMemoryUserRepository) restore(users []User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]User, len(users))
	r.usersByEmail = make(map[string]string, len(users))
	r.usersByToken = make(map[string]string)
	for _, u := range users {
		r.users[u.UserID] = u
		r.usersByEmail[u.Email] = u.UserID
		if u.Token != "" {
			r.usersByToken[u.Token] = u.UserID
		}
	}
}

func sortByCreated(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].UserID < users[j].UserID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
