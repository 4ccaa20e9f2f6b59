package auth

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
)

// UserStore persists accounts. Emails are unique (case-sensitive); IDs are never reused.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, grant AdminGrant) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]User, error)
}

// MemoryUserStore is a process-local UserStore. All operations are
// serialized by a single mutex.
type MemoryUserStore struct {
	mu      sync.Mutex
	users   map[int64]*User
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

// NewMemoryUserStore creates an empty store. IDs start at 1.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[int64]*User),
		byEmail: make(map[string]int64),
		nextID:  1,
		now:     time.Now,
	}
}

func (s *MemoryUserStore) Create(_ context.Context, email, passwordHash string, grant AdminGrant) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Emails match byte for byte: "A@x.io" and "a@x.io" are different accounts.
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrDuplicateEmail
	}

	isAdmin := false
	switch grant {
	case GrantAlways:
		isAdmin = true
	case GrantIfFirst:
		isAdmin = len(s.users) == 0
	}

	u := &User{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    s.now().UTC(),
	}
	s.nextID++
	s.users[u.ID] = u
	s.byEmail[email] = u.ID

	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return true, nil
}

// List returns all users ordered by id.
func (s *MemoryUserStore) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
