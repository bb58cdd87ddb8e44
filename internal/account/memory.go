package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps accounts in process memory for local runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]User
	admins map[string]Admin
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]User{}, admins: map[string]Admin{}}
}

func (m *MemoryStore) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return User{}, ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) UserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) UserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *MemoryStore) AdminByEmail(_ context.Context, email string) (*Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) AdminByID(_ context.Context, id string) (*Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *MemoryStore) EnsureAdmin(_ context.Context, email, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.admins {
		if a.Email == email {
			a.Password = password
			m.admins[id] = a
			return nil
		}
	}
	id := uuid.NewString()
	m.admins[id] = Admin{ID: id, Email: email, Password: password, CreatedAt: time.Now().UTC()}
	return nil
}
