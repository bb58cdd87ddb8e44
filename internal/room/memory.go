package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps rooms in process memory for local runs and tests.
type MemoryStore struct {
	mu    sync.Mutex
	rooms []Room
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Insert(_ context.Context, rm Room) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rm.ID == "" {
		rm.ID = uuid.NewString()
	}
	rm.Selected = false
	rm.CreatedAt = time.Now().UTC()
	m.rooms = append(m.rooms, rm)
	return rm, nil
}

func (m *MemoryStore) List(_ context.Context) ([]Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Room, len(m.rooms))
	copy(out, m.rooms)
	return out, nil
}

func (m *MemoryStore) Selected(_ context.Context) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rm := range m.rooms {
		if rm.Selected {
			found := rm
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) Select(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := -1
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			target = i
			break
		}
	}
	if target < 0 {
		return ErrRoomNotFound
	}
	for i := range m.rooms {
		m.rooms[i].Selected = i == target
	}
	return nil
}
