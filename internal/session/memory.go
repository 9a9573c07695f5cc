package session

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/toplist/internal/shared"
)

type memoryEntry struct {
	values    Values
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory [Store]. Sessions are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Sweeper = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (Values, error) {
	m.mu.RLock()
	entry, ok := m.data[id]
	m.mu.RUnlock()

	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.data, id)
		m.mu.Unlock()
		return nil, shared.ErrSessionNotFound
	}
	return entry.values.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, values Values, expiresAt time.Time) error {
	m.mu.Lock()
	m.data[id] = memoryEntry{values: values.Clone(), expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

// DeleteExpired removes every session that expired at or before now.
func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, entry := range m.data {
		if !now.Before(entry.expiresAt) {
			delete(m.data, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
