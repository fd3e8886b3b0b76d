package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Used for tests and for
// running without any backing database.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key ScopeKey) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key.String()]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemoryStore) Save(_ context.Context, key ScopeKey, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[key.String()] = append([]byte(nil), doc...)
	return nil
}

// Len reports how many documents are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
