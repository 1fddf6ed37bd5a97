package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	stamps map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string][]byte),
		stamps: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "get", goerr.V("key", key))
	}
	return bytes.Clone(doc), nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, key string, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[key] = bytes.Clone(value)
	m.stamps[key] = m.now()
	m.mu.Unlock()
	return nil
}

// UpdatedAt implements Store.
func (m *MemoryStore) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.stamps[key]
	if !ok {
		return time.Time{}, goerr.Wrap(ErrNotFound, "updated_at", goerr.V("key", key))
	}
	return at, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
