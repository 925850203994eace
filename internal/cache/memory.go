package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore keeps entries in a process-local map.
type MemoryStore struct {
	data map[string]*Entry
	ttl  time.Duration
	mx   sync.RWMutex
}

// NewMemoryStore creates an in-memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*Entry),
		ttl:  ttl,
	}
}

// Get returns the entry for key, or ErrCacheNotFound / ErrCacheExpired.
func (m *MemoryStore) Get(key string) (*Entry, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	m.mx.RLock()
	entry, ok := m.data[key]
	m.mx.RUnlock()

	if !ok {
		return nil, ErrCacheNotFound
	}
	if entry.IsExpired() {
		m.mx.Lock()
		delete(m.data, key)
		m.mx.Unlock()
		return nil, ErrCacheExpired
	}
	return entry, nil
}

// Set stores data under key.
func (m *MemoryStore) Set(key string, data json.RawMessage) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	m.mx.Lock()
	defer m.mx.Unlock()
	m.data[key] = NewEntry(key, data, m.ttl)
	return nil
}

// Delete removes the entry for key.
func (m *MemoryStore) Delete(key string) error {
	m.mx.Lock()
	defer m.mx.Unlock()
	delete(m.data, key)
	return nil
}

// Clear removes all entries.
func (m *MemoryStore) Clear() error {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.data = make(map[string]*Entry)
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mx.RLock()
	defer m.mx.RUnlock()
	return len(m.data)
}
