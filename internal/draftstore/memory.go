package draftstore

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryStore is an in-process Store.
//
// It supports a byte quota and can be switched off to emulate storage that is
// disabled, which makes it the backend of choice for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	data      map[string]string
	quota     int64
	used      int64
	available bool

	writes  atomic.Int64
	removes atomic.Int64
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithQuota limits the total bytes of stored content. Zero means unlimited.
func WithQuota(bytes int64) MemoryOption {
	return func(m *MemoryStore) { m.quota = bytes }
}

// WithData preloads records.
func WithData(data map[string]string) MemoryOption {
	return func(m *MemoryStore) {
		for k, v := range data {
			m.data[k] = v
			m.used += int64(len(v))
		}
	}
}

// NewMemoryStore creates an empty, available MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		data:      make(map[string]string),
		available: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetAvailable toggles whether the store accepts operations.
func (m *MemoryStore) SetAvailable(available bool) {
	m.mu.Lock()
	m.available = available
	m.mu.Unlock()
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.available {
		return "", false, ErrUnavailable
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Store. Every call counts as a write attempt, including failed ones.
func (m *MemoryStore) Set(_ context.Context, key, content string) error {
	m.writes.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return ErrUnavailable
	}
	used := m.used - int64(len(m.data[key])) + int64(len(content))
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}
	m.data[key] = content
	m.used = used
	return nil
}

// Remove implements Store.
func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.removes.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return ErrUnavailable
	}
	m.used -= int64(len(m.data[key]))
	delete(m.data, key)
	return nil
}

// Keys implements Lister. Keys are sorted.
func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.available {
		return nil, ErrUnavailable
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Writes returns the number of Set calls made so far.
func (m *MemoryStore) Writes() int64 {
	return m.writes.Load()
}

// Removes returns the number of Remove calls made so far.
func (m *MemoryStore) Removes() int64 {
	return m.removes.Load()
}

// Snapshot returns a copy of the stored records.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
