package featcache

import (
	"context"
	"sync"
)

// DefaultMaxEntries bounds the in-memory cache when no size is given.
const DefaultMaxEntries = 10000

// Memory is an in-process Store that evicts the oldest entry when full.
type Memory struct {
	mu      sync.Mutex
	max     int
	entries map[string][]byte
	order   []string
}

// NewMemory creates a memory store holding at most maxEntries vectors.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{
		max:     maxEntries,
		entries: make(map[string][]byte),
	}
}

// Get returns the vector stored under key.
func (m *Memory) Get(_ context.Context, key string) (map[string]float64, bool, error) {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	vector, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return vector, true, nil
}

// Put stores vector under key.
func (m *Memory) Put(_ context.Context, key string, vector map[string]float64) error {
	data, err := encode(vector)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists {
		for len(m.order) >= m.max {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = data
	return nil
}

// Len returns the number of cached vectors.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close releases the cached entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	m.order = nil
	return nil
}
