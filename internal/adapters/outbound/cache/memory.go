package cache

import (
	"sync"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Memory is an in-process domain.CacheStore. It backs --no-cache runs and
// tests; nothing survives the process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	saves   int
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*domain.CacheEntry)}
}

func (m *Memory) Load() (map[string]*domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*domain.CacheEntry, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Save(entries map[string]*domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.CacheEntry, len(entries))
	for k, v := range entries {
		m.entries[k] = v
	}
	m.saves++
	return nil
}

func (m *Memory) Invalidate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.CacheEntry)
	return nil
}

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
