package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-memory adapter with the same JSON semantics as the
// SQLite adapter. Used by tests and as a fallback when no database path
// is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string

	// Puts counts successful writes per key, for asserting sync
	// behavior in tests.
	Puts map[string]int
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
		Puts: make(map[string]int),
	}
}

func (m *Memory) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(data)
	m.Puts[key]++
	return nil
}

func (m *Memory) Get(key string, out any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
