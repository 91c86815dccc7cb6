package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps payloads in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, true, nil
}

func (m *MemoryBackend) Put(ctx context.Context, key string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.mu.Lock()
	m.data[key] = stored
	m.mu.Unlock()
	return nil
}
