package storage

import (
	"context"
	"sync"
)

// Memory keeps buckets in process memory. Used by tests and the "memory" driver.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, bucket string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.buckets[bucket]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), payload...), nil
}

func (m *Memory) Save(_ context.Context, bucket string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = append([]byte(nil), payload...)
	return nil
}

func (m *Memory) Close() error { return nil }

// Unavailable stands in for a missing persistence substrate: reads are empty
// and writes are dropped.
type Unavailable struct{}

func (Unavailable) Load(context.Context, string) ([]byte, error) { return nil, nil }

func (Unavailable) Save(context.Context, string, []byte) error { return nil }

func (Unavailable) Close() error { return nil }
