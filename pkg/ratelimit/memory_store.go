package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Counters for other
// keys are pruned opportunistically whenever their window has elapsed.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*counter),
	}
}

func (m *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	c, exists := m.counters[key]
	if !exists || !now.Before(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		m.counters[key] = c
	}
	c.count++

	return c.count, c.resetAt, nil
}

func (m *MemoryStore) Peek(ctx context.Context, key string) (int64, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, exists := m.counters[key]
	if !exists {
		return 0, time.Time{}, nil
	}
	if !time.Now().Before(c.resetAt) {
		delete(m.counters, key)
		return 0, time.Time{}, nil
	}
	return c.count, c.resetAt, nil
}

func (m *MemoryStore) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.counters, key)
	return nil
}

// Prune removes all counters whose window has elapsed. Useful for
// long-running processes with large key cardinality.
func (m *MemoryStore) Prune() int {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, c := range m.counters {
		if !now.Before(c.resetAt) {
			delete(m.counters, key)
			removed++
		}
	}
	return removed
}
