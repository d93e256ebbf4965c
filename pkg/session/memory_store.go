package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Intended for tests
// and single-instance development setups; nothing persists across restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

type memoryRecord struct {
	sess      *Session
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*memoryRecord),
	}
}

// Load returns a deep copy of the record so the caller never shares
// mutable state with concurrently running requests.
func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	rec, exists := m.records[id]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(rec.expiresAt) {
		m.mu.Lock()
		delete(m.records, id)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	return copySession(rec.sess), nil
}

// Save atomically replaces the full record.
func (m *MemoryStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess == nil || sess.ID == "" {
		return ErrInvalidRecord
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[sess.ID] = &memoryRecord{
		sess:      copySession(sess),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Destroy removes the record. Absent ids are a no-op.
func (m *MemoryStore) Destroy(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

// GC removes records with last activity at or before cutoff.
func (m *MemoryStore) GC(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, rec := range m.records {
		if !rec.sess.LastActivityAt.After(cutoff) {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live records. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// copySession deep-copies a session including nested data maps, so dotted
// paths created by one request never alias another request's maps.
func copySession(sess *Session) *Session {
	cp := *sess
	cp.dirty = false
	cp.Data = deepCopyMap(sess.Data)
	return &cp
}

func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return make(map[string]any)
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = deepCopyMap(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}
