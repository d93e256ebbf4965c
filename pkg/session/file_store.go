package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore implements Store with one JSON file per session id inside a
// configured directory. Writes go to a temp file in the same directory
// followed by an atomic rename, so readers never observe a partial record.
// A striped in-process mutex per id serializes overlapping writers.
type FileStore struct {
	dir   string
	locks [lockStripes]sync.Mutex
}

// lockStripes bounds the per-id lock table. Two ids may share a stripe and
// serialize needlessly, which is harmless; the same id always maps to the
// same stripe, which is the guarantee that matters.
const lockStripes = 64

// NewFileStore creates the directory (0700) if absent and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty directory", ErrStoreUnavailable)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := f.path(id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	sess, expiresAt, err := decodeRecord(raw)
	if err != nil {
		// Corrupt record: treat as absent rather than blocking the client
		// on an unreadable file forever.
		_ = os.Remove(path)
		return nil, ErrSessionNotFound
	}

	if time.Now().After(expiresAt) {
		_ = f.Destroy(ctx, id)
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

func (f *FileStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess == nil || sess.ID == "" {
		return ErrInvalidRecord
	}

	path, err := f.path(sess.ID)
	if err != nil {
		return err
	}

	raw, err := encodeRecord(sess, ttl)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	unlock := f.lock(sess.ID)
	defer unlock()

	return f.writeAtomic(path, raw)
}

func (f *FileStore) Destroy(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(id)
	if err != nil {
		return err
	}

	unlock := f.lock(id)
	defer unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// GC scans the directory and removes records whose last activity is at or
// before cutoff. Each file is re-read under the per-id lock immediately
// before removal, so a record refreshed by a concurrent Save survives.
func (f *FileStore) GC(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		if f.gcOne(id, cutoff) {
			removed++
		}
	}
	return removed, nil
}

// gcOne performs the compare-at-delete for a single record.
func (f *FileStore) gcOne(id string, cutoff time.Time) bool {
	path, err := f.path(id)
	if err != nil {
		return false
	}

	unlock := f.lock(id)
	defer unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var rec struct {
		LastActivityAt time.Time `json:"last_activity"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		// Unreadable records are stale by definition.
		return os.Remove(path) == nil
	}

	if rec.LastActivityAt.After(cutoff) {
		return false
	}
	return os.Remove(path) == nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// over the destination. Rename within one filesystem is atomic on POSIX.
func (f *FileStore) writeAtomic(path string, raw []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// path maps an id to its file. Ids come from the base64url alphabet, so a
// separator or parent reference means a forged cookie, not a real session.
func (f *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", ErrSessionNotFound
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *FileStore) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &f.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
