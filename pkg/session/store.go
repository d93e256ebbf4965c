package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Store is the capability interface for durable session persistence.
//
// All implementations guarantee atomic full-record replacement (a reader
// never observes a half-written record) and per-id mutual exclusion across
// the write, so overlapping requests for the same session serialize to
// last-writer-wins at Save granularity.
type Store interface {
	// Load returns the record for id, ErrSessionNotFound when no live
	// record exists, or an ErrStoreUnavailable-wrapped backend error.
	Load(ctx context.Context, id string) (*Session, error)

	// Save atomically replaces the full record, expiring it after ttl.
	Save(ctx context.Context, sess *Session, ttl time.Duration) error

	// Destroy removes the record. Destroying an absent id is not an error.
	Destroy(ctx context.Context, id string) error

	// GC removes records whose last activity is at or before cutoff
	// (inclusive boundary) and returns how many were removed. The check
	// runs against the live record at delete time, so a record refreshed
	// by a concurrent request survives.
	GC(ctx context.Context, cutoff time.Time) (int, error)
}

// record is the serialized session layout shared by the file and redis
// backends: the session fields plus the absolute expiry deadline.
type record struct {
	ID             string         `json:"id"`
	UserID         *string        `json:"user_id,omitempty"`
	IPAddress      string         `json:"ip_address,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	Fingerprint    string         `json:"fingerprint,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastActivityAt time.Time      `json:"last_activity"`
	ExpiresAt      time.Time      `json:"expires_at"`
}

func encodeRecord(sess *Session, ttl time.Duration) ([]byte, error) {
	rec := record{
		ID:             sess.ID,
		IPAddress:      sess.IPAddress,
		UserAgent:      sess.UserAgent,
		Fingerprint:    sess.Fingerprint,
		Data:           sess.Data,
		CreatedAt:      sess.CreatedAt,
		LastActivityAt: sess.LastActivityAt,
		ExpiresAt:      time.Now().UTC().Add(ttl),
	}
	if sess.UserID != nil {
		uid := sess.UserID.String()
		rec.UserID = &uid
	}
	return json.Marshal(rec)
}

func decodeRecord(raw []byte) (*Session, time.Time, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, time.Time{}, err
	}

	sess := &Session{
		ID:             rec.ID,
		IPAddress:      rec.IPAddress,
		UserAgent:      rec.UserAgent,
		Fingerprint:    rec.Fingerprint,
		Data:           rec.Data,
		CreatedAt:      rec.CreatedAt,
		LastActivityAt: rec.LastActivityAt,
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}
	if rec.UserID != nil {
		if uid, err := uuid.Parse(*rec.UserID); err == nil {
			sess.UserID = &uid
		}
	}
	return sess, rec.ExpiresAt, nil
}
