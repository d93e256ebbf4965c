package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a PostgreSQL table. One row per session id;
// Save is a single-statement upsert, which gives atomic full-row
// replacement and per-id serialization through row-level locking. GC runs
// the activity comparison inside the DELETE itself, so a row refreshed by
// a concurrent request is never removed from a stale candidate list.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing connection pool. The sessions table is
// expected to exist; see migrations/ for the schema.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const pgLoadQuery = `
	SELECT id, user_id, ip_address, user_agent, fingerprint, payload, created_at, last_activity
	FROM sessions
	WHERE id = $1 AND expires_at > now()`

func (p *PGStore) Load(ctx context.Context, id string) (*Session, error) {
	var (
		sess    Session
		payload []byte
	)
	err := p.pool.QueryRow(ctx, pgLoadQuery, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.IPAddress,
		&sess.UserAgent,
		&sess.Fingerprint,
		&payload,
		&sess.CreatedAt,
		&sess.LastActivityAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if err := json.Unmarshal(payload, &sess.Data); err != nil {
		// Corrupt payload: drop the row and report no session.
		_ = p.Destroy(ctx, id)
		return nil, ErrSessionNotFound
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}
	return &sess, nil
}

const pgSaveQuery = `
	INSERT INTO sessions (id, user_id, ip_address, user_agent, fingerprint, payload, created_at, last_activity, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		user_id       = EXCLUDED.user_id,
		ip_address    = EXCLUDED.ip_address,
		user_agent    = EXCLUDED.user_agent,
		fingerprint   = EXCLUDED.fingerprint,
		payload       = EXCLUDED.payload,
		last_activity = EXCLUDED.last_activity,
		expires_at    = EXCLUDED.expires_at`

func (p *PGStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidRecord
	}

	payload, err := json.Marshal(sess.Data)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	_, err = p.pool.Exec(ctx, pgSaveQuery,
		sess.ID,
		sess.UserID,
		sess.IPAddress,
		sess.UserAgent,
		sess.Fingerprint,
		payload,
		sess.CreatedAt,
		sess.LastActivityAt,
		time.Now().UTC().Add(ttl),
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (p *PGStore) Destroy(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// GC deletes rows whose last activity is at or before cutoff.
func (p *PGStore) GC(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE last_activity <= $1`, cutoff)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

// DestroyByUserID removes every session belonging to a user, typically on
// password change or account-wide logout.
func (p *PGStore) DestroyByUserID(ctx context.Context, userID string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
