package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore implements Store on Redis. Each record is one JSON value with
// a server-side TTL, so expiry needs no sweeper: GC is a no-op and reports
// zero removals. SET replaces the full value atomically, which gives the
// last-writer-wins semantics the Store contract asks for.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	sess, expiresAt, err := decodeRecord(raw)
	if err != nil {
		_ = r.Destroy(ctx, id)
		return nil, ErrSessionNotFound
	}

	// The key TTL already enforces expiry; the embedded deadline only
	// matters when a record was written with a longer TTL and relaxed later.
	if !expiresAt.IsZero() && time.Now().After(expiresAt) {
		_ = r.Destroy(ctx, id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (r *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidRecord
	}

	raw, err := encodeRecord(sess, ttl)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+sess.ID, raw, ttl).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// GC is a no-op: Redis evicts expired keys on its own.
func (r *RedisStore) GC(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}
