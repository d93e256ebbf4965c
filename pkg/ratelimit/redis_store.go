package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis, giving all instances of a service
// a shared view of each counter. The window expiry is enforced by Redis
// key TTLs, so counters vanish on their own.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store backed by the given Redis client.
// Keys are namespaced with the "ratelimit:" prefix.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "ratelimit:",
	}
}

func (r *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	rkey := r.prefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	pipe.ExpireNX(ctx, rkey, window)
	pttl := pipe.PTTL(ctx, rkey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	count := incr.Val()
	ttl := pttl.Val()
	if ttl < 0 {
		// key without a TTL; treat as a fresh window
		ttl = window
	}
	return count, time.Now().Add(ttl), nil
}

func (r *RedisStore) Peek(ctx context.Context, key string) (int64, time.Time, error) {
	rkey := r.prefix + key

	pipe := r.client.TxPipeline()
	get := pipe.Get(ctx, rkey)
	pttl := pipe.PTTL(ctx, rkey)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	count, err := get.Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ttl := pttl.Val()
	if ttl < 0 {
		return 0, time.Time{}, nil
	}
	return count, time.Now().Add(ttl), nil
}

func (r *RedisStore) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
