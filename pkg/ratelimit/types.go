package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether this event stayed within the limit.
	Allowed bool

	// Limit is the maximum number of events allowed per window.
	Limit int

	// Remaining is the number of events left in the current window.
	Remaining int

	// ResetAt is when the current window ends and the counter clears.
	ResetAt time.Time
}

// RetryAfter returns how long to wait until the window resets.
// Returns 0 if the event was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Err returns ErrRateLimitExceeded when the event was denied, nil
// otherwise, for callers that propagate denial as an error.
func (r *Result) Err() error {
	if r.Allowed {
		return nil
	}
	return ErrRateLimitExceeded
}

// Limiter is the interface rate limiting consumers depend on.
type Limiter interface {
	// Allow records one event for the key and reports whether it stayed
	// within the limit.
	Allow(ctx context.Context, key string) (*Result, error)

	// Status reports the current window state without recording an event.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error
}

// Store is the counter backend. Implementations must make Increment atomic:
// two concurrent callers must observe distinct counts.
type Store interface {
	// Increment bumps the counter for key, starting a fresh window when
	// none is active, and returns the post-increment count and the time
	// at which the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Peek returns the current count and reset time without incrementing.
	// An absent key reports a zero count.
	Peek(ctx context.Context, key string) (count int64, resetAt time.Time, err error)

	// Reset removes the counter for key.
	Reset(ctx context.Context, key string) error
}
