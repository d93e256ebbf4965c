package ratelimit

import (
	"context"
	"time"
)

// FixedWindow counts events per key inside fixed time windows: the first
// event starts the window, the counter increments atomically, and once the
// count exceeds the limit further events are denied until the window
// elapses. Simple, cheap, and sufficient for throttling security failures
// (CSRF mismatches, fingerprint resets) where bursts at window boundaries
// do not matter.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow creates a fixed window limiter allowing limit events per
// window per key.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}

	return &FixedWindow{
		store:  store,
		limit:  limit,
		window: window,
	}, nil
}

// Allow records one event and reports whether the key stayed within the
// limit. The event is counted even when denied, so sustained probing keeps
// the window saturated.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, resetAt, err := fw.store.Increment(ctx, key, fw.window)
	if err != nil {
		return nil, err
	}

	return fw.result(count, resetAt), nil
}

// Status reports the current window state without recording an event.
func (fw *FixedWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, resetAt, err := fw.store.Peek(ctx, key)
	if err != nil {
		return nil, err
	}
	if resetAt.IsZero() {
		resetAt = time.Now().Add(fw.window)
	}

	return &Result{
		Allowed:   count < int64(fw.limit),
		Limit:     fw.limit,
		Remaining: remaining(fw.limit, count),
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for the key.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return fw.store.Reset(ctx, key)
}

func (fw *FixedWindow) result(count int64, resetAt time.Time) *Result {
	return &Result{
		Allowed:   count <= int64(fw.limit),
		Limit:     fw.limit,
		Remaining: remaining(fw.limit, count),
		ResetAt:   resetAt,
	}
}

func remaining(limit int, count int64) int {
	if count >= int64(limit) {
		return 0
	}
	return limit - int(count)
}
