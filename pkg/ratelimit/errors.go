package ratelimit

import "errors"

var (
	// ErrRateLimitExceeded distinguishes throttling from other rejections
	// so monitoring can tell probing from accidental staleness.
	ErrRateLimitExceeded = errors.New("ratelimit.exceeded")

	ErrInvalidLimit    = errors.New("ratelimit.invalid_limit")
	ErrInvalidInterval = errors.New("ratelimit.invalid_interval")
	ErrKeyRequired     = errors.New("ratelimit.key_required")
	ErrStoreRequired   = errors.New("ratelimit.store_required")

	// ErrStoreUnavailable indicates the counter backend is unreachable.
	ErrStoreUnavailable = errors.New("ratelimit.store_unavailable")
)
