// Package ratelimit provides fixed window rate limiting with pluggable
// counter backends.
//
// The FixedWindow limiter counts events per key: the first event starts a
// window, each further event increments an atomic counter, and once the
// count exceeds the limit events are denied until the window elapses.
// Denied events are still counted, so a client that keeps probing never
// sees the window clear.
//
// Two backends ship with the package. MemoryStore keeps counters in an
// in-process map and suits single-instance services and tests. RedisStore
// shares counters across instances and leans on Redis TTLs for expiry.
//
// # Usage
//
//	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 5, 5*time.Minute)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Allow(ctx, ratelimit.Key("login", clientIP))
//	if err != nil {
//		// counter backend failure, fail closed or open per policy
//	}
//	if !result.Allowed {
//		// deny, optionally expose result.RetryAfter()
//	}
//
// Status reports the window state without consuming an attempt, which lets
// callers reject known-throttled clients before doing any work:
//
//	status, err := limiter.Status(ctx, key)
//	if err == nil && !status.Allowed {
//		// already over the limit, short-circuit
//	}
//
// Keys are free-form strings. Key and Composite help build them from
// request attributes while keeping storage keys bounded in length.
package ratelimit
