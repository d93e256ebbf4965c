package csrf

import (
	"log/slog"

	"github.com/dmitrymomot/sessionguard/pkg/ratelimit"
)

// Option customizes a Guard.
type Option func(*Guard)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(g *Guard) {
		g.config = cfg
	}
}

// WithLimiter replaces the default in-memory failure limiter, e.g. with a
// Redis-backed one shared across instances.
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(g *Guard) {
		g.limiter = limiter
	}
}

// WithLogger sets the logger for validation failures.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}
