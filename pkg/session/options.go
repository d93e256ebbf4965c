package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithConfig sets the full configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithLogger sets the logger for security signals and GC reporting.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithLifetime sets how long a session survives past its last activity.
func WithLifetime(lifetime time.Duration) Option {
	return func(m *Manager) {
		m.config.Lifetime = lifetime
	}
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithStoreTimeout bounds every store I/O call.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.config.StoreTimeout = timeout
	}
}

// WithGCDivisor sets the 1-in-N probabilistic GC trigger (0 disables).
func WithGCDivisor(divisor int) Option {
	return func(m *Manager) {
		m.config.GCDivisor = divisor
	}
}

// WithIDGenerator replaces the session id generator. Test hook; production
// code should not swap out the CSPRNG-backed default.
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Manager) {
		if gen != nil {
			m.genID = gen
		}
	}
}
