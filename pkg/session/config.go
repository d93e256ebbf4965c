package session

import "time"

// Config holds session configuration.
type Config struct {
	// CookieName is the name of the session id cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// Lifetime is how long a session survives past its last activity.
	Lifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`

	// ActivityThreshold is the minimum stored-activity age before a
	// read-only request triggers a refresh write.
	ActivityThreshold time.Duration `env:"SESSION_ACTIVITY_THRESHOLD" envDefault:"5m"`

	// StoreTimeout bounds every store I/O call.
	StoreTimeout time.Duration `env:"SESSION_STORE_TIMEOUT" envDefault:"5s"`

	// GCDivisor sets the 1-in-N per-request chance of an expired-session
	// sweep. 0 disables probabilistic GC.
	GCDivisor int `env:"SESSION_GC_DIVISOR" envDefault:"100"`

	// SecureCookies enables the Secure flag on session cookies
	// (recommended whenever the transport is encrypted).
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:        "sid",
		Lifetime:          24 * time.Hour,
		ActivityThreshold: 5 * time.Minute,
		StoreTimeout:      5 * time.Second,
		GCDivisor:         100,
		SecureCookies:     false,
	}
}
