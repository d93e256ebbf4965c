package csrf

import "time"

// Config holds CSRF guard settings loadable from environment variables.
type Config struct {
	// CookieName is the cookie carrying the token for JavaScript clients.
	// The cookie is intentionally readable from scripts.
	CookieName string `env:"CSRF_COOKIE_NAME" envDefault:"csrf_token"`

	// FieldName is the form field checked when the header is absent.
	FieldName string `env:"CSRF_FIELD_NAME" envDefault:"_token"`

	// HeaderName is checked first; SPA clients echo the cookie here.
	HeaderName string `env:"CSRF_HEADER_NAME" envDefault:"X-CSRF-TOKEN"`

	// MaxFailures is the number of validation failures tolerated per
	// client IP within FailureWindow before requests are rejected outright.
	MaxFailures int `env:"CSRF_MAX_FAILURES" envDefault:"5"`

	// FailureWindow bounds the failure counter.
	FailureWindow time.Duration `env:"CSRF_FAILURE_WINDOW" envDefault:"5m"`

	// SecureCookies marks the token cookie Secure. Enable in production.
	SecureCookies bool `env:"CSRF_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns the settings used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		CookieName:    "csrf_token",
		FieldName:     "_token",
		HeaderName:    "X-CSRF-TOKEN",
		MaxFailures:   5,
		FailureWindow: 5 * time.Minute,
		SecureCookies: false,
	}
}
