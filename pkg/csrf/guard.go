package csrf

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/cookie"
	"github.com/dmitrymomot/sessionguard/pkg/ratelimit"
	"github.com/dmitrymomot/sessionguard/pkg/session"
	"github.com/dmitrymomot/sessionguard/pkg/token"
)

// Guard implements double-submit CSRF protection bound to the session.
// The token is the session's CSRF secret: it is delivered to the client in
// a script-readable cookie (and meant to be embedded in forms), and every
// unsafe request must echo it back in a header or form field. The echoed
// value is checked against the session secret, not the cookie, so a forged
// cookie alone proves nothing.
type Guard struct {
	cookies *cookie.Manager
	limiter ratelimit.Limiter
	config  Config
	log     *slog.Logger
}

// New creates a Guard. Without WithLimiter the guard throttles validation
// failures with an in-memory fixed window of MaxFailures per FailureWindow.
func New(cookies *cookie.Manager, opts ...Option) (*Guard, error) {
	if cookies == nil {
		return nil, ErrCookieManagerRequired
	}

	g := &Guard{
		cookies: cookies,
		config:  DefaultConfig(),
		log:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.limiter == nil {
		limiter, err := ratelimit.NewFixedWindow(
			ratelimit.NewMemoryStore(),
			g.config.MaxFailures,
			g.config.FailureWindow,
		)
		if err != nil {
			return nil, err
		}
		g.limiter = limiter
	}

	return g, nil
}

// Token returns the CSRF token for the session, embeddable in forms as a
// hidden field named by Config.FieldName.
func (g *Guard) Token(sess *session.Manager) (string, error) {
	if sess == nil {
		return "", ErrNoSession
	}
	return sess.CSRFSecret()
}

// Issue writes the token cookie so script clients can read it and echo it
// in the request header. The cookie is deliberately not HttpOnly.
func (g *Guard) Issue(w http.ResponseWriter, sess *session.Manager) error {
	tok, err := g.Token(sess)
	if err != nil {
		return err
	}

	return g.cookies.Set(w, g.config.CookieName, tok,
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithSecure(g.config.SecureCookies),
	)
}

// TokenFromRequest extracts the presented token, preferring the header
// over the form field.
func (g *Guard) TokenFromRequest(r *http.Request) string {
	if tok := r.Header.Get(g.config.HeaderName); tok != "" {
		return tok
	}
	return r.PostFormValue(g.config.FieldName)
}

// Check validates the request's token while enforcing the per-client
// failure limit: a client over the limit gets ErrRateLimited before any
// validation work, a failed validation counts toward the limit, and the
// failure that saturates the window carries ErrRateLimited alongside its
// cause. A nil return means the token matched.
func (g *Guard) Check(ctx context.Context, r *http.Request, sess *session.Manager) error {
	key := ratelimit.Key("csrf", clientip.GetIP(r))

	// Known-throttled clients are rejected before validation so a probing
	// loop cannot use validation itself as an oracle.
	if status, err := g.limiter.Status(ctx, key); err == nil && status.Err() != nil {
		return ErrRateLimited
	}

	cause := g.Validate(r, sess)
	if cause == nil {
		return nil
	}

	result, err := g.limiter.Allow(ctx, key)
	if err != nil {
		g.log.ErrorContext(ctx, "csrf failure counter", "error", err)
	} else if result.Err() != nil {
		return errors.Join(ErrRateLimited, cause)
	}
	return cause
}

// Validate checks the request's token against the session secret using a
// constant time comparison. Token values never appear in errors or logs.
func (g *Guard) Validate(r *http.Request, sess *session.Manager) error {
	if sess == nil {
		return ErrNoSession
	}

	presented := g.TokenFromRequest(r)
	if presented == "" {
		return ErrTokenMissing
	}

	secret, err := sess.CSRFSecret()
	if err != nil {
		return err
	}

	if !token.Equal(presented, secret) {
		return ErrTokenMismatch
	}
	return nil
}

// Config returns the guard's effective configuration.
func (g *Guard) Config() Config {
	return g.config
}
