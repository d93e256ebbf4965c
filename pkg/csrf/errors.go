package csrf

import "errors"

var (
	// ErrTokenMissing indicates the request carried no CSRF token at all,
	// usually a missing hidden field or a client that lost its cookie.
	ErrTokenMissing = errors.New("csrf.token_missing")

	// ErrTokenMismatch indicates the presented token does not match the
	// session secret. Distinct from ErrTokenMissing so stale forms can be
	// told apart from forged requests in monitoring.
	ErrTokenMismatch = errors.New("csrf.token_mismatch")

	// ErrRateLimited indicates the client accumulated too many validation
	// failures and further attempts are rejected before validation.
	ErrRateLimited = errors.New("csrf.rate_limited")

	// ErrNoSession indicates no session manager was found on the request
	// context. The guard must run inside session middleware.
	ErrNoSession = errors.New("csrf.no_session")

	ErrCookieManagerRequired = errors.New("csrf.cookie_manager_required")
)
