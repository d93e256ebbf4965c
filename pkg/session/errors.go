package session

import "errors"

var (
	// ErrSessionNotFound indicates no stored record exists for the id.
	// Recoverable: callers start a fresh anonymous session.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the stored record outlived its lifetime.
	// Treated the same as not found.
	ErrSessionExpired = errors.New("session.expired")

	// ErrStoreUnavailable indicates a backend I/O failure. Retryable;
	// never silently treated as "no session".
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrFingerprintMismatch signals that an adopted session was presented
	// from a different client context. The manager has already destroyed
	// the suspect session and started a clean anonymous one; the error is
	// surfaced for logging and monitoring only.
	ErrFingerprintMismatch = errors.New("session.fingerprint_mismatch")

	// ErrNotStarted indicates an accessor was called before Start.
	ErrNotStarted = errors.New("session.not_started")

	// ErrAlreadyStarted indicates Start was called twice for one request.
	ErrAlreadyStarted = errors.New("session.already_started")

	// ErrAlreadySaved indicates a mutation was attempted after Save.
	// Saved is a terminal state; mutations must happen before the final
	// save of the request.
	ErrAlreadySaved = errors.New("session.already_saved")

	// ErrSessionDestroyed indicates a mutation was attempted after Destroy.
	// Mutating a destroyed session is a bug in the caller, never a no-op.
	ErrSessionDestroyed = errors.New("session.destroyed")

	// ErrInvalidRecord indicates a nil or id-less record was handed to a store.
	ErrInvalidRecord = errors.New("session.invalid_record")

	// ErrReservedKey indicates an accessor path roots in a reserved
	// namespace ("_csrf", "_flash"). Those live under dedicated APIs
	// (CSRFSecret, Flash/GetFlash) and are off-limits to Put and friends.
	ErrReservedKey = errors.New("session.reserved_key")
)
