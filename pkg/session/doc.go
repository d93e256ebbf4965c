// Package session manages server-side session state keyed by an opaque,
// cryptographically random id presented in a signed cookie.
//
// A Manager owns exactly one session for exactly one request: it loads or
// creates the record on Start, mediates all reads and writes through
// dotted-path accessors ("user.profile.name"), and persists through a
// pluggable Store on Save. Managers are constructed per request and passed
// through the pipeline; there is no process-wide session registry.
//
// # Stores
//
// Four Store implementations ship with the package:
//
//   - MemoryStore: in-process map, for tests and development
//   - FileStore:   one JSON file per session, temp-file + atomic rename
//   - PGStore:     one row per session on PostgreSQL (pgx), upsert writes
//   - RedisStore:  one JSON value per session with server-side TTL
//
// All stores replace the full record atomically and serialize writers per
// id, so concurrent requests for the same session resolve to
// last-writer-wins at Save granularity.
//
// # Security behavior
//
// Start binds a fingerprint of stable client attributes to every new
// session. When an adopted session's fingerprint no longer matches, the
// record is destroyed and the request continues on a clean anonymous
// session; ErrFingerprintMismatch is returned purely as a logging signal.
// Regenerate swaps the id while carrying data forward (the old id stops
// resolving before the new one is returned) and rotates the session-bound
// CSRF secret; Login performs it implicitly, which is what defeats session
// fixation.
//
// # Flash data
//
// Flash values live in a reserved sub-namespace of the session data and
// survive exactly one subsequent request: set now, readable on the next
// request, removed by the save after that.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	cookies, _ := cookie.New([]string{secret})
//
//	mux := http.NewServeMux()
//	handler := session.Middleware(store, cookies)(mux)
//
//	func profile(w http.ResponseWriter, r *http.Request) {
//	    sess := session.FromContext(r.Context())
//	    _ = sess.Put("cart.laptop", 1)
//	}
package session
