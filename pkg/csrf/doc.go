// Package csrf protects unsafe HTTP methods with session-bound
// double-submit tokens.
//
// The token is the session's CSRF secret. It reaches the client two ways:
// rendered into forms as a hidden field, and set as a script-readable
// cookie for SPA clients that echo it in a request header. On every POST,
// PUT, PATCH or DELETE the guard extracts the presented token (header
// first, then form field) and compares it against the session secret in
// constant time. An attacker's cross-site request cannot read either the
// cookie or the page, so it cannot present a matching token.
//
// The secret rotates with the session id: after login or any other
// Regenerate call, previously issued tokens stop validating.
//
// Repeated validation failures from the same client IP are throttled with
// a fixed window limiter so the guard cannot be used as a token oracle.
//
// # Usage
//
//	guard, err := csrf.New(cookies)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("POST /settings", updateSettings)
//
//	handler := session.Middleware(store, cookies)(guard.Middleware()(mux))
//
// In templates, embed the token from the handler:
//
//	sess := session.FromContext(r.Context())
//	tok, _ := guard.Token(sess)
//	// <input type="hidden" name="_token" value="{{ tok }}">
//
// Token values never appear in logs or error messages.
package csrf
