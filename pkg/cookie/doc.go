// Package cookie provides a small cookie manager with secure defaults
// (HttpOnly, SameSite=Lax, Path=/) and HMAC-signed variants for values
// the client must not be able to forge.
//
// The session layer uses it for two cookies: the HttpOnly session id
// cookie, and the readable double-submit CSRF cookie. Attributes are set
// through functional options so individual cookies can relax or tighten
// the manager's defaults:
//
//	mgr, _ := cookie.New([]string{secret})
//	mgr.Set(w, "csrf_token", tok, cookie.WithHTTPOnly(false))
//
// Multiple secrets enable key rotation: the first signs new cookies,
// older ones still verify.
package cookie
