// Package token produces cryptographically secure random identifiers and
// secrets for session ids and CSRF tokens.
//
// All tokens are drawn from crypto/rand and encoded with a fixed URL-safe
// alphabet (base64url without padding, or lowercase hex). Generation fails
// with ErrSourceUnavailable when the CSPRNG is unavailable; there is no
// fallback to a weaker source. MustGenerate panics in that case, which is
// the intended behavior during process startup.
//
//	id, err := token.Generate(32) // 256 bits, 43 chars
//
// Equal compares two tokens in constant time and is the only comparison
// the rest of the module uses for secrets.
package token
