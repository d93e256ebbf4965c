package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrymomot/sessionguard/pkg/token"
)

// Generate creates a client fingerprint from the HTTP request. It hashes
// the same attribute set as Compute, so a fingerprint stored from
// extracted attributes validates against the original request and vice
// versa.
//
// The client IP is deliberately excluded: mobile carriers and corporate
// proxies rotate addresses mid-session, and an IP-based fingerprint would
// log out exactly those users on every hop.
func Generate(r *http.Request) string {
	return Compute(
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
	)
}

// Compute derives a fingerprint from already-extracted request attributes.
// Used by callers that carry client attributes detached from *http.Request.
func Compute(userAgent, acceptLanguage, acceptEncoding string) string {
	return combine(userAgent, acceptLanguage, acceptEncoding)
}

// Validate compares the current request's fingerprint with a stored one
// in constant time.
func Validate(r *http.Request, stored string) bool {
	return token.Equal(Generate(r), stored)
}

func combine(components ...string) string {
	var filtered []string
	for _, comp := range components {
		if comp != "" {
			filtered = append(filtered, comp)
		}
	}

	combined := strings.Join(filtered, "|")
	hash := sha256.Sum256([]byte(combined))

	// First 16 bytes as 32-character hex string
	return hex.EncodeToString(hash[:16])
}
