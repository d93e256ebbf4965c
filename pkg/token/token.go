package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// MinByteLength is the smallest accepted entropy size (128 bits).
// Session identifiers and CSRF secrets must never be generated below it.
const MinByteLength = 16

// Generate returns a URL-safe random token backed by byteLen bytes of
// entropy from the operating system CSPRNG. The base64url alphabet contains
// no path or cookie delimiters, so tokens can be used directly as filenames
// and cookie values.
func Generate(byteLen int) (string, error) {
	b, err := randomBytes(byteLen)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateHex returns a lowercase hex token backed by byteLen bytes of entropy.
func GenerateHex(byteLen int) (string, error) {
	b, err := randomBytes(byteLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MustGenerate is Generate for call sites where a missing CSPRNG must stop
// the process. A weak fallback is never acceptable for session identifiers.
func MustGenerate(byteLen int) string {
	t, err := Generate(byteLen)
	if err != nil {
		panic(fmt.Sprintf("token: secure random source unavailable: %v", err))
	}
	return t
}

// Equal reports whether two tokens match, in constant time.
func Equal(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func randomBytes(byteLen int) ([]byte, error) {
	if byteLen < MinByteLength {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrWeakToken, byteLen, MinByteLength)
	}

	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Join(ErrSourceUnavailable, err)
	}
	return b, nil
}
