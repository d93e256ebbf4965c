package fingerprint_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/sessionguard/pkg/fingerprint"
)

func newRequest(ua, lang, enc string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	if lang != "" {
		r.Header.Set("Accept-Language", lang)
	}
	if enc != "" {
		r.Header.Set("Accept-Encoding", enc)
	}
	return r
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("deterministic for identical requests", func(t *testing.T) {
		t.Parallel()

		r1 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r2 := newRequest("Mozilla/5.0", "en-US", "gzip")
		assert.Equal(t, fingerprint.Generate(r1), fingerprint.Generate(r2))
	})

	t.Run("differs on user agent change", func(t *testing.T) {
		t.Parallel()

		r1 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r2 := newRequest("curl/8.0", "en-US", "gzip")
		assert.NotEqual(t, fingerprint.Generate(r1), fingerprint.Generate(r2))
	})

	t.Run("differs on accept-language change", func(t *testing.T) {
		t.Parallel()

		r1 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r2 := newRequest("Mozilla/5.0", "de-DE", "gzip")
		assert.NotEqual(t, fingerprint.Generate(r1), fingerprint.Generate(r2))
	})

	t.Run("ignores client address", func(t *testing.T) {
		t.Parallel()

		r1 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r1.RemoteAddr = "192.0.2.1:1000"
		r2 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r2.RemoteAddr = "198.51.100.2:2000"
		assert.Equal(t, fingerprint.Generate(r1), fingerprint.Generate(r2))
	})

	t.Run("fixed output length", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, fingerprint.Generate(newRequest("a", "b", "c")), 32)
		assert.Len(t, fingerprint.Generate(newRequest("", "", "")), 32)
	})
}

func TestCompute(t *testing.T) {
	t.Parallel()

	h1 := fingerprint.Compute("Mozilla/5.0", "en-US", "gzip")
	h2 := fingerprint.Compute("Mozilla/5.0", "en-US", "gzip")
	h3 := fingerprint.Compute("curl/8.0", "en-US", "gzip")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 32)
}

func TestGenerateComputeAgree(t *testing.T) {
	t.Parallel()

	t.Run("same client hashes identically through both entry points", func(t *testing.T) {
		t.Parallel()

		r := newRequest("Mozilla/5.0", "en-US", "gzip")
		fromRequest := fingerprint.Generate(r)
		fromAttrs := fingerprint.Compute("Mozilla/5.0", "en-US", "gzip")
		assert.Equal(t, fromAttrs, fromRequest)
	})

	t.Run("extra request headers do not change the fingerprint", func(t *testing.T) {
		t.Parallel()

		r1 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r2 := newRequest("Mozilla/5.0", "en-US", "gzip")
		r2.Header.Set("Accept", "text/html")
		r2.Header.Set("Sec-Fetch-Mode", "navigate")
		r2.Header.Set("Cache-Control", "no-cache")
		assert.Equal(t, fingerprint.Generate(r1), fingerprint.Generate(r2))
	})

	t.Run("validate accepts a fingerprint stored from attributes", func(t *testing.T) {
		t.Parallel()

		stored := fingerprint.Compute("Mozilla/5.0", "en-US", "gzip")
		r := newRequest("Mozilla/5.0", "en-US", "gzip")
		r.Header.Set("Accept", "text/html")
		assert.True(t, fingerprint.Validate(r, stored))
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	r := newRequest("Mozilla/5.0", "en-US", "gzip")
	stored := fingerprint.Generate(r)

	assert.True(t, fingerprint.Validate(r, stored))
	assert.False(t, fingerprint.Validate(newRequest("curl/8.0", "en-US", "gzip"), stored))
	assert.False(t, fingerprint.Validate(r, ""))
}
