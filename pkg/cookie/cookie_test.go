package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/cookie"
)

const testSecret = "test-secret-key-with-enough-length!!"

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires a secret", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New(nil)
		assert.ErrorIs(t, err, cookie.ErrNoSecret)

		_, err = cookie.New([]string{""})
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New([]string{"short"})
		assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, mgr.Set(w, "sid", "value-123"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "value-123", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, "/", cookies[0].Path)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	got, err := mgr.Get(r, "sid")
	require.NoError(t, err)
	assert.Equal(t, "value-123", got)

	_, err = mgr.Get(r, "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, mgr.Set(w, "csrf_token", "tok",
		cookie.WithHTTPOnly(false),
		cookie.WithSecure(true),
		cookie.WithMaxAge(3600),
	))

	c := w.Result().Cookies()[0]
	assert.False(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestSigned(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, mgr.SetSigned(w, "sid", "session-id-value"))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(w.Result().Cookies()[0])

		got, err := mgr.GetSigned(r, "sid")
		require.NoError(t, err)
		assert.Equal(t, "session-id-value", got)
	})

	t.Run("tampered value rejected", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, mgr.SetSigned(w, "sid", "session-id-value"))

		c := w.Result().Cookies()[0]
		parts := strings.SplitN(c.Value, "|", 2)
		require.Len(t, parts, 2)
		c.Value = parts[0] + "x|" + parts[1]

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)

		_, err := mgr.GetSigned(r, "sid")
		assert.Error(t, err)
	})

	t.Run("key rotation keeps old cookies valid", func(t *testing.T) {
		t.Parallel()

		oldMgr, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, oldMgr.SetSigned(w, "sid", "from-old-key"))

		rotated, err := cookie.New([]string{"new-secret-key-with-enough-length!!!", testSecret})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(w.Result().Cookies()[0])

		got, err := rotated.GetSigned(r, "sid")
		require.NoError(t, err)
		assert.Equal(t, "from-old-key", got)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	mgr, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	mgr.Delete(w, "sid")

	c := w.Result().Cookies()[0]
	assert.Equal(t, "sid", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
}
