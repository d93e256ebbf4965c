package session_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/pkg/fingerprint"
	"github.com/dmitrymomot/sessionguard/pkg/session"
)

var (
	browserClient = session.Client{
		IP:             "192.0.2.10",
		UserAgent:      "Mozilla/5.0",
		AcceptLanguage: "en-US",
		AcceptEncoding: "gzip",
	}
	curlClient = session.Client{
		IP:             "192.0.2.10",
		UserAgent:      "curl/8.0",
		AcceptLanguage: "en-US",
		AcceptEncoding: "gzip",
	}
)

func TestManagerStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fresh anonymous session", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		m := session.NewManager(store)

		require.NoError(t, m.Start(ctx, "", browserClient))
		assert.NotEmpty(t, m.ID())
		assert.False(t, m.Persisted())
		assert.Equal(t, browserClient.Fingerprint(), m.Session().Fingerprint)
	})

	t.Run("stored fingerprint validates against the originating request", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("User-Agent", browserClient.UserAgent)
		r.Header.Set("Accept-Language", browserClient.AcceptLanguage)
		r.Header.Set("Accept-Encoding", browserClient.AcceptEncoding)
		r.Header.Set("Accept", "text/html")

		store := session.NewMemoryStore()
		m := session.NewManager(store)
		require.NoError(t, m.Start(ctx, "", session.ClientFromRequest(r)))

		assert.True(t, fingerprint.Validate(r, m.Session().Fingerprint))
	})

	t.Run("unknown id starts fresh", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		m := session.NewManager(store)

		require.NoError(t, m.Start(ctx, "no-such-session", browserClient))
		assert.NotEqual(t, "no-such-session", m.ID())
	})

	t.Run("double start rejected", func(t *testing.T) {
		t.Parallel()

		m := session.NewManager(session.NewMemoryStore())
		require.NoError(t, m.Start(ctx, "", browserClient))
		assert.ErrorIs(t, m.Start(ctx, "", browserClient), session.ErrAlreadyStarted)
	})

	t.Run("expired record starts fresh", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()

		m1 := session.NewManager(store, session.WithLifetime(20*time.Millisecond))
		require.NoError(t, m1.Start(ctx, "", browserClient))
		require.NoError(t, m1.Put("k", "v"))
		require.NoError(t, m1.Save(ctx))
		id := m1.ID()

		time.Sleep(50 * time.Millisecond)

		m2 := session.NewManager(store, session.WithLifetime(20*time.Millisecond))
		require.NoError(t, m2.Start(ctx, id, browserClient))
		assert.NotEqual(t, id, m2.ID())

		has, err := m2.Has("k")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		t.Parallel()

		m := session.NewManager(failingStore{})
		err := m.Start(ctx, "some-id", browserClient)
		assert.ErrorIs(t, err, session.ErrStoreUnavailable)
	})
}

func TestManagerRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()

	m1 := session.NewManager(store)
	require.NoError(t, m1.Start(ctx, "", browserClient))
	require.NoError(t, m1.Put("cart.laptop", 1))
	require.NoError(t, m1.Put("user_id", 42))
	require.NoError(t, m1.Save(ctx))
	id := m1.ID()

	m2 := session.NewManager(store)
	require.NoError(t, m2.Start(ctx, id, browserClient))
	assert.Equal(t, id, m2.ID())

	qty, err := m2.GetInt("cart.laptop", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	uid, err := m2.GetInt("user_id", 0)
	require.NoError(t, err)
	assert.Equal(t, 42, uid)
}

func TestManagerStateMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("accessors before start", func(t *testing.T) {
		t.Parallel()

		m := session.NewManager(session.NewMemoryStore())

		_, err := m.Get("k", nil)
		assert.ErrorIs(t, err, session.ErrNotStarted)
		assert.ErrorIs(t, m.Put("k", "v"), session.ErrNotStarted)
		assert.ErrorIs(t, m.Save(ctx), session.ErrNotStarted)
		assert.ErrorIs(t, m.Destroy(ctx), session.ErrNotStarted)
	})

	t.Run("mutation after save", func(t *testing.T) {
		t.Parallel()

		m := session.NewManager(session.NewMemoryStore())
		require.NoError(t, m.Start(ctx, "", browserClient))
		require.NoError(t, m.Put("k", "v"))
		require.NoError(t, m.Save(ctx))

		assert.ErrorIs(t, m.Put("k2", "v2"), session.ErrAlreadySaved)
		assert.NoError(t, m.Save(ctx), "repeated save is a no-op")

		// Reads remain available after save
		val, err := m.GetString("k", "")
		require.NoError(t, err)
		assert.Equal(t, "v", val)
	})

	t.Run("mutation after destroy fails loudly", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		m := session.NewManager(store)
		require.NoError(t, m.Start(ctx, "", browserClient))
		require.NoError(t, m.Put("k", "v"))
		require.NoError(t, m.Save(ctx))
		id := m.ID()

		m2 := session.NewManager(store)
		require.NoError(t, m2.Start(ctx, id, browserClient))
		require.NoError(t, m2.Destroy(ctx))
		assert.True(t, m2.Destroyed())

		_, err := m2.Get("k", nil)
		assert.ErrorIs(t, err, session.ErrSessionDestroyed)
		assert.ErrorIs(t, m2.Put("k", "v"), session.ErrSessionDestroyed)
		assert.ErrorIs(t, m2.Flush(), session.ErrSessionDestroyed)

		// Save after destroy must not resurrect the record
		assert.NoError(t, m2.Save(ctx))
		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("unmutated fresh session is not persisted", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		m := session.NewManager(store)
		require.NoError(t, m.Start(ctx, "", browserClient))
		require.NoError(t, m.Save(ctx))

		assert.False(t, m.Persisted())
		assert.Equal(t, 0, store.Len())
	})
}

func TestManagerRegenerate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()

	m1 := session.NewManager(store)
	require.NoError(t, m1.Start(ctx, "", browserClient))
	require.NoError(t, m1.Put("cart.laptop", 1))
	require.NoError(t, m1.Save(ctx))
	oldID := m1.ID()

	m2 := session.NewManager(store)
	require.NoError(t, m2.Start(ctx, oldID, browserClient))

	oldSecret, err := m2.CSRFSecret()
	require.NoError(t, err)

	require.NoError(t, m2.Regenerate(ctx))
	newID := m2.ID()

	assert.NotEqual(t, oldID, newID)
	assert.True(t, m2.IDRotated())

	// Old id is unresolvable
	_, err = store.Load(ctx, oldID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// New id carries the data forward
	m3 := session.NewManager(store)
	require.NoError(t, m3.Start(ctx, newID, browserClient))
	qty, err := m3.GetInt("cart.laptop", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	// CSRF secret was rotated with the id
	newSecret, err := m3.CSRFSecret()
	require.NoError(t, err)
	assert.NotEqual(t, oldSecret, newSecret)
}

func TestManagerLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()
	userID := uuid.New()

	m := session.NewManager(store)
	require.NoError(t, m.Start(ctx, "", browserClient))
	require.NoError(t, m.Put("intended_url", "/dashboard"))
	require.NoError(t, m.Save(ctx))
	anonID := m.ID()

	m2 := session.NewManager(store)
	require.NoError(t, m2.Start(ctx, anonID, browserClient))
	require.NoError(t, m2.Login(ctx, userID))

	assert.NotEqual(t, anonID, m2.ID(), "login must rotate the id")

	// The pre-login id no longer resolves: fixation defeated
	_, err := store.Load(ctx, anonID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	m3 := session.NewManager(store)
	require.NoError(t, m3.Start(ctx, m2.ID(), browserClient))
	require.True(t, m3.Session().IsAuthenticated())
	assert.Equal(t, userID, *m3.Session().UserID)

	url, err := m3.GetString("intended_url", "")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", url)
}

func TestManagerFingerprintGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("mismatch destroys and restarts anonymous", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()

		m1 := session.NewManager(store)
		require.NoError(t, m1.Start(ctx, "", browserClient))
		require.NoError(t, m1.Put("user_id", 42))
		require.NoError(t, m1.Save(ctx))
		id := m1.ID()

		m2 := session.NewManager(store)
		err := m2.Start(ctx, id, curlClient)
		assert.ErrorIs(t, err, session.ErrFingerprintMismatch)

		// Manager is usable, but on a clean anonymous session
		assert.NotEqual(t, id, m2.ID())
		has, herr := m2.Has("user_id")
		require.NoError(t, herr)
		assert.False(t, has, "prior privileged state must not survive")

		// The suspect record is gone
		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("matching fingerprint adopts", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()

		m1 := session.NewManager(store)
		require.NoError(t, m1.Start(ctx, "", browserClient))
		require.NoError(t, m1.Put("k", "v"))
		require.NoError(t, m1.Save(ctx))

		m2 := session.NewManager(store)
		require.NoError(t, m2.Start(ctx, m1.ID(), browserClient))
		assert.Equal(t, m1.ID(), m2.ID())
	})

	t.Run("fingerprint bound on first observation", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()

		// Record persisted without a fingerprint (pre-fingerprinting data)
		bare := session.NewSession("legacy-id")
		bare.Set("k", "v")
		require.NoError(t, store.Save(ctx, bare, time.Hour))

		m := session.NewManager(store)
		require.NoError(t, m.Start(ctx, "legacy-id", browserClient))
		assert.Equal(t, browserClient.Fingerprint(), m.Session().Fingerprint)
	})
}

func TestManagerCSRFSecret(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := session.NewManager(session.NewMemoryStore())
	require.NoError(t, m.Start(ctx, "", browserClient))

	s1, err := m.CSRFSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, s1)
	assert.GreaterOrEqual(t, len(s1), 43, "32 bytes of entropy, base64url encoded")

	s2, err := m.CSRFSecret()
	require.NoError(t, err)
	assert.Equal(t, s1, s2, "secret is stable within one session")
}

func TestManagerReservedKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := session.NewManager(session.NewMemoryStore())
	require.NoError(t, m.Start(ctx, "", browserClient))

	secret, err := m.CSRFSecret()
	require.NoError(t, err)
	require.NoError(t, m.Flash("notice", "saved"))

	t.Run("writes rejected", func(t *testing.T) {
		assert.ErrorIs(t, m.Put("_csrf", "attacker-controlled"), session.ErrReservedKey)
		assert.ErrorIs(t, m.Put("_flash.notice", "x"), session.ErrReservedKey)
		assert.ErrorIs(t, m.Forget("_csrf"), session.ErrReservedKey)
	})

	t.Run("reads rejected", func(t *testing.T) {
		_, err := m.Get("_csrf", nil)
		assert.ErrorIs(t, err, session.ErrReservedKey)

		_, err = m.Has("_flash")
		assert.ErrorIs(t, err, session.ErrReservedKey)
	})

	t.Run("dedicated accessors still work", func(t *testing.T) {
		again, err := m.CSRFSecret()
		require.NoError(t, err)
		assert.Equal(t, secret, again, "rejected write must not have touched the secret")

		val, err := m.GetFlash("notice", nil)
		require.NoError(t, err)
		assert.Equal(t, "saved", val)
	})

	t.Run("underscore-prefixed application keys unaffected", func(t *testing.T) {
		require.NoError(t, m.Put("_internal", 1))
		has, err := m.Has("_internal")
		require.NoError(t, err)
		assert.True(t, has)
	})
}

func TestManagerFlashOneHop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()

	// Request 1: set the flash
	m1 := session.NewManager(store)
	require.NoError(t, m1.Start(ctx, "", browserClient))
	require.NoError(t, m1.Flash("msg", "hi"))
	require.NoError(t, m1.Save(ctx))
	id := m1.ID()

	// Request 2: read it
	m2 := session.NewManager(store)
	require.NoError(t, m2.Start(ctx, id, browserClient))
	val, err := m2.GetFlash("msg", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", val)
	require.NoError(t, m2.Save(ctx))

	// Request 3: gone
	m3 := session.NewManager(store)
	require.NoError(t, m3.Start(ctx, id, browserClient))
	val, err = m3.GetFlash("msg", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", val)
}

func TestManagerFlashUnreadExpires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()

	m1 := session.NewManager(store)
	require.NoError(t, m1.Start(ctx, "", browserClient))
	require.NoError(t, m1.Flash("msg", "hi"))
	require.NoError(t, m1.Save(ctx))
	id := m1.ID()

	// Request 2 never reads the flash
	m2 := session.NewManager(store)
	require.NoError(t, m2.Start(ctx, id, browserClient))
	require.NoError(t, m2.Save(ctx))

	// Request 3: the one-hop guarantee has elapsed
	m3 := session.NewManager(store)
	require.NoError(t, m3.Start(ctx, id, browserClient))
	val, err := m3.GetFlash("msg", "gone")
	require.NoError(t, err)
	assert.Equal(t, "gone", val)
}

func TestManagerTypedGetters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := session.NewManager(session.NewMemoryStore())
	require.NoError(t, m.Start(ctx, "", browserClient))
	require.NoError(t, m.Put("name", "Ada"))
	require.NoError(t, m.Put("count", 3))
	require.NoError(t, m.Put("active", true))

	name, err := m.GetString("name", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)

	count, err := m.GetInt("count", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	active, err := m.GetBool("active", false)
	require.NoError(t, err)
	assert.True(t, active)

	// Defaults on absence and on type mismatch
	missing, err := m.GetString("nope", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", missing)

	wrongType, err := m.GetInt("name", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, wrongType)
}

// failingStore simulates a backend outage for error-propagation tests.
type failingStore struct{}

func (failingStore) Load(context.Context, string) (*session.Session, error) {
	return nil, fmt.Errorf("%w: connection refused", session.ErrStoreUnavailable)
}

func (failingStore) Save(context.Context, *session.Session, time.Duration) error {
	return fmt.Errorf("%w: connection refused", session.ErrStoreUnavailable)
}

func (failingStore) Destroy(context.Context, string) error {
	return fmt.Errorf("%w: connection refused", session.ErrStoreUnavailable)
}

func (failingStore) GC(context.Context, time.Time) (int, error) {
	return 0, fmt.Errorf("%w: connection refused", session.ErrStoreUnavailable)
}
