package session

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
	"github.com/dmitrymomot/sessionguard/pkg/fingerprint"
	"github.com/dmitrymomot/sessionguard/pkg/token"
)

// Client carries the request attributes the session layer needs: the
// fingerprint inputs plus the address stored in the database backend's
// audit columns.
type Client struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
}

// ClientFromRequest extracts session-relevant attributes from a request.
func ClientFromRequest(r *http.Request) Client {
	return Client{
		IP:             clientip.GetIP(r),
		UserAgent:      r.UserAgent(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
	}
}

// Fingerprint hashes the stable client attributes.
func (c Client) Fingerprint() string {
	return fingerprint.Compute(c.UserAgent, c.AcceptLanguage, c.AcceptEncoding)
}

type managerState int

const (
	stateUnstarted managerState = iota
	stateStarted
	stateSaved
	stateDestroyed
)

// IDGenerator produces session ids. Replaceable for tests.
type IDGenerator func() (string, error)

// Manager owns one session's lifecycle for one request: load or create,
// mutate, regenerate, destroy, save. Construct one per request and pass it
// through the handling pipeline; it is not safe for concurrent use and
// never shared across requests.
type Manager struct {
	store  Store
	config Config
	log    *slog.Logger
	genID  IDGenerator

	state     managerState
	sess      *Session
	adopted   bool
	persisted bool
	// loadedActivity is the stored activity timestamp at adoption time,
	// used to throttle activity-only writes.
	loadedActivity time.Time
	rotated        bool
}

// NewManager creates a per-request session manager. The store is required;
// a nil store is a wiring bug and fails fast.
func NewManager(store Store, opts ...Option) *Manager {
	if store == nil {
		panic("session: store is required")
	}

	m := &Manager{
		store:  store,
		config: DefaultConfig(),
		log:    slog.Default(),
		genID: func() (string, error) {
			return token.Generate(32)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the session for incomingID or creates a fresh anonymous one.
// Exactly one Start per request.
//
// A fingerprint mismatch on an adopted session is handled defensively: the
// suspect record is destroyed, a clean anonymous session replaces it, and
// ErrFingerprintMismatch is returned as a signal. The manager is fully
// started in that case and the request should proceed anonymously.
func (m *Manager) Start(ctx context.Context, incomingID string, client Client) error {
	if m.state != stateUnstarted {
		return ErrAlreadyStarted
	}

	if incomingID != "" {
		sess, err := m.load(ctx, incomingID)
		switch {
		case err == nil:
			return m.adopt(ctx, sess, client)
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
			// Fresh anonymous session below.
		default:
			return err
		}
	}

	return m.startFresh(client)
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	ctx, cancel := m.storeCtx(ctx)
	defer cancel()

	sess, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, m.wrapStoreErr(err)
	}

	if m.expired(sess) {
		dctx, dcancel := m.storeCtx(context.WithoutCancel(ctx))
		defer dcancel()
		_ = m.store.Destroy(dctx, id)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

func (m *Manager) adopt(ctx context.Context, sess *Session, client Client) error {
	current := client.Fingerprint()

	if sess.Fingerprint != "" && !token.Equal(sess.Fingerprint, current) {
		// The cookie is valid but the client context changed: assume the
		// id leaked. Never trust the session's prior state.
		dctx, cancel := m.storeCtx(ctx)
		_ = m.store.Destroy(dctx, sess.ID)
		cancel()

		m.log.WarnContext(ctx, "session fingerprint mismatch, resetting session",
			slog.String("session_id", previewID(sess.ID)),
			slog.String("ip", client.IP),
		)

		if err := m.startFresh(client); err != nil {
			return err
		}
		return ErrFingerprintMismatch
	}

	if sess.Fingerprint == "" {
		// Legacy record from before fingerprinting: bind it now.
		sess.Fingerprint = current
		sess.dirty = true
	}

	m.loadedActivity = sess.LastActivityAt
	sess.Touch()

	// Address and agent refreshes do not dirty the session on their own:
	// they reach the store with the next persisting write, at latest the
	// ActivityThreshold refresh, same as the activity timestamp itself.
	sess.IPAddress = client.IP
	sess.UserAgent = client.UserAgent

	m.sess = sess
	m.adopted = true
	m.persisted = true
	m.state = stateStarted
	return nil
}

func (m *Manager) startFresh(client Client) error {
	id, err := m.genID()
	if err != nil {
		return err
	}

	sess := NewSession(id)
	sess.Fingerprint = client.Fingerprint()
	sess.IPAddress = client.IP
	sess.UserAgent = client.UserAgent

	m.sess = sess
	m.adopted = false
	m.persisted = false
	m.state = stateStarted
	return nil
}

// Config returns the manager's effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// ID returns the current session id, empty before Start.
func (m *Manager) ID() string {
	if m.sess == nil {
		return ""
	}
	return m.sess.ID
}

// Session exposes the underlying record for read-only inspection.
func (m *Manager) Session() *Session {
	return m.sess
}

// IDRotated reports whether the id changed since Start (regeneration or a
// defensive reset), meaning the transport must re-issue the cookie.
func (m *Manager) IDRotated() bool {
	return m.rotated || !m.adopted
}

// Persisted reports whether the record exists in the store.
func (m *Manager) Persisted() bool {
	return m.persisted
}

// Get resolves a dotted path and returns def when the key is absent.
// Reserved namespaces are rejected; the CSRF secret and flash entries are
// reachable only through their dedicated accessors.
func (m *Manager) Get(path string, def any) (any, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	if reservedPath(path) {
		return nil, ErrReservedKey
	}
	if val, ok := m.sess.Get(path); ok {
		return val, nil
	}
	return def, nil
}

// GetString returns a string value or def on absence or type mismatch.
func (m *Manager) GetString(path, def string) (string, error) {
	val, err := m.Get(path, nil)
	if err != nil {
		return "", err
	}
	if s, ok := val.(string); ok {
		return s, nil
	}
	return def, nil
}

// GetInt returns an int value or def. JSON-roundtripped numbers arrive as
// float64 and are converted.
func (m *Manager) GetInt(path string, def int) (int, error) {
	val, err := m.Get(path, nil)
	if err != nil {
		return 0, err
	}
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return def, nil
	}
}

// GetBool returns a bool value or def.
func (m *Manager) GetBool(path string, def bool) (bool, error) {
	val, err := m.Get(path, nil)
	if err != nil {
		return false, err
	}
	if b, ok := val.(bool); ok {
		return b, nil
	}
	return def, nil
}

// Put stores a value under a dotted path and marks the session dirty.
// Writing into a reserved namespace fails with ErrReservedKey rather than
// silently clobbering the CSRF secret or flash entries.
func (m *Manager) Put(path string, value any) error {
	if err := m.writable(); err != nil {
		return err
	}
	if reservedPath(path) {
		return ErrReservedKey
	}
	m.sess.Set(path, value)
	return nil
}

// Has reports whether a dotted path resolves.
func (m *Manager) Has(path string) (bool, error) {
	if err := m.readable(); err != nil {
		return false, err
	}
	if reservedPath(path) {
		return false, ErrReservedKey
	}
	return m.sess.Has(path), nil
}

// Forget removes the value at a dotted path.
func (m *Manager) Forget(path string) error {
	if err := m.writable(); err != nil {
		return err
	}
	if reservedPath(path) {
		return ErrReservedKey
	}
	m.sess.Delete(path)
	return nil
}

// Flush clears all session data, including flash entries and CSRF secret.
func (m *Manager) Flush() error {
	if err := m.writable(); err != nil {
		return err
	}
	m.sess.Clear()
	return nil
}

// Flash stores a single-read value readable on the next request.
func (m *Manager) Flash(key string, value any) error {
	if err := m.writable(); err != nil {
		return err
	}
	m.sess.Flash(key, value)
	return nil
}

// GetFlash consumes a flash value, returning def when absent.
func (m *Manager) GetFlash(key string, def any) (any, error) {
	if err := m.readable(); err != nil {
		return nil, err
	}
	if val, ok := m.sess.GetFlash(key); ok {
		return val, nil
	}
	return def, nil
}

// Reflash re-arms flash keys for one more request.
func (m *Manager) Reflash(keys ...string) error {
	if err := m.writable(); err != nil {
		return err
	}
	m.sess.Reflash(keys...)
	return nil
}

// CSRFSecret returns the session-bound CSRF secret, generating and storing
// one on first call. The secret is 1:1 with the session id: Regenerate
// drops it so a new one is issued under the new id.
func (m *Manager) CSRFSecret() (string, error) {
	if err := m.writable(); err != nil {
		return "", err
	}

	if secret, ok := m.sess.Data[csrfDataKey].(string); ok && secret != "" {
		return secret, nil
	}

	secret, err := token.Generate(32)
	if err != nil {
		return "", err
	}
	m.sess.Data[csrfDataKey] = secret
	m.sess.dirty = true
	return secret, nil
}

// Regenerate swaps the session id while carrying all data forward. The old
// id is destroyed before the new record is written, so at no point do two
// resolvable copies of the session exist. Mandatory on privilege elevation
// (login) to defeat session fixation; the CSRF secret is rotated with it.
func (m *Manager) Regenerate(ctx context.Context) error {
	if err := m.writable(); err != nil {
		return err
	}

	newID, err := m.genID()
	if err != nil {
		return err
	}

	oldID := m.sess.ID

	// Secret follows the id, never survives it.
	delete(m.sess.Data, csrfDataKey)

	if m.persisted {
		dctx, cancel := m.storeCtx(ctx)
		err := m.store.Destroy(dctx, oldID)
		cancel()
		if err != nil {
			return m.wrapStoreErr(err)
		}
	}

	m.sess.ID = newID
	m.sess.Touch()

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.store.Save(sctx, m.sess, m.config.Lifetime); err != nil {
		return m.wrapStoreErr(err)
	}

	m.sess.dirty = false
	m.adopted = true
	m.persisted = true
	m.rotated = true
	return nil
}

// Login binds the user to the session and regenerates the id. Privilege
// elevation without id rotation invites session fixation, so the two are
// one operation here, not an optional call sequence.
func (m *Manager) Login(ctx context.Context, userID uuid.UUID) error {
	if err := m.writable(); err != nil {
		return err
	}
	m.sess.UserID = &userID
	m.sess.dirty = true
	return m.Regenerate(ctx)
}

// Logout destroys the session. The transport should clear the cookie; the
// next request starts anonymous.
func (m *Manager) Logout(ctx context.Context) error {
	return m.Destroy(ctx)
}

// Save persists the session if anything changed. Flash aging runs first,
// so consumed entries disappear and unread fresh entries get their one-hop
// demotion. Unmutated adopted sessions are refreshed only when the stored
// activity timestamp is older than the configured threshold, keeping
// read-only requests cheap.
func (m *Manager) Save(ctx context.Context) error {
	switch m.state {
	case stateUnstarted:
		return ErrNotStarted
	case stateDestroyed:
		// Nothing to persist; the record is gone by request.
		return nil
	case stateSaved:
		return nil
	}

	m.sess.ageFlashes()

	if !m.sess.dirty && !m.activityRefreshDue() {
		m.state = stateSaved
		return nil
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.store.Save(sctx, m.sess, m.config.Lifetime); err != nil {
		return m.wrapStoreErr(err)
	}

	m.sess.dirty = false
	m.persisted = true
	m.state = stateSaved
	return nil
}

// Destroy removes the record and terminates the manager. Any subsequent
// read or write fails with ErrSessionDestroyed.
func (m *Manager) Destroy(ctx context.Context) error {
	if m.state == stateUnstarted {
		return ErrNotStarted
	}
	if m.state == stateDestroyed {
		return nil
	}

	sctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.store.Destroy(sctx, m.sess.ID); err != nil {
		return m.wrapStoreErr(err)
	}

	m.state = stateDestroyed
	m.persisted = false
	return nil
}

// Destroyed reports whether the session reached its terminal destroyed state.
func (m *Manager) Destroyed() bool {
	return m.state == stateDestroyed
}

// MaybeGC sweeps expired records with probability 1/GCDivisor, mirroring
// the probabilistic trigger classic session layers run per request.
// Callers wanting scheduled sweeps can call GC on the store directly.
func (m *Manager) MaybeGC(ctx context.Context) {
	if m.config.GCDivisor <= 0 {
		return
	}
	if rand.IntN(m.config.GCDivisor) != 0 {
		return
	}

	cutoff := time.Now().UTC().Add(-m.config.Lifetime)
	sctx, cancel := m.storeCtx(ctx)
	defer cancel()

	removed, err := m.store.GC(sctx, cutoff)
	if err != nil {
		m.log.ErrorContext(ctx, "session gc failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		m.log.InfoContext(ctx, "session gc completed", slog.Int("removed", removed))
	}
}

func (m *Manager) readable() error {
	switch m.state {
	case stateUnstarted:
		return ErrNotStarted
	case stateDestroyed:
		return ErrSessionDestroyed
	}
	return nil
}

func (m *Manager) writable() error {
	switch m.state {
	case stateUnstarted:
		return ErrNotStarted
	case stateDestroyed:
		return ErrSessionDestroyed
	case stateSaved:
		return ErrAlreadySaved
	}
	return nil
}

func (m *Manager) expired(sess *Session) bool {
	return time.Now().After(sess.LastActivityAt.Add(m.config.Lifetime))
}

func (m *Manager) activityRefreshDue() bool {
	if !m.adopted {
		// Fresh anonymous sessions are persisted only once mutated,
		// so crawlers and one-off requests do not flood the store.
		return false
	}
	return time.Since(m.loadedActivity) >= m.config.ActivityThreshold
}

func (m *Manager) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.config.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.config.StoreTimeout)
}

func (m *Manager) wrapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}

// reservedPath reports whether a dotted path roots in one of the reserved
// top-level namespaces.
func reservedPath(path string) bool {
	root, _, _ := strings.Cut(path, ".")
	return root == csrfDataKey || root == flashDataKey
}

// previewID truncates a session id for logs. Full ids never appear in
// output; eight characters are enough to correlate log lines.
func previewID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
