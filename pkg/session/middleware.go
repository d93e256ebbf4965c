package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionguard/pkg/cookie"
)

// Middleware wires the session lifecycle around every request: it starts a
// per-request Manager from the incoming cookie, exposes it via the request
// context, and commits (save + Set-Cookie) right before the first byte of
// the response is written, since cookies cannot follow the body.
//
// The session cookie is signed, HttpOnly and SameSite=Lax; its lifetime
// matches the session's. A fingerprint mismatch degrades the request to a
// fresh anonymous session and continues. Store failures abort the request
// with 503 rather than silently pretending there is no session.
func Middleware(store Store, cookies *cookie.Manager, opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := NewManager(store, opts...)
			cfg := m.Config()

			incomingID, err := cookies.GetSigned(r, cfg.CookieName)
			if err != nil {
				// Missing or forged cookie: start anonymous.
				incomingID = ""
			}

			ctx := r.Context()
			if err := m.Start(ctx, incomingID, ClientFromRequest(r)); err != nil {
				if !errors.Is(err, ErrFingerprintMismatch) {
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
					return
				}
				// Defensive reset already happened; proceed anonymously.
			}

			ctx = WithManager(ctx, m)
			cw := &commitWriter{ResponseWriter: w, commit: func() {
				commitSession(r, m, cookies, w)
			}}

			next.ServeHTTP(cw, r.WithContext(ctx))
			cw.ensureCommitted()

			m.MaybeGC(ctx)
		})
	}
}

func commitSession(r *http.Request, m *Manager, cookies *cookie.Manager, w http.ResponseWriter) {
	ctx := r.Context()
	cfg := m.Config()

	if m.Destroyed() {
		cookies.Delete(w, cfg.CookieName)
		return
	}

	if err := m.Save(ctx); err != nil {
		// Headers are about to go out; all we can do is record the failure.
		slog.ErrorContext(ctx, "session save failed", slog.Any("error", err))
		return
	}

	// Only persisted sessions get a cookie: handing out ids that resolve
	// to nothing just burns a Set-Cookie on every anonymous page view.
	if !m.Persisted() {
		return
	}

	opts := []cookie.Option{
		cookie.WithMaxAge(int(cfg.Lifetime.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if cfg.SecureCookies {
		opts = append(opts, cookie.WithSecure(true))
	}

	if err := cookies.SetSigned(w, cfg.CookieName, m.ID(), opts...); err != nil {
		slog.ErrorContext(ctx, "session cookie write failed", slog.Any("error", err))
	}
}

// commitWriter runs the commit hook once, immediately before the first
// header or body write reaches the underlying ResponseWriter.
type commitWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (w *commitWriter) WriteHeader(status int) {
	w.ensureCommitted()
	w.ResponseWriter.WriteHeader(status)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.ensureCommitted()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) ensureCommitted() {
	if w.committed {
		return
	}
	w.committed = true
	w.commit()
}

// Unwrap supports http.ResponseController passthrough (Flush, Hijack).
func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
