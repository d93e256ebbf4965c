package csrf

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionguard/pkg/session"
)

// Middleware enforces CSRF validation on unsafe methods. Safe methods pass
// through with the token cookie refreshed. Must run inside session
// middleware so the session manager is on the request context.
//
// Validation failures are counted per client IP; once the failure limit is
// reached further unsafe requests get 429 before any validation work.
// Rejections are generic 403s that never reveal which check failed.
func (g *Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil {
				g.log.ErrorContext(r.Context(), "csrf guard without session middleware")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if safeMethod(r.Method) {
				if err := g.Issue(w, sess); err != nil {
					g.log.ErrorContext(r.Context(), "issue csrf cookie", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if err := g.Check(r.Context(), r, sess); err != nil {
				g.log.WarnContext(r.Context(), "csrf validation failed",
					"error", err,
					"path", r.URL.Path,
				)

				switch {
				case errors.Is(err, ErrRateLimited):
					http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				case errors.Is(err, session.ErrAlreadySaved), errors.Is(err, session.ErrNotStarted):
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				default:
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
