package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/app/auth"
	"github.com/iskrendev/insurance-portal/internal/platform/metrics"
)

// SessionCookieName is the portal's own session cookie.
const SessionCookieName = "portal_sid"

// NewSessionMiddleware issues a portal session cookie on first visit and stores the
// session id in request context.
func NewSessionMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if ck, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sid)))
		})
	}
}

// NewForwardCookieMiddleware hands the caller's backend session cookie to forward,
// which attaches it to the API calls made for this request.
func NewForwardCookieMiddleware(name string, forward CookieForwarder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if forward == nil || name == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie(name)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := forward(r.Context(), &http.Cookie{Name: ck.Name, Value: ck.Value})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewAuthGate resolves the authentication context and redirects anonymous callers
// to the login page.
func NewAuthGate(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := resolver.Resolve(r.Context())
			if !ac.Authenticated() {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), ac)))
		})
	}
}

// NewRequestLogger logs one line per request and counts it by route pattern.
func NewRequestLogger(log *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, route, status)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
