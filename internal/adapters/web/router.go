package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iskrendev/insurance-portal/internal/app/auth"
)

// NewRouter constructs the portal HTTP router.
func NewRouter(s *Server, d Deps) http.Handler {
	resolver := d.Auth
	if resolver == nil {
		resolver = auth.NewAPIResolver(s.api, s.log)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewRequestLogger(s.log, s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	if d.Backend != nil {
		proxy := newBackendProxy(d.Backend, s.log)
		r.Handle("/api/*", proxy)
		r.Handle("/oauth2/*", proxy)
		r.Handle("/login/oauth2/*", proxy)
		r.Handle("/logout", proxy)
	} else {
		r.HandleFunc("/logout", s.handleLocalLogout(d.BackendSessionCookie))
	}

	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(d.SecureCookies))
		r.Use(NewForwardCookieMiddleware(d.BackendSessionCookie, d.ForwardCookies))

		r.Get("/login", s.handleLogin(resolver))

		r.Group(func(r chi.Router) {
			r.Use(NewAuthGate(resolver))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/home", http.StatusFound)
			})
			r.Get("/home", s.handleHome)
			r.Get("/insurances/add", s.handleAddForm)
			r.Post("/insurances/add", s.handleAddSubmit)
			r.Get("/insurances/search", s.handleSearch)
			r.Get("/insurances/statistics", s.handleStatistics)
			r.Route("/details/{type}/{id}", func(r chi.Router) {
				r.Get("/", s.handleDetails)
				r.Get("/edit", s.handleEditForm)
				r.Post("/edit", s.handleEditSubmit)
				r.Get("/delete", s.handleDeleteConfirm)
				r.Post("/delete", s.handleDelete)
			})
		})
	})

	r.NotFound(s.notFound)
	return r
}
