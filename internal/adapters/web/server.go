package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/iskrendev/insurance-portal/internal/app/auth"
	"github.com/iskrendev/insurance-portal/internal/app/directory"
	"github.com/iskrendev/insurance-portal/internal/app/form"
	"github.com/iskrendev/insurance-portal/internal/app/stats"
	"github.com/iskrendev/insurance-portal/internal/platform/metrics"
	clockport "github.com/iskrendev/insurance-portal/internal/ports/out/clock"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

// CookieForwarder attaches cookies to the API calls made with the returned context.
type CookieForwarder func(ctx context.Context, cookies ...*http.Cookie) context.Context

// Deps are the collaborators of the portal's HTTP adapter.
type Deps struct {
	API      insuranceapi.Client
	Drafts   *form.Drafts
	Lister   *directory.Lister
	Searcher *directory.Searcher
	Stats    *stats.Service
	Auth     auth.Resolver
	Clock    clockport.Clock
	Log      *zap.Logger
	Metrics  *metrics.Metrics

	// BackendSessionCookie names the backend session cookie forwarded with API calls.
	BackendSessionCookie string
	ForwardCookies       CookieForwarder

	// Backend is the proxy target for /api, /oauth2, /login/oauth2 and /logout.
	// Nil disables the proxy.
	Backend *url.URL

	// SecureCookies marks the portal session cookie Secure.
	SecureCookies bool
}

// Server renders the portal screens.
type Server struct {
	api      insuranceapi.Client
	drafts   *form.Drafts
	lister   *directory.Lister
	searcher *directory.Searcher
	stats    *stats.Service
	clock    clockport.Clock
	log      *zap.Logger
	metrics  *metrics.Metrics
	pages    *pages
}

func NewServer(d Deps) (*Server, error) {
	if d.API == nil || d.Drafts == nil || d.Clock == nil {
		return nil, errors.New("web: API, Drafts and Clock are required")
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		api:      d.API,
		drafts:   d.Drafts,
		lister:   d.Lister,
		searcher: d.Searcher,
		stats:    d.Stats,
		clock:    d.Clock,
		log:      log,
		metrics:  d.Metrics,
		pages:    p,
	}
	if s.lister == nil {
		s.lister = directory.NewLister(d.API, log)
	}
	if s.searcher == nil {
		s.searcher = directory.NewSearcher(d.API, log)
	}
	if s.stats == nil {
		s.stats = stats.NewService(d.API, log)
	}
	return s, nil
}
