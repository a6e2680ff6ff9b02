package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	memdraftstore "github.com/iskrendev/insurance-portal/internal/adapters/memory/draftstore"
	meminsuranceapi "github.com/iskrendev/insurance-portal/internal/adapters/memory/insuranceapi"
	postgres "github.com/iskrendev/insurance-portal/internal/adapters/postgres"
	pgdraftstore "github.com/iskrendev/insurance-portal/internal/adapters/postgres/draftstore"
	"github.com/iskrendev/insurance-portal/internal/adapters/restapi"
	"github.com/iskrendev/insurance-portal/internal/adapters/web"
	"github.com/iskrendev/insurance-portal/internal/app/auth"
	"github.com/iskrendev/insurance-portal/internal/app/form"
	"github.com/iskrendev/insurance-portal/internal/domain"
	platformclock "github.com/iskrendev/insurance-portal/internal/platform/clock"
	"github.com/iskrendev/insurance-portal/internal/platform/config"
	"github.com/iskrendev/insurance-portal/internal/platform/metrics"
	draftstoreport "github.com/iskrendev/insurance-portal/internal/ports/out/draftstore"
	"github.com/iskrendev/insurance-portal/internal/ports/out/insuranceapi"
)

func serveCmd(g *globals) *cobra.Command {
	var secure bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, g.cfg, g.log, secure)
		},
	}
	cmd.Flags().BoolVar(&secure, "secure-cookies", false, "mark the portal session cookie Secure")
	return cmd
}

type purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger, secure bool) error {
	clk := platformclock.NewSystemClock()
	m := metrics.New()

	var (
		api     insuranceapi.Client
		backend *url.URL
	)
	switch cfg.API.Backend {
	case config.BackendMemory:
		api = meminsuranceapi.NewAPI(&domain.User{ID: domain.UserID(cfg.Auth.DevLogin), Login: cfg.Auth.DevLogin})
	default:
		c, err := restapi.New(cfg.API.BaseURL,
			restapi.WithTimeout(cfg.API.Timeout),
			restapi.WithMetrics(m),
			restapi.WithLogger(log),
		)
		if err != nil {
			return err
		}
		api = c
		backend, err = url.Parse(cfg.API.BaseURL)
		if err != nil {
			return fmt.Errorf("parse api base url: %w", err)
		}
	}

	var store interface {
		draftstoreport.Store
		purger
	}
	switch cfg.Drafts.Store {
	case config.DraftStorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Drafts.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return fmt.Errorf("invalid postgres config: %w", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		store = pgdraftstore.NewStore(pool)
	default:
		store = memdraftstore.NewStore()
	}

	drafts := form.NewDrafts(store, clk, log)
	drafts.TTL = cfg.Drafts.TTL

	var resolver auth.Resolver
	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		resolver = auth.DevResolver{User: domain.User{ID: domain.UserID(cfg.Auth.DevLogin), Login: cfg.Auth.DevLogin}}
	default:
		resolver = auth.NewAPIResolver(api, log)
	}

	deps := web.Deps{
		API:                  api,
		Drafts:               drafts,
		Auth:                 resolver,
		Clock:                clk,
		Log:                  log,
		Metrics:              m,
		BackendSessionCookie: cfg.Auth.SessionCookie,
		ForwardCookies:       restapi.WithCookies,
		Backend:              backend,
		SecureCookies:        secure,
	}
	s, err := web.NewServer(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           web.NewRouter(s, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go purgeDrafts(ctx, store, cfg.Drafts.TTL, log)

	errc := make(chan error, 1)
	go func() {
		log.Info("portal listening", zap.String("addr", srv.Addr), zap.String("backend", cfg.API.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeDrafts drops expired drafts until ctx ends.
func purgeDrafts(ctx context.Context, p purger, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purging drafts failed", zap.Error(err))
				continue
			}
			log.Debug("purged drafts", zap.Int("count", n))
		}
	}
}
