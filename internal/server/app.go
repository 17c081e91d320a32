// Package server wires the LoanDesk services together and runs the HTTP API
// with its background jobs until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/loandesk/internal/applications"
	"github.com/dmitrijs2005/loandesk/internal/auth"
	"github.com/dmitrijs2005/loandesk/internal/dashboard"
	"github.com/dmitrijs2005/loandesk/internal/loans"
	"github.com/dmitrijs2005/loandesk/internal/logging"
	"github.com/dmitrijs2005/loandesk/internal/notifier"
	"github.com/dmitrijs2005/loandesk/internal/server/api"
	"github.com/dmitrijs2005/loandesk/internal/server/config"
	"github.com/dmitrijs2005/loandesk/internal/server/metrics"
	"github.com/dmitrijs2005/loandesk/internal/storage"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	auth   *auth.Service
	api    *api.Server
	close  func() error
}

// openStore is a seam for tests.
var openStore = storage.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout)

	store, closeStore, err := openStore(ctx, c.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	n := notifier.New(store, notifier.WithLogger(logger))
	authSvc := auth.NewService(store,
		auth.WithMailer(n),
		auth.WithSessionValidity(c.SessionValidity),
		auth.WithPollInterval(c.AuthPollInterval),
		auth.WithLogger(logger),
	)
	apps := applications.NewStore(store, applications.WithLogger(logger))

	var dash *dashboard.Client
	if c.DashboardAPIURL != "" {
		dash, err = dashboard.NewClient(c.DashboardAPIURL, dashboard.WithToken(api.CallerToken))
		if err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	srv := api.NewServer(api.Deps{
		Auth:           authSvc,
		Applications:   apps,
		Desk:           loans.NewDesk(apps, n, logger),
		Notifier:       n,
		Dashboard:      dash,
		SecretKey:      c.SecretKey,
		AllowedOrigins: c.AllowedOrigins,
		RateLimit:      c.RateLimit,
		RateBurst:      c.RateBurst,
		Logger:         logger,
	})

	return &App{config: c, logger: logger, auth: authSvc, api: srv, close: closeStore}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then shuts the HTTP
// server down and releases the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr, "storage", app.config.StorageDriver)
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.serveHTTP(ctx) })
	g.Go(func() error { return app.runScheduler(ctx) })

	err := g.Wait()
	if cerr := app.close(); cerr != nil {
		app.logger.Error(context.Background(), "close storage", "error", cerr)
	}
	app.logger.Info(context.Background(), "app stopped")
	return err
}

func (app *App) serveHTTP(ctx context.Context) error {
	hs := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// runScheduler prunes dead sessions and idle rate limit buckets on the
// configured cron schedule.
func (app *App) runScheduler(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(app.config.SessionPruneSchedule, func() { app.housekeeping(ctx) }); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", app.config.SessionPruneSchedule, err)
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (app *App) housekeeping(ctx context.Context) {
	n, err := app.auth.PruneExpiredSessions(ctx)
	if err != nil {
		app.logger.Error(ctx, "session prune failed", "error", err)
	} else {
		metrics.RecordSessionsPruned(n)
	}
	app.api.SweepRateLimits()
}
