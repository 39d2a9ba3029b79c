package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
	"github.com/yanqian/rain-nowcast/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App runs the HTTP server alongside the background nowcast poller.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	poller *nowcast.Poller
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, poller *nowcast.Poller) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, poller: poller}
}

// Run starts the server and the poller and blocks until ctx is cancelled or
// either of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.poller.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Info("shutdown signal received")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
