package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanqian/rain-nowcast/internal/bootstrap"
	"github.com/yanqian/rain-nowcast/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, initializeApp, logger.New())
	stop()
	os.Exit(code)
}

// run wires and runs the app, reporting startup and runtime failures through
// the structured logger. It returns the process exit code.
func run(ctx context.Context, initApp func() (*bootstrap.App, error), logger *slog.Logger) int {
	log := logger.With("component", "main")

	app, err := initApp()
	if err != nil {
		log.Error("failed to wire application", "error", err)
		return 1
	}

	if err := app.Run(ctx); err != nil {
		log.Error("nowcast service stopped with error", "error", err)
		return 1
	}
	log.Info("nowcast service stopped")
	return 0
}
