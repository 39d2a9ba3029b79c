package nowcast

import (
	"context"
	"log/slog"
	"time"
)

// Refresher is the part of Service the poller drives.
type Refresher interface {
	Refresh(ctx context.Context) (ForecastSnapshot, error)
}

// Poller refreshes the snapshot on a fixed interval, one cycle at a time.
type Poller struct {
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
}

// NewPoller builds a poller using cfg.UpdateInterval.
func NewPoller(refresher Refresher, cfg Config, logger *slog.Logger) *Poller {
	interval := cfg.UpdateInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{
		refresher: refresher,
		interval:  interval,
		logger:    logger.With("component", "nowcast.poller"),
	}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
// Failures are logged; the previous snapshot remains the last known good value.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("nowcast poller starting", "interval", p.interval.String())
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("nowcast poller stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, err := p.refresher.Refresh(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("scheduled refresh failed, keeping previous snapshot", "error", err)
	}
}
