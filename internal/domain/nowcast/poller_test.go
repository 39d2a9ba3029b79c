package nowcast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) (ForecastSnapshot, error) {
	c.calls.Add(1)
	return ForecastSnapshot{}, c.err
}

func TestPollerRefreshesImmediatelyAndOnInterval(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("upstream down")}
	p := NewPoller(refresher, Config{UpdateInterval: 10 * time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewPollerDefaultsInterval(t *testing.T) {
	p := NewPoller(&countingRefresher{}, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Equal(t, 5*time.Minute, p.interval)
}
