package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
	"github.com/yanqian/rain-nowcast/internal/infra/config"
	"github.com/yanqian/rain-nowcast/internal/infra/nowcast/yahoo"
	"github.com/yanqian/rain-nowcast/internal/infra/snapshotstore"
)

func provideNowcastConfig(cfg *config.Config) nowcast.Config {
	return nowcast.Config{
		APIKey: cfg.Nowcast.APIKey,
		Coordinates: nowcast.Coordinates{
			Latitude:  cfg.Nowcast.Latitude,
			Longitude: cfg.Nowcast.Longitude,
		},
		Threshold:       cfg.Nowcast.Threshold,
		ForecastMinutes: cfg.Nowcast.ForecastMinutes,
		Timeout:         cfg.Nowcast.Timeout,
		UpdateInterval:  cfg.Nowcast.UpdateInterval,
	}
}

func provideYahooClient(cfg *config.Config, logger *slog.Logger) *yahoo.Client {
	return yahoo.NewClient(cfg.Nowcast.BaseURL, logger, yahoo.WithAppIDHeader(cfg.Nowcast.SendAppIDHeader))
}

func provideNormalizer() *yahoo.Normalizer {
	return yahoo.NewNormalizer()
}

func provideCoordinateProvider(cfg *config.Config) nowcast.CoordinateProvider {
	zones := make([]nowcast.Zone, 0, len(cfg.Nowcast.Zones))
	for _, z := range cfg.Nowcast.Zones {
		zones = append(zones, nowcast.Zone{
			Name:        z.Name,
			Coordinates: nowcast.Coordinates{Latitude: z.Latitude, Longitude: z.Longitude},
		})
	}
	fallback := nowcast.Coordinates{Latitude: cfg.Nowcast.Latitude, Longitude: cfg.Nowcast.Longitude}
	return nowcast.NewZoneDirectory(zones, fallback)
}

func provideSnapshotStore(cfg *config.Config, logger *slog.Logger) nowcast.SnapshotStore {
	redis := cfg.Store.Redis
	if redis.Enabled {
		opt, err := buildValkeyOptions(redis.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return snapshotstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return snapshotstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("snapshot valkey store enabled", "addr", redis.Addr)
			location := nowcast.Coordinates{Latitude: cfg.Nowcast.Latitude, Longitude: cfg.Nowcast.Longitude}
			return snapshotstore.NewValkeyStore(client, redis.Prefix, location)
		}
	}
	return snapshotstore.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// providePoller drives refreshes through the same service the handlers read
// from, so scheduled and manual refreshes share one singleflight group.
func providePoller(svc nowcast.Service, cfg nowcast.Config, logger *slog.Logger) *nowcast.Poller {
	return nowcast.NewPoller(svc, cfg, logger)
}
