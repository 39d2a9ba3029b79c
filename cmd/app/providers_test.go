package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/rain-nowcast/internal/infra/config"
	"github.com/yanqian/rain-nowcast/internal/infra/snapshotstore"
)

func TestProvideNowcastConfig(t *testing.T) {
	cfg := &config.Config{Nowcast: config.NowcastConfig{
		APIKey:          "key",
		Latitude:        35.1,
		Longitude:       139.2,
		Threshold:       0.5,
		ForecastMinutes: 20,
		Timeout:         3 * time.Second,
		UpdateInterval:  time.Minute,
	}}

	got := provideNowcastConfig(cfg)
	require.Equal(t, "key", got.APIKey)
	require.Equal(t, 35.1, got.Coordinates.Latitude)
	require.Equal(t, 139.2, got.Coordinates.Longitude)
	require.Equal(t, 0.5, got.Threshold)
	require.Equal(t, 20, got.ForecastMinutes)
	require.Equal(t, 3*time.Second, got.Timeout)
	require.Equal(t, time.Minute, got.UpdateInterval)
}

func TestProvideCoordinateProviderPrefersHomeZone(t *testing.T) {
	cfg := &config.Config{Nowcast: config.NowcastConfig{
		Latitude:  1,
		Longitude: 2,
		Zones: []config.ZoneConfig{
			{Name: "office", Latitude: 10, Longitude: 20},
			{Name: "Home", Latitude: 30, Longitude: 40},
		},
	}}

	coords, source := provideCoordinateProvider(cfg).DefaultCoordinates(context.Background())
	require.Equal(t, "zone:Home", source)
	require.Equal(t, 30.0, coords.Latitude)
	require.Equal(t, 40.0, coords.Longitude)
}

func TestProvideSnapshotStoreDefaultsToMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := provideSnapshotStore(&config.Config{}, logger)
	require.IsType(t, &snapshotstore.MemoryStore{}, store)
}

func TestBuildValkeyOptions(t *testing.T) {
	opt, err := buildValkeyOptions("localhost:6379")
	require.NoError(t, err)
	require.Equal(t, []string{"localhost:6379"}, opt.InitAddress)

	opt, err = buildValkeyOptions("redis://cache.internal:6380/2")
	require.NoError(t, err)
	require.Equal(t, []string{"cache.internal:6380"}, opt.InitAddress)
	require.Equal(t, 2, opt.SelectDB)
}
