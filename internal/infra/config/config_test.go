package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("NOWCAST_API_KEY", "env-key")
	t.Setenv("NOWCAST_THRESHOLD", "0.5")
	t.Setenv("NOWCAST_UPDATE_INTERVAL", "2m")
	t.Setenv("HTTP_ADDRESS", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.Nowcast.APIKey)
	require.Equal(t, 0.5, cfg.Nowcast.Threshold)
	require.Equal(t, 2*time.Minute, cfg.Nowcast.UpdateInterval)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 30, cfg.Nowcast.ForecastMinutes)
	require.Equal(t, 10*time.Second, cfg.Nowcast.Timeout)
	require.False(t, cfg.Store.Redis.Enabled)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "nowcast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
nowcast:
  apiKey: file-key
  latitude: 43.0621
  longitude: 141.3544
  forecastMinutes: 60
  sendAppIdHeader: true
  zones:
    - name: home
      latitude: 43.0
      longitude: 141.0
store:
  redis:
    enabled: true
    addr: localhost:6379
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.Nowcast.APIKey)
	require.Equal(t, 43.0621, cfg.Nowcast.Latitude)
	require.Equal(t, 60, cfg.Nowcast.ForecastMinutes)
	require.True(t, cfg.Nowcast.SendAppIDHeader)
	require.Len(t, cfg.Nowcast.Zones, 1)
	require.Equal(t, "home", cfg.Nowcast.Zones[0].Name)
	require.True(t, cfg.Store.Redis.Enabled)
	require.Equal(t, "nowcast", cfg.Store.Redis.Prefix)
	require.Equal(t, 0.2, cfg.Nowcast.Threshold)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NOWCAST_API_KEY=dotenv-key\n"), 0o600))
	t.Setenv("NOWCAST_API_KEY", "")
	require.NoError(t, os.Unsetenv("NOWCAST_API_KEY"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dotenv-key", cfg.Nowcast.APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "missing api key", mutate: func(c *Config) { c.Nowcast.APIKey = "" }, errMsg: "APIKey"},
		{name: "latitude out of range", mutate: func(c *Config) { c.Nowcast.Latitude = 91 }, errMsg: "Latitude"},
		{name: "negative threshold", mutate: func(c *Config) { c.Nowcast.Threshold = -0.1 }, errMsg: "Threshold"},
		{name: "zero timeout", mutate: func(c *Config) { c.Nowcast.Timeout = 0 }, errMsg: "Timeout"},
		{name: "zone without name", mutate: func(c *Config) { c.Nowcast.Zones = []ZoneConfig{{Latitude: 1, Longitude: 1}} }, errMsg: "Name"},
		{name: "rate limit burst", mutate: func(c *Config) { c.HTTP.RateLimit.Burst = 0 }, errMsg: "burst"},
		{name: "redis without addr", mutate: func(c *Config) { c.Store.Redis.Enabled = true }, errMsg: "store.redis.addr"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Nowcast.APIKey = "k"
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}

	cfg := defaultConfig()
	cfg.Nowcast.APIKey = "k"
	require.NoError(t, cfg.Validate())
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working directory
// for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
