package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Nowcast NowcastConfig `yaml:"nowcast"`
	Store   StoreConfig   `yaml:"store"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address" envconfig:"HTTP_ADDRESS" validate:"required"`
	ReadTimeout    time.Duration   `yaml:"readTimeout" envconfig:"HTTP_READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout" envconfig:"HTTP_WRITE_TIMEOUT" validate:"gte=0"`
	AllowedOrigins []string        `yaml:"allowedOrigins" envconfig:"HTTP_ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" envconfig:"HTTP_RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requestsPerMinute" envconfig:"HTTP_RATE_LIMIT_RPM"`
	Burst             int  `yaml:"burst" envconfig:"HTTP_RATE_LIMIT_BURST"`
}

// NowcastConfig holds the provider credentials, location and rain-soon defaults.
type NowcastConfig struct {
	APIKey          string        `yaml:"apiKey" envconfig:"NOWCAST_API_KEY" validate:"required"`
	BaseURL         string        `yaml:"baseUrl" envconfig:"NOWCAST_BASE_URL" validate:"required,url"`
	Latitude        float64       `yaml:"latitude" envconfig:"NOWCAST_LATITUDE" validate:"latitude"`
	Longitude       float64       `yaml:"longitude" envconfig:"NOWCAST_LONGITUDE" validate:"longitude"`
	Threshold       float64       `yaml:"threshold" envconfig:"NOWCAST_THRESHOLD" validate:"gte=0"`
	ForecastMinutes int           `yaml:"forecastMinutes" envconfig:"NOWCAST_FORECAST_MINUTES" validate:"gte=0"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"NOWCAST_TIMEOUT" validate:"gt=0"`
	UpdateInterval  time.Duration `yaml:"updateInterval" envconfig:"NOWCAST_UPDATE_INTERVAL" validate:"gt=0"`
	SendAppIDHeader bool          `yaml:"sendAppIdHeader" envconfig:"NOWCAST_SEND_APPID_HEADER"`
	Zones           []ZoneConfig  `yaml:"zones" ignored:"true" validate:"dive"`
}

// ZoneConfig names a location usable as default coordinates.
type ZoneConfig struct {
	Name      string  `yaml:"name" validate:"required"`
	Latitude  float64 `yaml:"latitude" validate:"latitude"`
	Longitude float64 `yaml:"longitude" validate:"longitude"`
}

// StoreConfig selects where the latest snapshot lives.
type StoreConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains connection information for the shared snapshot store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"REDIS_ENABLED"`
	Addr    string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Prefix  string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
}

// Load reads configuration from a YAML file, an optional .env file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Nowcast: NowcastConfig{
			BaseURL:         "https://map.yahooapis.jp/weather/V1/place",
			Latitude:        35.681236,
			Longitude:       139.767125,
			Threshold:       0.2,
			ForecastMinutes: 30,
			Timeout:         10 * time.Second,
			UpdateInterval:  300 * time.Second,
		},
		Store: StoreConfig{
			Redis: RedisConfig{
				Enabled: false,
				Prefix:  "nowcast",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %s validation", fe.Namespace(), fe.Tag())
		}
		return err
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.Store.Redis.Enabled && strings.TrimSpace(c.Store.Redis.Addr) == "" {
		return errors.New("store.redis.addr cannot be empty when redis store is enabled")
	}
	return nil
}
