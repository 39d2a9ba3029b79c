package nowcast

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// MaxPoints caps a snapshot at one hour of 10 minute steps.
	MaxPoints = 6
	// StepMinutes is the spacing between consecutive forecast points.
	StepMinutes = 10

	DefaultThreshold       = 0.2
	DefaultForecastMinutes = 30
	// DefaultTimeout bounds a refresh when no timeout is configured.
	DefaultTimeout = 10 * time.Second
)

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Query renders the provider's "longitude,latitude" form at full precision.
func (c Coordinates) Query() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// ForecastPoint is one step of the nowcast series.
type ForecastPoint struct {
	OffsetMinutes int     `json:"offsetMinutes"`
	Intensity     float64 `json:"intensity"`
}

// At returns the wall-clock time of the point relative to base.
func (p ForecastPoint) At(base time.Time) time.Time {
	return base.Add(time.Duration(p.OffsetMinutes) * time.Minute)
}

// ForecastSnapshot is one fetch-and-normalize result. Superseded, never mutated.
type ForecastSnapshot struct {
	ID               string          `json:"id"`
	Points           []ForecastPoint `json:"points"`
	FetchedAt        time.Time       `json:"fetchedAt"`
	CurrentIntensity float64         `json:"currentIntensity"`
	Temperature      *float64        `json:"temperature,omitempty"`
	Humidity         *int            `json:"humidity,omitempty"`
}

// NewSnapshot builds a snapshot, truncating points to MaxPoints and deriving
// the current intensity from the first point.
func NewSnapshot(id string, points []ForecastPoint, fetchedAt time.Time, temperature *float64, humidity *int) ForecastSnapshot {
	if len(points) > MaxPoints {
		points = points[:MaxPoints]
	}
	copied := make([]ForecastPoint, len(points))
	copy(copied, points)

	current := 0.0
	if len(copied) > 0 {
		current = copied[0].Intensity
	}
	return ForecastSnapshot{
		ID:               id,
		Points:           copied,
		FetchedAt:        fetchedAt,
		CurrentIntensity: current,
		Temperature:      temperature,
		Humidity:         humidity,
	}
}

// RainSoonDecision is derived from a snapshot on every read.
type RainSoonDecision struct {
	IsOn             bool
	MinutesUntilRain *int
	MaxIntensity     float64
}

// FetchRequest carries everything a single provider call needs.
type FetchRequest struct {
	Coordinates Coordinates
	APIKey      string
	Timeout     time.Duration
}

// Zone is a named location that can supply default coordinates.
type Zone struct {
	Name        string
	Coordinates Coordinates
}

// Config wires runtime settings for the nowcast domain.
type Config struct {
	APIKey          string
	Coordinates     Coordinates
	Threshold       float64
	ForecastMinutes int
	Timeout         time.Duration
	UpdateInterval  time.Duration
}

// SnapshotResponse is serialized back to API consumers.
type SnapshotResponse struct {
	Available        bool            `json:"available"`
	ID               string          `json:"id,omitempty"`
	LastUpdated      string          `json:"lastUpdated,omitempty"`
	CurrentIntensity float64         `json:"currentIntensity"`
	Unit             string          `json:"unit"`
	Icon             string          `json:"icon"`
	Temperature      *float64        `json:"temperature"`
	Humidity         *int            `json:"humidity"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	Forecasts        []ForecastEntry `json:"forecasts"`
}

// ForecastEntry is a forecast point with its clock label.
type ForecastEntry struct {
	Time          string  `json:"time"`
	OffsetMinutes int     `json:"timeMinutes"`
	Intensity     float64 `json:"intensity"`
}

// RainSoonRequest optionally overrides the configured threshold and horizon.
type RainSoonRequest struct {
	Threshold *float64 `form:"threshold" binding:"omitempty,gte=0"`
	Minutes   *int     `form:"minutes" binding:"omitempty,gte=0"`
}

// RainSoonResponse exposes the derived decision plus the inputs it used.
type RainSoonResponse struct {
	IsOn             bool    `json:"isOn"`
	MinutesUntilRain *int    `json:"rainingInMinutes"`
	MaxIntensity     float64 `json:"maxIntensity"`
	Threshold        float64 `json:"threshold"`
	ForecastMinutes  int     `json:"forecastMinutes"`
	Icon             string  `json:"icon"`
	SnapshotID       string  `json:"snapshotId,omitempty"`
}

// StatusResponse reports the health of the forecast source.
type StatusResponse struct {
	Available     bool   `json:"available"`
	LastError     string `json:"lastError,omitempty"`
	LastAttemptAt string `json:"lastAttemptAt,omitempty"`
	LastSuccessAt string `json:"lastSuccessAt,omitempty"`
	SnapshotID    string `json:"snapshotId,omitempty"`
	Attempts      int64  `json:"attempts"`
	Failures      int64  `json:"failures"`
	Coalesced     int64  `json:"coalesced"`
}

// SettingsRequest is the candidate configuration submitted for validation.
type SettingsRequest struct {
	APIKey          string   `json:"apiKey" validate:"required"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,longitude"`
	Threshold       *float64 `json:"threshold" validate:"omitempty,gte=0"`
	ForecastMinutes *int     `json:"forecastMinutes" validate:"omitempty,gte=0"`
}

// Settings is a validated configuration with defaults applied.
type Settings struct {
	APIKey           string  `json:"-"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Threshold        float64 `json:"threshold"`
	ForecastMinutes  int     `json:"forecastMinutes"`
	CoordinateSource string  `json:"coordinateSource"`
}

// SettingsResult is returned once the settings were confirmed against the provider.
type SettingsResult struct {
	Title    string   `json:"title"`
	Settings Settings `json:"settings"`
}
