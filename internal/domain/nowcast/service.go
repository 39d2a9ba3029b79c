package nowcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/yanqian/rain-nowcast/pkg/errors"
	"github.com/yanqian/rain-nowcast/pkg/metrics"
	"github.com/yanqian/rain-nowcast/pkg/util"
)

// Service exposes the nowcast refresh lifecycle and the derived signals.
type Service interface {
	Latest(ctx context.Context) (SnapshotResponse, error)
	RainSoon(ctx context.Context, req RainSoonRequest) (RainSoonResponse, error)
	Status(ctx context.Context) StatusResponse
	Refresh(ctx context.Context) (ForecastSnapshot, error)
	ValidateSettings(ctx context.Context, req SettingsRequest) (SettingsResult, error)
}

// Fetcher issues one provider request and returns the raw JSON document.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) ([]byte, error)
}

// Normalizer turns a raw provider document into a snapshot.
type Normalizer interface {
	Normalize(raw []byte) (ForecastSnapshot, error)
}

// SnapshotStore holds the latest good snapshot.
type SnapshotStore interface {
	Latest(ctx context.Context) (ForecastSnapshot, bool, error)
	Replace(ctx context.Context, snapshot ForecastSnapshot) error
}

type refreshState struct {
	lastErr     error
	lastAttempt time.Time
	lastSuccess time.Time
}

type service struct {
	cfg        Config
	fetcher    Fetcher
	normalizer Normalizer
	store      SnapshotStore
	coords     CoordinateProvider
	validate   *validator.Validate
	logger     *slog.Logger
	timezone   *time.Location
	now        util.Clock

	group    singleflight.Group
	counters metrics.RefreshCounters

	mu    sync.RWMutex
	state refreshState
}

// NewService wires up the nowcast domain.
func NewService(cfg Config, fetcher Fetcher, normalizer Normalizer, store SnapshotStore, coords CoordinateProvider, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		fetcher:    fetcher,
		normalizer: normalizer,
		store:      store,
		coords:     coords,
		validate:   validator.New(),
		logger:     logger.With("component", "nowcast.service"),
		timezone:   time.FixedZone("Asia/Tokyo", 9*60*60),
		now:        util.NowUTC,
	}
}

// Refresh fetches and normalizes a new snapshot. Concurrent calls share one
// upstream request. On failure the previous snapshot stays in place.
//
// The shared request is detached from the caller's cancellation and bounded
// by the fetch timeout instead. A caller that gives up gets its own ctx error
// while the others still receive the result.
func (s *service) Refresh(ctx context.Context) (ForecastSnapshot, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(s.cfg.Coordinates.Query(), func() (any, error) {
		return s.refresh(detached)
	})

	select {
	case <-ctx.Done():
		return ForecastSnapshot{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.counters.Coalesce()
		}
		if res.Err != nil {
			return ForecastSnapshot{}, res.Err
		}
		return res.Val.(ForecastSnapshot), nil
	}
}

func (s *service) refresh(ctx context.Context) (ForecastSnapshot, error) {
	s.counters.Attempt()
	started := s.now()

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	snapshot, err := s.fetchSnapshot(ctx, FetchRequest{
		Coordinates: s.cfg.Coordinates,
		APIKey:      s.cfg.APIKey,
		Timeout:     timeout,
	})
	if err == nil {
		if storeErr := s.store.Replace(ctx, snapshot); storeErr != nil {
			err = apperrors.Wrap(CodeStore, "failed to store snapshot", storeErr)
		}
	}
	s.record(started, err)

	if err != nil {
		s.counters.Failure()
		s.logger.Warn("nowcast refresh failed", "code", apperrors.CodeOf(err), "error", err)
		return ForecastSnapshot{}, err
	}
	s.logger.Info("nowcast refreshed", "snapshot", snapshot.ID, "points", len(snapshot.Points), "current_intensity", snapshot.CurrentIntensity)
	return snapshot, nil
}

func (s *service) fetchSnapshot(ctx context.Context, req FetchRequest) (ForecastSnapshot, error) {
	raw, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		return ForecastSnapshot{}, err
	}
	return s.normalizer.Normalize(raw)
}

func (s *service) record(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.lastAttempt = at
	s.state.lastErr = err
	if err == nil {
		s.state.lastSuccess = at
	}
}

func (s *service) latestSnapshot(ctx context.Context) (ForecastSnapshot, bool, error) {
	snapshot, ok, err := s.store.Latest(ctx)
	if err != nil {
		return ForecastSnapshot{}, false, apperrors.Wrap(CodeStore, "failed to load snapshot", err)
	}
	return snapshot, ok, nil
}

func (s *service) Latest(ctx context.Context) (SnapshotResponse, error) {
	snapshot, ok, err := s.latestSnapshot(ctx)
	if err != nil {
		return SnapshotResponse{}, err
	}
	res := SnapshotResponse{
		Available: ok,
		Unit:      "mm/h",
		Icon:      intensityIcon(0),
		Latitude:  s.cfg.Coordinates.Latitude,
		Longitude: s.cfg.Coordinates.Longitude,
		Forecasts: []ForecastEntry{},
	}
	if !ok {
		return res, nil
	}
	res.ID = snapshot.ID
	res.LastUpdated = snapshot.FetchedAt.In(s.timezone).Format(time.RFC3339)
	res.CurrentIntensity = snapshot.CurrentIntensity
	res.Icon = intensityIcon(snapshot.CurrentIntensity)
	res.Temperature = snapshot.Temperature
	res.Humidity = snapshot.Humidity
	res.Forecasts = s.toEntries(snapshot)
	return res, nil
}

func (s *service) toEntries(snapshot ForecastSnapshot) []ForecastEntry {
	entries := make([]ForecastEntry, 0, len(snapshot.Points))
	for _, pt := range snapshot.Points {
		entries = append(entries, ForecastEntry{
			Time:          pt.At(snapshot.FetchedAt).In(s.timezone).Format("15:04"),
			OffsetMinutes: pt.OffsetMinutes,
			Intensity:     pt.Intensity,
		})
	}
	return entries
}

func (s *service) RainSoon(ctx context.Context, req RainSoonRequest) (RainSoonResponse, error) {
	threshold := s.cfg.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	minutes := s.cfg.ForecastMinutes
	if req.Minutes != nil {
		minutes = *req.Minutes
	}
	if threshold < 0 {
		return RainSoonResponse{}, apperrors.Wrap(CodeInvalidInput, "threshold must be non-negative", nil)
	}
	if minutes < 0 {
		return RainSoonResponse{}, apperrors.Wrap(CodeInvalidInput, "minutes must be non-negative", nil)
	}

	snapshot, _, err := s.latestSnapshot(ctx)
	if err != nil {
		return RainSoonResponse{}, err
	}
	decision := Evaluate(snapshot, threshold, minutes)
	return RainSoonResponse{
		IsOn:             decision.IsOn,
		MinutesUntilRain: decision.MinutesUntilRain,
		MaxIntensity:     decision.MaxIntensity,
		Threshold:        threshold,
		ForecastMinutes:  minutes,
		Icon:             iconFor(decision),
		SnapshotID:       snapshot.ID,
	}, nil
}

func (s *service) Status(ctx context.Context) StatusResponse {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	usage := s.counters.Usage()
	res := StatusResponse{
		Attempts:  usage.Attempts,
		Failures:  usage.Failures,
		Coalesced: usage.Coalesced,
	}
	if state.lastErr != nil {
		res.LastError = state.lastErr.Error()
	}
	if !state.lastAttempt.IsZero() {
		res.LastAttemptAt = state.lastAttempt.In(s.timezone).Format(time.RFC3339)
	}
	if !state.lastSuccess.IsZero() {
		res.LastSuccessAt = state.lastSuccess.In(s.timezone).Format(time.RFC3339)
	}

	snapshot, ok, err := s.latestSnapshot(ctx)
	if err != nil {
		if res.LastError == "" {
			res.LastError = err.Error()
		}
		return res
	}
	if ok {
		res.SnapshotID = snapshot.ID
	}
	res.Available = ok && state.lastErr == nil
	return res
}

func (s *service) ValidateSettings(ctx context.Context, req SettingsRequest) (SettingsResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return SettingsResult{}, apperrors.Wrap(CodeInvalidInput, describeValidation(err), err)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return SettingsResult{}, apperrors.Wrap(CodeInvalidInput, "latitude and longitude must be provided together", nil)
	}

	settings := s.resolveSettings(ctx, req)
	_, err := s.fetchSnapshot(ctx, FetchRequest{
		Coordinates: Coordinates{Latitude: settings.Latitude, Longitude: settings.Longitude},
		APIKey:      settings.APIKey,
		Timeout:     s.cfg.Timeout,
	})
	if err != nil {
		if IsAuthError(err) {
			return SettingsResult{}, apperrors.Wrap(CodeInvalidAuth, "api key rejected by provider", err)
		}
		return SettingsResult{}, apperrors.Wrap(CodeCannotConnect, "cannot reach forecast provider", err)
	}

	s.logger.Info("nowcast settings validated", "coordinates", settings.CoordinateSource)
	return SettingsResult{
		Title:    "Precipitation nowcast (" + Coordinates{Latitude: settings.Latitude, Longitude: settings.Longitude}.String() + ")",
		Settings: settings,
	}, nil
}

func (s *service) resolveSettings(ctx context.Context, req SettingsRequest) Settings {
	settings := Settings{
		APIKey:           req.APIKey,
		Threshold:        DefaultThreshold,
		ForecastMinutes:  DefaultForecastMinutes,
		CoordinateSource: "request",
	}
	if req.Latitude != nil && req.Longitude != nil {
		settings.Latitude = *req.Latitude
		settings.Longitude = *req.Longitude
	} else {
		coords, source := s.coords.DefaultCoordinates(ctx)
		settings.Latitude = coords.Latitude
		settings.Longitude = coords.Longitude
		settings.CoordinateSource = source
	}
	if req.Threshold != nil {
		settings.Threshold = *req.Threshold
	}
	if req.ForecastMinutes != nil {
		settings.ForecastMinutes = *req.ForecastMinutes
	}
	return settings
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid settings"
	}
	fe := verrs[0]
	return "field " + fe.Field() + " failed " + fe.Tag() + " validation"
}
