package nowcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func samplePoints() []ForecastPoint {
	return []ForecastPoint{
		{OffsetMinutes: 0, Intensity: 0.1},
		{OffsetMinutes: 10, Intensity: 0.5},
		{OffsetMinutes: 20, Intensity: 0.05},
	}
}

func TestEvaluate(t *testing.T) {
	snap := NewSnapshot("snp_test", samplePoints(), time.Unix(0, 0), nil, nil)

	tests := []struct {
		name      string
		threshold float64
		horizon   int
		isOn      bool
		minutes   *int
		max       float64
	}{
		{name: "rain at ten minutes", threshold: 0.2, horizon: 30, isOn: true, minutes: intPtr(10), max: 0.5},
		{name: "threshold above every point", threshold: 0.6, horizon: 30},
		{name: "horizon excludes later points", threshold: 0.2, horizon: 5},
		{name: "threshold equal to intensity qualifies", threshold: 0.5, horizon: 10, isOn: true, minutes: intPtr(10), max: 0.5},
		{name: "zero threshold starts now", threshold: 0, horizon: 30, isOn: true, minutes: intPtr(0), max: 0.5},
		{name: "zero horizon only sees the first point", threshold: 0.1, horizon: 0, isOn: true, minutes: intPtr(0), max: 0.1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(snap, tc.threshold, tc.horizon)
			require.Equal(t, tc.isOn, got.IsOn)
			require.Equal(t, tc.minutes, got.MinutesUntilRain)
			require.InDelta(t, tc.max, got.MaxIntensity, 1e-9)
		})
	}
}

func TestEvaluateEmptySnapshot(t *testing.T) {
	empty := NewSnapshot("", nil, time.Time{}, nil, nil)
	for _, threshold := range []float64{0, 0.2, 10} {
		for _, horizon := range []int{0, 30, 60} {
			got := Evaluate(empty, threshold, horizon)
			require.False(t, got.IsOn)
			require.Nil(t, got.MinutesUntilRain)
			require.Zero(t, got.MaxIntensity)
		}
	}
}

func TestEvaluateMaxOnlyCountsQualifyingPoints(t *testing.T) {
	snap := NewSnapshot("snp_test", []ForecastPoint{
		{OffsetMinutes: 0, Intensity: 0},
		{OffsetMinutes: 10, Intensity: 1.2},
		{OffsetMinutes: 20, Intensity: 3.4},
		{OffsetMinutes: 40, Intensity: 9.9},
	}, time.Unix(0, 0), nil, nil)

	got := Evaluate(snap, 1, 30)
	require.True(t, got.IsOn)
	require.Equal(t, 10, *got.MinutesUntilRain)
	require.InDelta(t, 3.4, got.MaxIntensity, 1e-9)
}

func TestNewSnapshotCurrentIntensity(t *testing.T) {
	snap := NewSnapshot("snp_test", samplePoints(), time.Unix(0, 0), nil, nil)
	require.Equal(t, 0.1, snap.CurrentIntensity)

	empty := NewSnapshot("snp_test", nil, time.Unix(0, 0), nil, nil)
	require.Zero(t, empty.CurrentIntensity)
	require.Empty(t, empty.Points)
}

func TestNewSnapshotTruncatesAndCopies(t *testing.T) {
	points := make([]ForecastPoint, 0, 8)
	for i := 0; i < 8; i++ {
		points = append(points, ForecastPoint{OffsetMinutes: i * StepMinutes, Intensity: float64(i)})
	}
	snap := NewSnapshot("snp_test", points, time.Unix(0, 0), nil, nil)
	require.Len(t, snap.Points, MaxPoints)

	points[0].Intensity = 42
	require.Zero(t, snap.Points[0].Intensity)
}

func TestCoordinatesQuery(t *testing.T) {
	c := Coordinates{Latitude: 35.681236, Longitude: 139.767125}
	require.Equal(t, "139.767125,35.681236", c.Query())
	require.Equal(t, "35.6812, 139.7671", c.String())
}

func intPtr(v int) *int { return &v }
