package nowcast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZoneDirectoryPrefersHome(t *testing.T) {
	dir := NewZoneDirectory([]Zone{
		{Name: "office", Coordinates: Coordinates{Latitude: 35.0, Longitude: 135.0}},
		{Name: "Home", Coordinates: Coordinates{Latitude: 34.7, Longitude: 135.5}},
	}, Coordinates{Latitude: 1, Longitude: 2})

	coords, source := dir.DefaultCoordinates(context.Background())
	require.Equal(t, Coordinates{Latitude: 34.7, Longitude: 135.5}, coords)
	require.Equal(t, "zone:Home", source)
}

func TestZoneDirectoryFirstZoneWithoutHome(t *testing.T) {
	dir := NewZoneDirectory([]Zone{
		{Name: "office", Coordinates: Coordinates{Latitude: 35.0, Longitude: 135.0}},
		{Name: "gym", Coordinates: Coordinates{Latitude: 36.0, Longitude: 136.0}},
	}, Coordinates{})

	coords, source := dir.DefaultCoordinates(context.Background())
	require.Equal(t, 35.0, coords.Latitude)
	require.Equal(t, "zone:office", source)
}

func TestZoneDirectoryFallsBackToSystem(t *testing.T) {
	fallback := Coordinates{Latitude: 43.06, Longitude: 141.35}
	coords, source := NewZoneDirectory(nil, fallback).DefaultCoordinates(context.Background())
	require.Equal(t, fallback, coords)
	require.Equal(t, "system", source)
}
