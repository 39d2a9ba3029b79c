package nowcast

import (
	"context"
	"strings"
)

// CoordinateProvider supplies default coordinates when a caller omits them.
type CoordinateProvider interface {
	DefaultCoordinates(ctx context.Context) (Coordinates, string)
}

// ZoneDirectory resolves defaults from configured zones, preferring "home".
type ZoneDirectory struct {
	zones    []Zone
	fallback Coordinates
}

// NewZoneDirectory builds a provider over zones with fallback as the system location.
func NewZoneDirectory(zones []Zone, fallback Coordinates) *ZoneDirectory {
	copied := make([]Zone, len(zones))
	copy(copied, zones)
	return &ZoneDirectory{zones: copied, fallback: fallback}
}

// DefaultCoordinates returns the chosen coordinates and where they came from.
func (d *ZoneDirectory) DefaultCoordinates(_ context.Context) (Coordinates, string) {
	if len(d.zones) == 0 {
		return d.fallback, "system"
	}
	chosen := d.zones[0]
	for _, z := range d.zones {
		if strings.Contains(strings.ToLower(z.Name), "home") {
			chosen = z
			break
		}
	}
	return chosen.Coordinates, "zone:" + chosen.Name
}

var _ CoordinateProvider = (*ZoneDirectory)(nil)
