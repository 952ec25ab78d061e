// Package geo computes great-circle distances between claimed and verified
// coordinates and classifies them against a configurable geofence threshold.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the WGS84 mean radius.
const earthRadiusMeters = 6371000.0

// DefaultGeofenceThresholdMeters is the recommended deployment default.
const DefaultGeofenceThresholdMeters = 200.0

// Coordinate is a (longitude, latitude) pair in WGS84 degrees.
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the coordinate is inside [-180,180] x [-90,90].
func (c Coordinate) Valid() bool {
	return c.Lng >= -180 && c.Lng <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Validate returns a descriptive error for out-of-range coordinates.
func (c Coordinate) Validate() error {
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", c.Lat)
	}
	return nil
}

// Evaluation is the result of comparing a claimed coordinate against an
// independently verified one.
type Evaluation struct {
	DistanceMeters float64 `json:"distance_meters"`
	WithinFence    bool    `json:"within_fence"`
}

// Distance returns the haversine great-circle distance between two
// coordinates in meters. Symmetric, non-negative, zero iff a == b.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Evaluate computes the deviation between a claimed and an actual coordinate
// and classifies it against thresholdMeters. The threshold comes from
// configuration so operators can tune it per deployment.
func Evaluate(claimed, actual Coordinate, thresholdMeters float64) Evaluation {
	d := Distance(claimed, actual)
	return Evaluation{
		DistanceMeters: d,
		WithinFence:    d <= thresholdMeters,
	}
}
