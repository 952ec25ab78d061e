package geo

import (
	"math"
	"testing"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{name: "valid", coord: Coordinate{Lng: 77.209, Lat: 28.6139}},
		{name: "boundary longitude", coord: Coordinate{Lng: 180, Lat: 0}},
		{name: "boundary latitude", coord: Coordinate{Lng: 0, Lat: -90}},
		{name: "longitude too large", coord: Coordinate{Lng: 180.1, Lat: 0}, wantErr: true},
		{name: "longitude too small", coord: Coordinate{Lng: -181, Lat: 0}, wantErr: true},
		{name: "latitude too large", coord: Coordinate{Lng: 0, Lat: 91}, wantErr: true},
		{name: "latitude too small", coord: Coordinate{Lng: 0, Lat: -90.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.coord.Valid() == tt.wantErr {
				t.Errorf("Valid() = %v, want %v", tt.coord.Valid(), !tt.wantErr)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	delhi := Coordinate{Lng: 77.2090, Lat: 28.6139}

	t.Run("identical coordinates", func(t *testing.T) {
		if d := Distance(delhi, delhi); d != 0 {
			t.Errorf("Distance(a, a) = %v, want 0", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		other := Coordinate{Lng: 77.2190, Lat: 28.6239}
		d1 := Distance(delhi, other)
		d2 := Distance(other, delhi)
		if math.Abs(d1-d2) > 1e-9 {
			t.Errorf("Distance not symmetric: %v vs %v", d1, d2)
		}
	})

	t.Run("known short distance", func(t *testing.T) {
		// 0.001 degrees of latitude is roughly 111 meters
		near := Coordinate{Lng: delhi.Lng, Lat: delhi.Lat + 0.001}
		d := Distance(delhi, near)
		if d < 100 || d > 125 {
			t.Errorf("Distance = %v, expected roughly 111m", d)
		}
	})

	t.Run("known long distance", func(t *testing.T) {
		// Delhi to Mumbai is roughly 1150km
		mumbai := Coordinate{Lng: 72.8777, Lat: 19.0760}
		d := Distance(delhi, mumbai)
		if d < 1100000 || d > 1200000 {
			t.Errorf("Distance = %v, expected roughly 1150km", d)
		}
	})
}

func TestEvaluate(t *testing.T) {
	venue := Coordinate{Lng: 77.2090, Lat: 28.6139}

	tests := []struct {
		name        string
		actual      Coordinate
		threshold   float64
		wantInFence bool
	}{
		{name: "same point", actual: venue, threshold: 200, wantInFence: true},
		{name: "within fence", actual: Coordinate{Lng: venue.Lng, Lat: venue.Lat + 0.001}, threshold: 200, wantInFence: true},
		{name: "outside fence", actual: Coordinate{Lng: venue.Lng, Lat: venue.Lat + 0.01}, threshold: 200, wantInFence: false},
		{name: "tight threshold excludes", actual: Coordinate{Lng: venue.Lng, Lat: venue.Lat + 0.001}, threshold: 50, wantInFence: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := Evaluate(venue, tt.actual, tt.threshold)
			if eval.WithinFence != tt.wantInFence {
				t.Errorf("WithinFence = %v, want %v (distance %v)", eval.WithinFence, tt.wantInFence, eval.DistanceMeters)
			}
			if eval.DistanceMeters < 0 {
				t.Errorf("DistanceMeters = %v, must be non-negative", eval.DistanceMeters)
			}
		})
	}
}
