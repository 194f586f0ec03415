package geo

import (
	"math"
	"testing"
)

// TestDistanceMiles tests great-circle distance against known city pairs.
func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name      string
		a         Point
		b         Point
		expected  float64 // miles
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Point{Lat: 33.6846, Lng: -117.8265},
			b:         Point{Lat: 33.6846, Lng: -117.8265},
			expected:  0,
			tolerance: 0.001,
		},
		{
			name:      "Irvine to Santa Ana (~7 miles)",
			a:         Point{Lat: 33.6846, Lng: -117.8265},
			b:         Point{Lat: 33.7455, Lng: -117.8677},
			expected:  4.9,
			tolerance: 0.5,
		},
		{
			name:      "LA to NYC (~2445 miles)",
			a:         Point{Lat: 34.0522, Lng: -118.2437},
			b:         Point{Lat: 40.7128, Lng: -74.0060},
			expected:  2445,
			tolerance: 15,
		},
		{
			name:      "crossing the antimeridian",
			a:         Point{Lat: 0, Lng: 179.5},
			b:         Point{Lat: 0, Lng: -179.5},
			expected:  69.1,
			tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("expected ~%f miles (±%f), got %f", tt.expected, tt.tolerance, got)
			}
		})
	}
}

// TestDistanceMiles_Symmetric verifies distance is symmetric in its arguments.
func TestDistanceMiles_Symmetric(t *testing.T) {
	a := Point{Lat: 33.6846, Lng: -117.8265}
	b := Point{Lat: 34.0522, Lng: -118.2437}

	ab := DistanceMiles(a, b)
	ba := DistanceMiles(b, a)

	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}

// TestPointValid tests coordinate range validation.
func TestPointValid(t *testing.T) {
	tests := []struct {
		name  string
		p     Point
		valid bool
	}{
		{name: "valid point", p: Point{Lat: 33.68, Lng: -117.82}, valid: true},
		{name: "boundary north pole", p: Point{Lat: 90, Lng: 0}, valid: true},
		{name: "boundary antimeridian", p: Point{Lat: 0, Lng: -180}, valid: true},
		{name: "latitude too high", p: Point{Lat: 90.1, Lng: 0}, valid: false},
		{name: "latitude too low", p: Point{Lat: -90.1, Lng: 0}, valid: false},
		{name: "longitude too high", p: Point{Lat: 0, Lng: 180.1}, valid: false},
		{name: "longitude too low", p: Point{Lat: 0, Lng: -180.1}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
