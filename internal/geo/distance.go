// Package geo provides geographic distance helpers for deal discovery.
package geo

import (
	"math"
)

// EarthRadiusMiles is the mean radius of the Earth in statute miles.
const EarthRadiusMiles = 3958.8

// Point represents a geographic coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Valid reports whether the point lies within the valid coordinate ranges:
// latitude in [-90, 90] and longitude in [-180, 180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceMiles computes the great-circle distance between two points in
// statute miles using the haversine formula.
//
// Accuracy is within ~0.5% for the distances this service cares about
// (tens of miles); good enough for radius filtering and distance decay.
func DistanceMiles(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// radians converts decimal degrees to radians.
func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
