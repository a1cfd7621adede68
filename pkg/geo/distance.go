// Package geo provides the distance primitive used by donor matching.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius (IUGG) used for great-circle distances.
const EarthRadiusKm = 6371.0088

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude" yaml:"lat"`
	Longitude float64 `json:"longitude" yaml:"lng"`
}

// DistanceKm returns the great-circle distance between a and b in kilometres.
// Coordinates outside [-90,90]/[-180,180] are not checked.
func DistanceKm(a, b Point) float64 {
	if a == b {
		return 0
	}

	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Latitude))*math.Cos(degreesToRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundKm rounds a distance to two decimals for display.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
