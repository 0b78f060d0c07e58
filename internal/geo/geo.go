// Package geo provides the distance, bearing and coordinate conversion
// primitives used by the play engine. All functions are pure; positions are
// WGS84 decimal degrees. The math assumes small-scale outdoor play; it is
// not valid near the poles or across the antimeridian.
package geo

import (
	"fmt"
	"math"
)

// earthRadius is the mean Earth radius in meters used by the Haversine formula.
const earthRadius = 6371000

// Location is a point in WGS84 decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between a and b in meters,
// computed with the Haversine formula. Coincident points yield exactly 0.
func Distance(a, b Location) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// Bearing returns the forward azimuth from one point to another in degrees,
// 0 = north, clockwise, in [0, 360).
func Bearing(from, to Location) float64 {
	phi1 := from.Latitude * math.Pi / 180
	phi2 := to.Latitude * math.Pi / 180
	dLambda := (to.Longitude - from.Longitude) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	theta := math.Atan2(y, x)
	return math.Mod(theta*180/math.Pi+360, 360)
}

// WithinRadius reports whether user is within radius meters of checkpoint.
func WithinRadius(user, checkpoint Location, radius float64) bool {
	return Distance(user, checkpoint) <= radius
}

// FormatDistance renders a distance for display: "15 m" below a kilometer,
// "1.2 km" above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", math.Round(meters))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}
