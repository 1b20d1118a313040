// Package geo provides scalar distance kernels on geographic and planar
// coordinates. All functions are pure and allocation-free.
package geo

import "math"

// EarthRadiusMeters is the mean earth radius used for great-circle math.
const EarthRadiusMeters = 6371008.8

// Point is a coordinate pair. For geographic data X is longitude and Y is
// latitude, both in decimal degrees. Projected data may use arbitrary units.
type Point struct {
	X float64
	Y float64
}

// Haversine returns the great-circle distance between two points in meters.
// Inputs are interpreted as degrees.
func Haversine(a, b Point) float64 {
	lat1 := radians(a.Y)
	lat2 := radians(b.Y)
	dLat := radians(b.Y - a.Y)
	dLon := radians(b.X - a.X)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Equirectangular returns an approximate geographic distance in meters.
// It is cheaper than Haversine and accurate enough for short spans, which
// makes it the usual choice for per-node heuristic evaluation.
func Equirectangular(a, b Point) float64 {
	x := radians(b.X-a.X) * math.Cos(radians((a.Y+b.Y)/2))
	y := radians(b.Y - a.Y)

	return EarthRadiusMeters * math.Hypot(x, y)
}

// Euclidean returns the straight-line distance in coordinate units.
func Euclidean(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SquaredEuclidean returns the squared straight-line distance. It preserves
// ordering and avoids the square root, so comparisons can use it directly.
func SquaredEuclidean(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	return dx*dx + dy*dy
}

// Manhattan returns the L1 distance in coordinate units.
func Manhattan(a, b Point) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
}

// Chebyshev returns the L-infinity distance in coordinate units.
func Chebyshev(a, b Point) float64 {
	return math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
