package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		expected float64
		delta    float64
	}{
		{"Identical", Point{X: 139.767, Y: 35.681}, Point{X: 139.767, Y: 35.681}, 0, 1e-9},
		// Tokyo Station to Shinjuku Station, ~6.2km.
		{"TokyoShinjuku", Point{X: 139.7671, Y: 35.6812}, Point{X: 139.7006, Y: 35.6896}, 6116, 50},
		// One degree of latitude on the meridian, ~111.2km.
		{"OneDegreeLat", Point{X: 0, Y: 0}, Point{X: 0, Y: 1}, 111195, 100},
		{"Antipodal", Point{X: 0, Y: 0}, Point{X: 180, Y: 0}, math.Pi * EarthRadiusMeters, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Point{X: -122.3321, Y: 47.6062}
	b := Point{X: -122.2015, Y: 47.6101}

	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}

func TestEquirectangular(t *testing.T) {
	// For short spans the approximation stays within a fraction of a percent
	// of the exact great-circle distance.
	a := Point{X: 139.7671, Y: 35.6812}
	b := Point{X: 139.7006, Y: 35.6896}

	exact := Haversine(a, b)
	approx := Equirectangular(a, b)

	assert.InDelta(t, exact, approx, exact*0.005)
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		expected float64
	}{
		{"Identical", Point{X: 1, Y: 2}, Point{X: 1, Y: 2}, 0},
		{"UnitAxes", Point{X: 0, Y: 0}, Point{X: 3, Y: 4}, 5},
		{"Negative", Point{X: -1, Y: -1}, Point{X: 2, Y: 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Euclidean(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-9)

			assert.InDelta(t, got*got, SquaredEuclidean(tt.a, tt.b), 1e-9)
		})
	}
}

func TestManhattanChebyshev(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: -4}

	assert.InDelta(t, 7, Manhattan(a, b), 1e-9)
	assert.InDelta(t, 4, Chebyshev(a, b), 1e-9)
}
