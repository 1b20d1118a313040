package geo

import (
	"math/rand"
	"testing"
)

func benchPoints(n int) []Point {
	rng := rand.New(rand.NewSource(42))

	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{
			X: 139.6 + rng.Float64()*0.3,
			Y: 35.5 + rng.Float64()*0.3,
		}
	}

	return pts
}

func BenchmarkHaversine(b *testing.B) {
	pts := benchPoints(1024)

	b.ResetTimer()

	var sink float64
	for i := 0; i < b.N; i++ {
		sink += Haversine(pts[i%len(pts)], pts[(i+1)%len(pts)])
	}

	_ = sink
}

func BenchmarkEquirectangular(b *testing.B) {
	pts := benchPoints(1024)

	b.ResetTimer()

	var sink float64
	for i := 0; i < b.N; i++ {
		sink += Equirectangular(pts[i%len(pts)], pts[(i+1)%len(pts)])
	}

	_ = sink
}

func BenchmarkEuclidean(b *testing.B) {
	pts := benchPoints(1024)

	b.ResetTimer()

	var sink float64
	for i := 0; i < b.N; i++ {
		sink += Euclidean(pts[i%len(pts)], pts[(i+1)%len(pts)])
	}

	_ = sink
}
