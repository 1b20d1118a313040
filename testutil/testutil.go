package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graph"
)

// WeightAttr is the cost attribute all fixtures carry.
const WeightAttr = "travel_time"

// DistAttr is the reporting distance attribute all fixtures carry.
const DistAttr = "length"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// DiamondGraph builds the canonical 4-node diamond: 1 -> 2 -> 4 with cost
// 5+5 and 1 -> 3 -> 4 with cost 1+1. The optimal path is [1, 3, 4] at total
// cost 2.
func DiamondGraph(tb testing.TB) *graph.Graph {
	tb.Helper()

	b := graph.NewBuilder()
	b.AddNode(1, geo.Point{X: 0, Y: 0})
	b.AddNode(2, geo.Point{X: 1, Y: 1})
	b.AddNode(3, geo.Point{X: 1, Y: -1})
	b.AddNode(4, geo.Point{X: 2, Y: 0})

	b.AddEdge(1, 2, map[string]float64{WeightAttr: 5, DistAttr: 5})
	b.AddEdge(2, 4, map[string]float64{WeightAttr: 5, DistAttr: 5})
	b.AddEdge(1, 3, map[string]float64{WeightAttr: 1, DistAttr: 1})
	b.AddEdge(3, 4, map[string]float64{WeightAttr: 1, DistAttr: 1})

	g, err := b.Build()
	require.NoError(tb, err)

	return g
}

// GridID is the node ID of grid cell (x, y) in a width*height grid.
func GridID(width, x, y int) int64 {
	return int64(y*width + x + 1)
}

// GridGraph builds a width*height lattice with unit-cost edges in the four
// cardinal directions, both ways. Node (x, y) sits at coordinates (x, y), so
// the Euclidean heuristic is admissible.
func GridGraph(tb testing.TB, width, height int) *graph.Graph {
	tb.Helper()

	b := graph.NewBuilder()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.AddNode(GridID(width, x, y), geo.Point{X: float64(x), Y: float64(y)})
		}
	}

	attrs := map[string]float64{WeightAttr: 1, DistAttr: 1}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x+1 < width {
				b.AddEdge(GridID(width, x, y), GridID(width, x+1, y), attrs)
				b.AddEdge(GridID(width, x+1, y), GridID(width, x, y), attrs)
			}

			if y+1 < height {
				b.AddEdge(GridID(width, x, y), GridID(width, x, y+1), attrs)
				b.AddEdge(GridID(width, x, y+1), GridID(width, x, y), attrs)
			}
		}
	}

	g, err := b.Build()
	require.NoError(tb, err)

	return g
}

// RandomGeoGraph builds a graph of n nodes scattered over a small
// geographic extent, each with degree outgoing edges to random targets.
// Edge travel times are the equirectangular distance inflated by a random
// detour factor of at least 1, which keeps the great-circle heuristic
// admissible.
func RandomGeoGraph(tb testing.TB, rng *RNG, n, degree int) *graph.Graph {
	tb.Helper()

	b := graph.NewBuilder()

	pts := make([]geo.Point, n)
	for i := 0; i < n; i++ {
		pts[i] = geo.Point{
			X: 139.6 + rng.Float64()*0.3,
			Y: 35.5 + rng.Float64()*0.3,
		}
		b.AddNode(int64(i+1), pts[i])
	}

	for i := 0; i < n; i++ {
		for d := 0; d < degree; d++ {
			j := rng.Intn(n)
			if j == i {
				continue
			}

			meters := geo.Equirectangular(pts[i], pts[j])
			detour := 1 + rng.Float64()

			b.AddEdge(int64(i+1), int64(j+1), map[string]float64{
				WeightAttr: meters * detour,
				DistAttr:   meters,
			})
		}
	}

	g, err := b.Build()
	require.NoError(tb, err)

	return g
}
