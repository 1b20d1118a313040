package graphio

import (
	"math/rand"

	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graph"
)

// DiversePairSamples is the number of candidate pairs DiversePair draws.
const DiversePairSamples = 32

// DiversePair picks far-apart route endpoints for demos: it samples
// candidate pairs uniformly and returns the pair with the largest
// straight-line separation. Graphs with fewer than two nodes return the
// same node twice (or zeros for an empty graph).
func DiversePair(g *graph.Graph, rng *rand.Rand) (start, goal int64) {
	n := g.NumNodes()
	if n == 0 {
		return 0, 0
	}

	if n == 1 {
		id := g.NodeID(0)
		return id, id
	}

	bestDist := -1.0

	var bestA, bestB uint32

	for i := 0; i < DiversePairSamples; i++ {
		a := uint32(rng.Intn(n))
		b := uint32(rng.Intn(n))
		if a == b {
			continue
		}

		if d := geo.Equirectangular(g.Point(a), g.Point(b)); d > bestDist {
			bestDist, bestA, bestB = d, a, b
		}
	}

	if bestDist < 0 {
		// Every draw collapsed onto one node.
		return g.NodeID(0), g.NodeID(uint32(n - 1))
	}

	return g.NodeID(bestA), g.NodeID(bestB)
}
