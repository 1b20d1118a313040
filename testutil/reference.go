package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/hupe1980/pathgo/graph"
)

// ReferenceShortestPath computes the minimum-cost path between two external
// node IDs with an independent implementation (gonum's Dijkstra), applying
// the same lowest-cost rule to parallel edges. It returns +Inf and a nil
// path when the goal is unreachable.
func ReferenceShortestPath(tb testing.TB, g *graph.Graph, start, goal int64, weightAttr string) (float64, []int64) {
	tb.Helper()

	slot, ok := g.AttrSlot(weightAttr)
	require.True(tb, ok, "unknown weight attribute %q", weightAttr)

	sg := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	for i := 0; i < g.NumNodes(); i++ {
		sg.AddNode(simple.Node(g.NodeID(uint32(i))))
	}

	var buf []graph.Neighbor

	for i := 0; i < g.NumNodes(); i++ {
		u := uint32(i)

		var err error

		buf, err = g.AppendNeighbors(buf[:0], u, slot)
		require.NoError(tb, err)

		for _, nb := range buf {
			if nb.Node == u {
				continue
			}

			sg.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(g.NodeID(u)),
				T: simple.Node(g.NodeID(nb.Node)),
				W: nb.Cost,
			})
		}
	}

	shortest := path.DijkstraFrom(sg.Node(start), sg)

	nodes, cost := shortest.To(goal)
	if math.IsInf(cost, 1) {
		return cost, nil
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}

	return cost, ids
}
