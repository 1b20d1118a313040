package export

import (
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/progress"
)

// WriteDOT writes the final-path subgraph as a Graphviz digraph. Nodes are
// labeled with their ids and edges with the search's weight attribute, so
// the route renders directly with dot(1).
func WriteDOT(w io.Writer, g *graph.Graph, state *progress.RunState, weightAttr string) error {
	gv := gographviz.NewGraph()
	if err := gv.SetName("route"); err != nil {
		return err
	}

	if err := gv.SetDir(true); err != nil {
		return err
	}

	path := state.FinalPath
	for _, id := range path {
		// gographviz keeps attribute values verbatim, quotes included.
		attrs := map[string]string{"label": strconv.Quote(strconv.FormatInt(id, 10))}
		if err := gv.AddNode("route", dotNodeName(id), attrs); err != nil {
			return err
		}
	}

	slot, haveSlot := g.AttrSlot(weightAttr)

	for i := 0; i+1 < len(path); i++ {
		var attrs map[string]string

		if haveSlot {
			if cost, ok := edgeCost(g, slot, path[i], path[i+1]); ok {
				attrs = map[string]string{"label": strconv.Quote(strconv.FormatFloat(cost, 'f', -1, 64))}
			}
		}

		if err := gv.AddEdge(dotNodeName(path[i]), dotNodeName(path[i+1]), true, attrs); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, gv.String())

	return err
}

func dotNodeName(id int64) string {
	return "n" + strconv.FormatInt(id, 10)
}

// edgeCost looks up the weight the search would have used for the hop
// (from, to): the cheapest parallel edge. The second return is false when
// the edge or its attribute value is missing.
func edgeCost(g *graph.Graph, slot int, from, to int64) (float64, bool) {
	u, ok := g.NodeIndex(from)
	if !ok {
		return 0, false
	}

	v, ok := g.NodeIndex(to)
	if !ok {
		return 0, false
	}

	_, cost, ok := g.MinEdge(u, v, slot)

	return cost, ok
}
