package graph

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/hupe1980/pathgo/geo"
)

// ErrMissingAttr is returned when an edge touched during expansion carries no
// value for the requested attribute.
var ErrMissingAttr = fmt.Errorf("graph: missing edge attribute")

// Neighbor is one entry produced by neighbor expansion: the target node, the
// winning edge among parallel candidates, and its cost under the requested
// attribute.
type Neighbor struct {
	Node uint32
	Edge uint32
	Cost float64
}

// Graph is an immutable directed multigraph in CSR form. All slices are laid
// out so that traversal is sequential and allocation-free. Safe for
// concurrent readers.
type Graph struct {
	ids   []int64          // dense index -> external ID
	index map[int64]uint32 // external ID -> dense index
	pts   []geo.Point      // len: NumNodes

	firstOut []uint32    // len: NumNodes + 1; firstOut[i]..firstOut[i+1] are edges from node i
	head     []uint32    // len: NumEdges; target node for each edge
	vals     [][]float64 // vals[slot][edge]; NaN marks an absent attribute

	attrNames []string
	attrIdx   map[string]int

	bboxMin geo.Point
	bboxMax geo.Point
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.ids) }

// NumEdges returns the edge count, counting parallel edges individually.
func (g *Graph) NumEdges() int { return len(g.head) }

// NodeIndex resolves an external node ID to its dense index.
func (g *Graph) NodeIndex(id int64) (uint32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// NodeID returns the external ID for a dense index.
func (g *Graph) NodeID(idx uint32) int64 { return g.ids[idx] }

// Point returns the coordinates of a node.
func (g *Graph) Point(idx uint32) geo.Point { return g.pts[idx] }

// BBox returns the bounding box over all node coordinates. For an empty
// graph both corners are the zero point.
func (g *Graph) BBox() (min, max geo.Point) { return g.bboxMin, g.bboxMax }

// Attrs returns the registered edge attribute names in slot order.
func (g *Graph) Attrs() []string {
	out := make([]string, len(g.attrNames))
	copy(out, g.attrNames)

	return out
}

// AttrSlot resolves an attribute name to its slot.
func (g *Graph) AttrSlot(name string) (int, bool) {
	slot, ok := g.attrIdx[name]
	return slot, ok
}

// EdgesFrom returns the range of edge indices for edges originating from
// node u. Edges within the range are ordered by target index, then by
// insertion order.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.firstOut[u], g.firstOut[u+1]
}

// EdgeHead returns the target node of edge e.
func (g *Graph) EdgeHead(e uint32) uint32 { return g.head[e] }

// EdgeValue returns the value of attribute slot on edge e, and whether the
// edge carries that attribute at all.
func (g *Graph) EdgeValue(slot int, e uint32) (float64, bool) {
	v := g.vals[slot][e]
	return v, !math.IsNaN(v)
}

// MinEdge returns the lowest-cost edge from u to v under the attribute
// slot, ties resolving to the earliest added edge. ok is false when no edge
// from u to v carries the attribute.
func (g *Graph) MinEdge(u, v uint32, slot int) (edge uint32, cost float64, ok bool) {
	costs := g.vals[slot]

	start, end := g.firstOut[u], g.firstOut[u+1]
	for e := start; e < end; e++ {
		if g.head[e] != v {
			continue
		}

		if c := costs[e]; !math.IsNaN(c) && (!ok || c < cost) {
			edge, cost, ok = e, c, true
		}
	}

	return edge, cost, ok
}

// AppendNeighbors appends the distinct neighbors of u to buf and returns the
// extended slice. For parallel edges the lowest cost under slot wins, ties
// resolving to the earliest added edge. A neighbor whose edges all lack the
// attribute is a configuration error, not a silent default.
//
// Passing buf[:0] across calls makes expansion allocation-free.
func (g *Graph) AppendNeighbors(buf []Neighbor, u uint32, slot int) ([]Neighbor, error) {
	costs := g.vals[slot]

	start, end := g.firstOut[u], g.firstOut[u+1]
	for e := start; e < end; {
		target := g.head[e]

		best := e
		bestCost := costs[e]

		// Parallel edges are contiguous after Build.
		for e++; e < end && g.head[e] == target; e++ {
			if c := costs[e]; c < bestCost || math.IsNaN(bestCost) {
				best, bestCost = e, c
			}
		}

		if math.IsNaN(bestCost) {
			return buf, fmt.Errorf("%w: %q on edge %d -> %d", ErrMissingAttr, g.attrNames[slot], g.ids[u], g.ids[target])
		}

		buf = append(buf, Neighbor{Node: target, Edge: best, Cost: bestCost})
	}

	return buf, nil
}

// graphWire is the gob representation of a Graph. NaN round-trips through
// gob's float encoding, so absent attributes survive encode/decode.
type graphWire struct {
	IDs       []int64
	Pts       []geo.Point
	FirstOut  []uint32
	Head      []uint32
	Vals      [][]float64
	AttrNames []string
}

// GobEncode implements gob.GobEncoder.
func (g *Graph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer

	w := graphWire{
		IDs:       g.ids,
		Pts:       g.pts,
		FirstOut:  g.firstOut,
		Head:      g.head,
		Vals:      g.vals,
		AttrNames: g.attrNames,
	}

	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, fmt.Errorf("graph: encode: %w", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Graph) GobDecode(data []byte) error {
	var w graphWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return fmt.Errorf("graph: decode: %w", err)
	}

	g.ids = w.IDs
	g.pts = w.Pts
	g.firstOut = w.FirstOut
	g.head = w.Head
	g.vals = w.Vals
	g.attrNames = w.AttrNames

	g.index = make(map[int64]uint32, len(g.ids))
	for i, id := range g.ids {
		g.index[id] = uint32(i)
	}

	g.attrIdx = make(map[string]int, len(g.attrNames))
	for i, name := range g.attrNames {
		g.attrIdx[name] = i
	}

	g.bboxMin, g.bboxMax = computeBBox(g.pts)

	return nil
}

func computeBBox(pts []geo.Point) (min, max geo.Point) {
	if len(pts) == 0 {
		return geo.Point{}, geo.Point{}
	}

	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}

	return min, max
}
