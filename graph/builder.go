package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/pathgo/geo"
)

var (
	// ErrUnknownNode is returned when an edge references a node that was
	// never added.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrNegativeAttr is returned when an edge attribute value is negative.
	// Costs and distances must be non-negative for search to be correct.
	ErrNegativeAttr = errors.New("graph: negative edge attribute")
)

// Builder accumulates nodes and edges and produces an immutable Graph.
// Errors are recorded on first occurrence and reported by Build, so call
// sites can chain adds without checking each one. Not safe for concurrent
// use.
type Builder struct {
	ids   []int64
	index map[int64]uint32
	pts   []geo.Point

	attrNames []string
	attrIdx   map[string]int

	from []uint32
	to   []uint32
	vals [][]float64

	err error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		index:   make(map[int64]uint32),
		attrIdx: make(map[string]int),
	}
}

// AddNode registers a node under an external ID and returns its dense index.
// Adding an existing ID updates its coordinates in place.
func (b *Builder) AddNode(id int64, pt geo.Point) uint32 {
	if idx, ok := b.index[id]; ok {
		b.pts[idx] = pt
		return idx
	}

	if len(b.ids) == math.MaxUint32 {
		b.fail(fmt.Errorf("graph: node capacity exceeded"))
		return 0
	}

	idx := uint32(len(b.ids))
	b.ids = append(b.ids, id)
	b.pts = append(b.pts, pt)
	b.index[id] = idx

	return idx
}

// HasNode reports whether an external ID has been added.
func (b *Builder) HasNode(id int64) bool {
	_, ok := b.index[id]
	return ok
}

// AddEdge appends a directed edge between two previously added nodes.
// Attributes not yet seen are registered in sorted key order. Values must be
// non-negative and finite.
func (b *Builder) AddEdge(from, to int64, attrs map[string]float64) {
	fromIdx, ok := b.index[from]
	if !ok {
		b.fail(fmt.Errorf("%w: edge source %d", ErrUnknownNode, from))
		return
	}

	toIdx, ok := b.index[to]
	if !ok {
		b.fail(fmt.Errorf("%w: edge target %d", ErrUnknownNode, to))
		return
	}

	if uint64(len(b.from)) == math.MaxUint32 {
		b.fail(fmt.Errorf("graph: edge capacity exceeded"))
		return
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		v := attrs[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.fail(fmt.Errorf("graph: attribute %q on edge %d -> %d is not finite", name, from, to))
			return
		}

		if v < 0 {
			b.fail(fmt.Errorf("%w: %q = %g on edge %d -> %d", ErrNegativeAttr, name, v, from, to))
			return
		}
	}

	e := len(b.from)
	b.from = append(b.from, fromIdx)
	b.to = append(b.to, toIdx)

	for slot := range b.vals {
		b.vals[slot] = append(b.vals[slot], math.NaN())
	}

	for _, name := range names {
		slot := b.slot(name)
		b.vals[slot][e] = attrs[name]
	}
}

// Err returns the first recorded error, if any.
func (b *Builder) Err() error { return b.err }

// Build finalizes the accumulated nodes and edges into an immutable Graph.
// The Builder must not be reused afterwards.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}

	numEdges := len(b.from)

	// Stable sort by (source, target) groups parallel edges contiguously
	// while preserving insertion order within each group.
	perm := make([]uint32, numEdges)
	for i := range perm {
		perm[i] = uint32(i)
	}

	sort.SliceStable(perm, func(i, j int) bool {
		ei, ej := perm[i], perm[j]
		if b.from[ei] != b.from[ej] {
			return b.from[ei] < b.from[ej]
		}

		return b.to[ei] < b.to[ej]
	})

	head := make([]uint32, numEdges)
	vals := make([][]float64, len(b.vals))

	for slot := range vals {
		vals[slot] = make([]float64, numEdges)
	}

	for i, e := range perm {
		head[i] = b.to[e]
		for slot := range vals {
			vals[slot][i] = b.vals[slot][e]
		}
	}

	firstOut := make([]uint32, len(b.ids)+1)
	for _, u := range b.from {
		firstOut[u+1]++
	}

	for i := 1; i < len(firstOut); i++ {
		firstOut[i] += firstOut[i-1]
	}

	min, max := computeBBox(b.pts)

	return &Graph{
		ids:       b.ids,
		index:     b.index,
		pts:       b.pts,
		firstOut:  firstOut,
		head:      head,
		vals:      vals,
		attrNames: b.attrNames,
		attrIdx:   b.attrIdx,
		bboxMin:   min,
		bboxMax:   max,
	}, nil
}

func (b *Builder) slot(name string) int {
	if slot, ok := b.attrIdx[name]; ok {
		return slot
	}

	slot := len(b.attrNames)
	b.attrNames = append(b.attrNames, name)
	b.attrIdx[name] = slot
	b.vals = append(b.vals, makeNaNSlice(len(b.from)))

	return slot
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func makeNaNSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}

	return s
}
