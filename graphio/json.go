package graphio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graph"
)

// Document is the JSON interchange form of a graph.
type Document struct {
	Nodes []NodeDoc `json:"nodes"`
	Edges []EdgeDoc `json:"edges"`
}

// NodeDoc is one node of a document.
type NodeDoc struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EdgeDoc is one directed edge of a document.
type EdgeDoc struct {
	From  int64              `json:"from"`
	To    int64              `json:"to"`
	Attrs map[string]float64 `json:"attrs"`
}

// Decode parses a JSON document and compiles it.
func Decode(r io.Reader) (*graph.Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("graphio: parse document: %w", err)
	}

	return Compile(&doc)
}

// Compile builds the searchable graph from a document.
func Compile(doc *Document) (*graph.Graph, error) {
	b := graph.NewBuilder()

	for _, n := range doc.Nodes {
		b.AddNode(n.ID, geo.Point{X: n.Lon, Y: n.Lat})
	}

	for _, e := range doc.Edges {
		b.AddEdge(e.From, e.To, e.Attrs)
	}

	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("graphio: compile document: %w", err)
	}

	return g, nil
}

// Encode writes g as a JSON document.
func Encode(w io.Writer, g *graph.Graph) error {
	return json.NewEncoder(w).Encode(DocumentFrom(g))
}

// EncodeDocument writes doc as indented JSON, the editable on-disk form.
func EncodeDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// DocumentFrom converts a compiled graph back to its interchange form.
// Nodes appear in index order and edges in adjacency order, so the output
// is deterministic for a given graph.
func DocumentFrom(g *graph.Graph) *Document {
	doc := &Document{
		Nodes: make([]NodeDoc, 0, g.NumNodes()),
		Edges: make([]EdgeDoc, 0, g.NumEdges()),
	}

	attrs := g.Attrs()

	slots := make([]int, len(attrs))
	for i, name := range attrs {
		slots[i], _ = g.AttrSlot(name)
	}

	for idx := uint32(0); idx < uint32(g.NumNodes()); idx++ {
		pt := g.Point(idx)
		doc.Nodes = append(doc.Nodes, NodeDoc{ID: g.NodeID(idx), Lat: pt.Y, Lon: pt.X})

		start, end := g.EdgesFrom(idx)
		for e := start; e < end; e++ {
			edge := EdgeDoc{
				From:  g.NodeID(idx),
				To:    g.NodeID(g.EdgeHead(e)),
				Attrs: make(map[string]float64, len(attrs)),
			}

			for i, name := range attrs {
				if v, ok := g.EdgeValue(slots[i], e); ok {
					edge.Attrs[name] = v
				}
			}

			doc.Edges = append(doc.Edges, edge)
		}
	}

	return doc
}
