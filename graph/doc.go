// Package graph provides a directed multigraph in CSR (Compressed Sparse Row)
// form, optimized for repeated traversal by search engines.
//
// Graphs are constructed through a Builder and immutable afterwards. Nodes
// carry 2-D coordinates and are addressed externally by int64 IDs and
// internally by dense uint32 indices. Edges carry named float64 attributes
// (e.g. "travel_time", "length") resolved to integer slots once, so the hot
// path never touches a map.
//
// # Usage
//
//	b := graph.NewBuilder()
//	b.AddNode(1, geo.Point{X: 139.767, Y: 35.681})
//	b.AddNode(2, geo.Point{X: 139.700, Y: 35.689})
//	b.AddEdge(1, 2, map[string]float64{"travel_time": 4.2})
//
//	g, err := b.Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Parallel Edges
//
// Multiple edges between the same ordered node pair are allowed. During
// neighbor expansion the lowest-cost edge under the requested attribute wins;
// ties resolve to the earliest added edge.
package graph
