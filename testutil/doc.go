// Package testutil provides testing utilities for pathgo.
//
// This package is intended for use in tests and benchmarks only. It provides
// deterministic graph fixtures, a seeded random source, an independent
// shortest-path reference for optimality checks, and helpers for draining
// progress streams.
//
// # Graph Fixtures
//
//	g := testutil.DiamondGraph(t)
//	g := testutil.GridGraph(t, 16, 16)
//	g := testutil.RandomGeoGraph(t, testutil.NewRNG(42), 500, 4)
//
// # Ground Truth
//
//	cost, path := testutil.ReferenceShortestPath(t, g, start, goal, "travel_time")
package testutil
