package main

import (
	"math/rand"

	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graphio"
)

// synthCity generates a city-like street grid: intersections on a
// jittered lattice, 4-neighbor streets, per-street travel_time and length
// attributes. A spanning pass keeps every intersection reachable before
// the remaining streets are thinned by the removal rate.
func synthCity(p cityParams) *graphio.Document {
	p = p.withDefaults()
	rng := rand.New(rand.NewSource(p.Seed))

	doc := &graphio.Document{
		Nodes: make([]graphio.NodeDoc, 0, p.Width*p.Height),
	}

	pts := make([]geo.Point, p.Width*p.Height)

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			jx := (rng.Float64()*2 - 1) * p.Spacing * p.Jitter
			jy := (rng.Float64()*2 - 1) * p.Spacing * p.Jitter

			lon := p.Lon + (float64(x)-float64(p.Width-1)/2)*p.Spacing + jx
			lat := p.Lat + (float64(y)-float64(p.Height-1)/2)*p.Spacing + jy

			pts[y*p.Width+x] = geo.Point{X: lon, Y: lat}
			doc.Nodes = append(doc.Nodes, graphio.NodeDoc{
				ID:  cityNodeID(p, x, y),
				Lat: lat,
				Lon: lon,
			})
		}
	}

	seen := make(map[[4]int]bool)

	// link adds one two-way street. Callers pass the left or upper
	// endpoint first, so the dedup key needs no normalization.
	link := func(ax, ay, bx, by int) {
		key := [4]int{ax, ay, bx, by}
		if seen[key] {
			return
		}

		seen[key] = true

		a := pts[ay*p.Width+ax]
		b := pts[by*p.Width+bx]

		length := geo.Haversine(a, b)

		// Streets differ: some crawl, some flow.
		speed := p.SpeedKmh * (0.7 + 0.6*rng.Float64())
		travel := length / (speed / 3.6)

		attrs := map[string]float64{
			"travel_time": travel,
			"length":      length,
		}

		doc.Edges = append(doc.Edges,
			graphio.EdgeDoc{From: cityNodeID(p, ax, ay), To: cityNodeID(p, bx, by), Attrs: attrs},
			graphio.EdgeDoc{From: cityNodeID(p, bx, by), To: cityNodeID(p, ax, ay), Attrs: attrs},
		)
	}

	// Spanning pass: every intersection joins the network through its left
	// or upper neighbor.
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			switch {
			case x == 0 && y == 0:
			case y == 0:
				link(x-1, y, x, y)
			case x == 0:
				link(x, y-1, x, y)
			case rng.Intn(2) == 0:
				link(x-1, y, x, y)
			default:
				link(x, y-1, x, y)
			}
		}
	}

	// Fill pass: the rest of the lattice, thinned out.
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if x+1 < p.Width && rng.Float64() >= p.Removal {
				link(x, y, x+1, y)
			}

			if y+1 < p.Height && rng.Float64() >= p.Removal {
				link(x, y, x, y+1)
			}
		}
	}

	return doc
}

func cityNodeID(p cityParams, x, y int) int64 {
	return int64(y*p.Width + x + 1)
}
