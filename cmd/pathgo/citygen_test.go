package main

import (
	"testing"

	"github.com/hupe1980/pathgo/graphio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthCityDeterministic(t *testing.T) {
	p := builtinPresets["baku"]

	a := synthCity(p)
	b := synthCity(p)

	assert.Equal(t, a, b)
}

func TestSynthCityConnected(t *testing.T) {
	doc := synthCity(cityParams{
		Seed:     7,
		Width:    8,
		Height:   6,
		Lat:      1,
		Lon:      1,
		Spacing:  0.001,
		Jitter:   0.3,
		Removal:  0.3,
		SpeedKmh: 30,
	})

	g, err := graphio.Compile(doc)
	require.NoError(t, err)

	n := g.NumNodes()
	require.Equal(t, 48, n)

	// The spanning pass must survive even an aggressive removal rate.
	seen := make([]bool, n)
	seen[0] = true
	count := 1
	queue := []uint32{0}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			if v := g.EdgeHead(e); !seen[v] {
				seen[v] = true
				count++
				queue = append(queue, v)
			}
		}
	}

	assert.Equal(t, n, count, "every intersection reachable")
}

func TestSynthCityStreets(t *testing.T) {
	doc := synthCity(cityParams{
		Seed:     3,
		Width:    5,
		Height:   5,
		Lat:      52,
		Lon:      13,
		Spacing:  0.002,
		Jitter:   0.2,
		Removal:  0.1,
		SpeedKmh: 50,
	})

	require.NotEmpty(t, doc.Edges)
	assert.Zero(t, len(doc.Edges)%2, "streets are two-way")

	for _, e := range doc.Edges {
		assert.Greater(t, e.Attrs["travel_time"], 0.0)
		assert.Greater(t, e.Attrs["length"], 0.0)
	}
}

func TestCityParamsDefaults(t *testing.T) {
	p := cityParams{Seed: 5, Lat: 48.1, Lon: 11.5}.withDefaults()

	assert.Equal(t, 40, p.Width)
	assert.Equal(t, 32, p.Height)
	assert.Equal(t, 0.0015, p.Spacing)
	assert.Equal(t, 40.0, p.SpeedKmh)
}
