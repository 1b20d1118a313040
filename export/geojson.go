package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/progress"
)

// MaxVisitedSample caps the MultiPoint sample of visited nodes.
const MaxVisitedSample = 2000

type geoJSONGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   geoJSONGeometry `json:"geometry"`
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// WriteGeoJSON writes a FeatureCollection with the final path as a
// LineString and an evenly strided sample of visited nodes as a MultiPoint.
// Positions are [lon, lat] per RFC 7946. Runs without a path (cancelled or
// unreachable) carry only the visited feature, since a LineString needs at
// least two positions.
func WriteGeoJSON(w io.Writer, g *graph.Graph, state *progress.RunState) error {
	var features []geoJSONFeature

	if len(state.FinalPath) >= 2 {
		path, err := coords(g, state.FinalPath)
		if err != nil {
			return err
		}

		features = append(features, geoJSONFeature{
			Type: "Feature",
			Properties: map[string]any{
				"kind":           "final_path",
				"total_cost":     state.Stats.TotalCost,
				"total_distance": state.Stats.TotalDistance,
			},
			Geometry: geoJSONGeometry{Type: "LineString", Coordinates: path},
		})
	}

	visited, err := coords(g, sampleIDs(state.Visited, MaxVisitedSample))
	if err != nil {
		return err
	}

	features = append(features, geoJSONFeature{
		Type: "Feature",
		Properties: map[string]any{
			"kind":    "visited_sample",
			"visited": len(state.Visited),
		},
		Geometry: geoJSONGeometry{Type: "MultiPoint", Coordinates: visited},
	})

	return json.NewEncoder(w).Encode(geoJSONCollection{
		Type:     "FeatureCollection",
		Features: features,
	})
}

func coords(g *graph.Graph, ids []int64) ([][2]float64, error) {
	out := make([][2]float64, 0, len(ids))

	for _, id := range ids {
		idx, ok := g.NodeIndex(id)
		if !ok {
			return nil, fmt.Errorf("export: node %d not in graph", id)
		}

		pt := g.Point(idx)
		out = append(out, [2]float64{pt.X, pt.Y})
	}

	return out, nil
}

// sampleIDs returns at most max ids, evenly strided.
func sampleIDs(ids []int64, max int) []int64 {
	if max <= 0 || len(ids) <= max {
		return ids
	}

	step := (len(ids) + max - 1) / max

	out := make([]int64, 0, (len(ids)+step-1)/step)
	for i := 0; i < len(ids); i += step {
		out = append(out, ids[i])
	}

	return out
}
