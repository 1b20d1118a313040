package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/pathgo/artifact"
	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/progress"
)

// File names of the artifacts one run writes, relative to its run
// directory.
const (
	ReportFile  = "report.json"
	GeoJSONFile = "path.geojson"
	DOTFile     = "route.dot"
	ReplayFile  = "replay.jsonl.lz4"
)

// ArtifactName returns the store name of one artifact of a run.
func ArtifactName(runID, file string) string {
	return path.Join("runs", runID, file)
}

// Saver writes the artifact set of a finished run to a store.
type Saver struct {
	store artifact.Store
}

// NewSaver creates a saver on the given store.
func NewSaver(store artifact.Store) *Saver {
	return &Saver{store: store}
}

// Save writes the report, GeoJSON, and DOT artifacts and returns their
// names. The replay log is not written here: it streams during the run,
// through a ReplayWriter opened over CreateArtifact.
func (s *Saver) Save(ctx context.Context, g *graph.Graph, rep RunReport, state *progress.RunState) ([]string, error) {
	specs := []struct {
		file  string
		write func(io.Writer) error
	}{
		{ReportFile, func(w io.Writer) error { return WriteReport(w, rep) }},
		{GeoJSONFile, func(w io.Writer) error { return WriteGeoJSON(w, g, state) }},
		{DOTFile, func(w io.Writer) error { return WriteDOT(w, g, state, rep.Weight) }},
	}

	names := make([]string, 0, len(specs))

	for _, spec := range specs {
		name := ArtifactName(rep.RunID, spec.file)

		var buf bytes.Buffer
		if err := spec.write(&buf); err != nil {
			return names, fmt.Errorf("render %s: %w", name, err)
		}

		if err := s.store.Put(ctx, name, buf.Bytes()); err != nil {
			return names, fmt.Errorf("store %s: %w", name, err)
		}

		names = append(names, name)
	}

	return names, nil
}

// CreateArtifact opens a streaming write on the store. Stores without
// streaming support get an in-memory buffer that commits on Close.
func CreateArtifact(ctx context.Context, store artifact.Store, name string) (io.WriteCloser, error) {
	if sw, ok := store.(artifact.StreamWriter); ok {
		return sw.Create(ctx, name)
	}

	if err := artifact.CheckName(name); err != nil {
		return nil, err
	}

	return &bufferedWriter{ctx: ctx, store: store, name: name}, nil
}

type bufferedWriter struct {
	ctx   context.Context
	store artifact.Store
	name  string
	buf   bytes.Buffer
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *bufferedWriter) Close() error {
	return w.store.Put(w.ctx, w.name, w.buf.Bytes())
}
