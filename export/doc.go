// Package export renders finished runs into artifact formats and writes
// them to an artifact.Store.
//
// # Formats
//
//   - report.json: RunReport summary (route, stats, pacing)
//   - path.geojson: final path as a LineString plus a sample of visited
//     nodes as a MultiPoint
//   - route.dot: Graphviz digraph of the final-path subgraph
//   - replay.jsonl.lz4: the ordered event stream of the run, lz4-framed,
//     for later re-rendering
//
// The report, GeoJSON, and DOT artifacts derive from a progress.RunState
// snapshot and are written after the run via Saver. The replay log is
// streamed while the run is still polling: feed each event to a
// ReplayWriter opened over CreateArtifact.
//
// Exporting is the consumer's job. The engine only signals intent through
// Complete and SaveRequest events; nothing in this package touches a run.
package export
