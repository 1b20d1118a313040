// Package render draws live route search progress to a terminal.
//
// A Renderer consumes progress.RunState snapshots as folded by a
// progress.Reducer; it knows nothing about the search itself. TermRenderer
// rasterizes the graph's bounding box onto a braille-dot canvas and colors
// the visited cloud, the current frontier, the best known path, and the
// final path. NullRenderer discards frames for headless runs.
//
// Renderers are not safe for concurrent use. Call them from the loop that
// folds events into the reducer, gated by the reducer's render throttle.
package render
