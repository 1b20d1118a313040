package render

import "github.com/hupe1980/pathgo/progress"

// Renderer is a sink for run state snapshots.
type Renderer interface {
	// PublishFrame draws the given state. Implementations decide how much of
	// the state one frame shows.
	PublishFrame(state *progress.RunState)

	// Close releases the display. Publishing after Close is undefined.
	Close() error
}

// NullRenderer discards every frame. It is the headless stand-in for a
// terminal display.
type NullRenderer struct{}

// NewNullRenderer creates a new NullRenderer.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{}
}

// PublishFrame implements Renderer.
func (n *NullRenderer) PublishFrame(_ *progress.RunState) {}

// Close implements Renderer.
func (n *NullRenderer) Close() error { return nil }
