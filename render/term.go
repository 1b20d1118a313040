package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/hupe1980/pathgo/geo"
	"github.com/hupe1980/pathgo/graph"
	"github.com/hupe1980/pathgo/progress"
)

// ANSI escape codes for terminal control.
const (
	escClearScreen = "\033[2J"
	escMoveHome    = "\033[H"
	escHideCursor  = "\033[?25l"
	escShowCursor  = "\033[?25h"
	escBold        = "\033[1m"
	escDim         = "\033[2m"
	escReset       = "\033[0m"
	escCyan        = "\033[36m"
	escYellow      = "\033[33m"
	escGreen       = "\033[32m"
	escMagenta     = "\033[35m"
)

// Fallback dimensions when the output is not a terminal.
const (
	fallbackCols = 80
	fallbackRows = 24
)

// Terminal rows reserved around the canvas for the header and footer.
const (
	headerRows = 2
	footerRows = 2
)

// TermRenderer draws run state onto an ANSI terminal as a braille-dot map
// of the graph's bounding box. The first frame clears the screen; later
// frames redraw in place.
type TermRenderer struct {
	out io.Writer
	g   *graph.Graph

	cols, rows int
	title      string

	start, goal   int64
	markEndpoints bool

	min, span geo.Point

	frames int
}

// TermRendererOption configures a TermRenderer.
type TermRendererOption func(*TermRenderer)

// WithSize fixes the canvas size in terminal cells instead of probing the
// output for its dimensions.
func WithSize(cols, rows int) TermRendererOption {
	return func(r *TermRenderer) {
		r.cols = cols
		r.rows = rows
	}
}

// WithTitle sets the header title, typically the place name.
func WithTitle(title string) TermRendererOption {
	return func(r *TermRenderer) {
		r.title = title
	}
}

// WithEndpoints marks the start and goal nodes on the map.
func WithEndpoints(start, goal int64) TermRendererOption {
	return func(r *TermRenderer) {
		r.start = start
		r.goal = goal
		r.markEndpoints = true
	}
}

// NewTermRenderer creates a renderer for the given graph. Unless WithSize
// is given, the canvas fills the terminal behind out, falling back to
// 80x24 when out is not a terminal.
func NewTermRenderer(out io.Writer, g *graph.Graph, optFns ...TermRendererOption) *TermRenderer {
	r := &TermRenderer{out: out, g: g}

	for _, fn := range optFns {
		fn(r)
	}

	if r.cols <= 0 || r.rows <= 0 {
		cols, rows := outputSize(out)
		r.cols = cols
		r.rows = rows - headerRows - footerRows
	}

	if r.cols < 10 {
		r.cols = 10
	}

	if r.rows < 4 {
		r.rows = 4
	}

	min, max := g.BBox()
	r.min = min
	r.span = geo.Point{X: max.X - min.X, Y: max.Y - min.Y}

	return r
}

// PublishFrame implements Renderer. The whole frame is assembled off
// screen and written in one call to avoid flicker.
func (r *TermRenderer) PublishFrame(state *progress.RunState) {
	c := newCanvas(r.cols, r.rows)

	r.plotNodes(c, state.Visited, layerVisited)
	r.plotNodes(c, state.Frontier, layerFrontier)
	r.plotPath(c, state.BestPath, layerBestPath)
	r.plotPath(c, state.FinalPath, layerFinalPath)

	if r.markEndpoints {
		r.plotNodes(c, []int64{r.start, r.goal}, layerEndpoint)
	}

	var sb strings.Builder

	if r.frames == 0 {
		sb.WriteString(escHideCursor)
		sb.WriteString(escClearScreen)
	}

	sb.WriteString(escMoveHome)

	r.writeHeader(&sb, state)
	c.render(&sb)
	r.writeFooter(&sb, state)

	fmt.Fprint(r.out, sb.String())
	r.frames++
}

// Close restores the cursor. The last frame stays on screen.
func (r *TermRenderer) Close() error {
	if r.frames == 0 {
		return nil
	}

	_, err := io.WriteString(r.out, escShowCursor+"\r\n")

	return err
}

func (r *TermRenderer) plotNodes(c *canvas, ids []int64, layer uint8) {
	for _, id := range ids {
		idx, ok := r.g.NodeIndex(id)
		if !ok {
			continue
		}

		x, y := r.project(c, idx)
		c.plot(x, y, layer)
	}
}

func (r *TermRenderer) plotPath(c *canvas, ids []int64, layer uint8) {
	px, py := -1, -1

	for _, id := range ids {
		idx, ok := r.g.NodeIndex(id)
		if !ok {
			px, py = -1, -1
			continue
		}

		x, y := r.project(c, idx)
		if px >= 0 {
			c.line(px, py, x, y, layer)
		} else {
			c.plot(x, y, layer)
		}

		px, py = x, y
	}
}

// project maps a node onto dot coordinates. North is up, so the y axis
// flips. A zero-extent bounding box collapses onto the canvas center.
func (r *TermRenderer) project(c *canvas, idx uint32) (x, y int) {
	pt := r.g.Point(idx)

	fx, fy := 0.5, 0.5
	if r.span.X > 0 {
		fx = (pt.X - r.min.X) / r.span.X
	}

	if r.span.Y > 0 {
		fy = (pt.Y - r.min.Y) / r.span.Y
	}

	x = int(fx * float64(c.dotWidth()-1))
	y = int((1 - fy) * float64(c.dotHeight()-1))

	return x, y
}

func (r *TermRenderer) writeHeader(sb *strings.Builder, state *progress.RunState) {
	title := r.title
	if title == "" {
		title = "route search"
	}

	fmt.Fprintf(sb, "%s%s%s  %5.1f%%\r\n", escBold, title, escReset, state.Percent)
	fmt.Fprintf(sb, "%svisited %d  frontier %d  best path %d%s\r\n",
		escDim, len(state.Visited), len(state.Frontier), len(state.BestPath), escReset)
}

func (r *TermRenderer) writeFooter(sb *strings.Builder, state *progress.RunState) {
	if !state.Completed {
		fmt.Fprintf(sb, "%s⣿ visited  %s⣿ frontier  %s⣿ best  %s⣿ final%s\r\n",
			escDim, escCyan, escYellow, escGreen, escReset)

		return
	}

	if len(state.FinalPath) > 0 {
		fmt.Fprintf(sb, "%sdone%s  cost %.2f  %d nodes  expanded %d  %s\r\n",
			escGreen, escReset, state.Stats.TotalCost, state.Stats.PathNodes,
			state.Stats.Expanded, state.Stats.Runtime.Round(time.Millisecond))

		return
	}

	fmt.Fprintf(sb, "%sno route%s  expanded %d  %s\r\n",
		escYellow, escReset, state.Stats.Expanded, state.Stats.Runtime.Round(time.Millisecond))
}

func outputSize(out io.Writer) (cols, rows int) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallbackCols, fallbackRows
	}

	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return fallbackCols, fallbackRows
	}

	return cols, rows
}
