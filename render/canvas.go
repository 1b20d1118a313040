package render

import "strings"

// A braille cell packs a 2x4 dot grid into one rune, so a canvas of w x h
// terminal cells rasterizes 2w x 4h points.
const (
	cellDotsX = 2
	cellDotsY = 4
)

// brailleBase is the blank braille pattern. Dot bits are ORed onto it.
const brailleBase = 0x2800

// brailleBits maps a dot position inside a cell to its bit in the braille
// pattern.
var brailleBits = [cellDotsY][cellDotsX]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Paint layers, lowest to highest. A cell keeps the highest layer that
// touched it, so a path stays visible on top of the visited cloud.
const (
	layerNone uint8 = iota
	layerVisited
	layerFrontier
	layerBestPath
	layerFinalPath
	layerEndpoint
)

var layerColors = [...]string{
	layerNone:      escReset,
	layerVisited:   escDim,
	layerFrontier:  escCyan,
	layerBestPath:  escYellow,
	layerFinalPath: escGreen,
	layerEndpoint:  escMagenta,
}

type canvas struct {
	w, h   int
	cells  []rune
	layers []uint8
}

func newCanvas(w, h int) *canvas {
	return &canvas{
		w:      w,
		h:      h,
		cells:  make([]rune, w*h),
		layers: make([]uint8, w*h),
	}
}

func (c *canvas) dotWidth() int  { return c.w * cellDotsX }
func (c *canvas) dotHeight() int { return c.h * cellDotsY }

// plot sets a single dot. Out-of-range dots are dropped.
func (c *canvas) plot(x, y int, layer uint8) {
	if x < 0 || y < 0 || x >= c.dotWidth() || y >= c.dotHeight() {
		return
	}

	idx := (y/cellDotsY)*c.w + x/cellDotsX
	c.cells[idx] |= brailleBits[y%cellDotsY][x%cellDotsX]

	if layer > c.layers[idx] {
		c.layers[idx] = layer
	}
}

// line plots a straight dot segment between two points.
func (c *canvas) line(x0, y0, x1, y1 int, layer uint8) {
	steps := abs(x1 - x0)
	if dy := abs(y1 - y0); dy > steps {
		steps = dy
	}

	if steps == 0 {
		c.plot(x0, y0, layer)
		return
	}

	for i := 0; i <= steps; i++ {
		c.plot(x0+(x1-x0)*i/steps, y0+(y1-y0)*i/steps, layer)
	}
}

// render writes the canvas row by row, coloring each cell by its highest
// layer. Blank cells print the empty braille pattern to keep columns
// aligned.
func (c *canvas) render(sb *strings.Builder) {
	for row := 0; row < c.h; row++ {
		last := ""

		for col := 0; col < c.w; col++ {
			idx := row*c.w + col

			if color := layerColors[c.layers[idx]]; color != last {
				sb.WriteString(color)
				last = color
			}

			sb.WriteRune(brailleBase + c.cells[idx])
		}

		sb.WriteString(escReset)
		sb.WriteString("\r\n")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
