package main

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/wricardo/decodoku/game/engine"
)

// Screen geometry in pixels
const (
	tileSize    = 48
	tileGap     = 2
	statusBar   = 40
	panelMargin = 24
)

var fallbackColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// layout places an L x L board on the left and the decoding graph panel on
// the right, both square, above a status bar
type layout struct {
	size int
}

func (l layout) boardWidth() int {
	return l.size * tileSize
}

// windowSize returns the logical screen dimensions
func (l layout) windowSize() (int, int) {
	return 2 * l.boardWidth(), l.boardWidth() + statusBar
}

// tileRect returns the top-left corner and side of the tile at (x, y)
func (l layout) tileRect(x, y int) (float32, float32, float32) {
	side := float32(tileSize - tileGap)
	return float32(x*tileSize + tileGap/2), float32(y*tileSize + tileGap/2), side
}

// cellAt maps a cursor position to a lattice cell
func (l layout) cellAt(mx, my int) (engine.Position, bool) {
	if mx < 0 || my < 0 || mx >= l.boardWidth() || my >= l.boardWidth() {
		return engine.Position{}, false
	}
	return engine.Position{X: mx / tileSize, Y: my / tileSize}, true
}

// graphPoint projects a decoding graph node position into the right panel.
// Graph x spans [-2, L-1] (L+2 slots) and y spans [-(L-1), 0], so row 0 of the lattice
// lands at the top like on the board.
func (l layout) graphPoint(p engine.Point) (float32, float32) {
	span := float64(l.size + 2)
	inner := float64(l.boardWidth() - 2*panelMargin)
	scale := inner / span

	x := float64(l.boardWidth()+panelMargin) + (p.X+2)*scale + scale/2
	y := float64(panelMargin) + (p.Y+float64(l.size-1))*scale + scale/2
	return float32(x), float32(y)
}

// nodeRadius is the circle size used for graph nodes
func (l layout) nodeRadius() float32 {
	r := float32(l.boardWidth()-2*panelMargin) / float32(4*(l.size+2))
	return max(r, 3)
}

// tileColor resolves an SVG color name or #rrggbb string for drawing
func tileColor(name string) color.RGBA {
	if strings.HasPrefix(name, "#") {
		c := color.RGBA{A: 255}
		if n, err := fmt.Sscanf(name, "#%02x%02x%02x", &c.R, &c.G, &c.B); err == nil && n == 3 && len(name) == 7 {
			return c
		}
		return fallbackColor
	}
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c
	}
	return fallbackColor
}
