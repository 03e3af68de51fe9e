//go:build ebiten

package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
)

var (
	background = color.RGBA{R: 24, G: 24, B: 32, A: 255}
	edgeColor  = color.RGBA{R: 90, G: 90, B: 110, A: 255}
)

// Game draws one puzzle engine: the lattice on the left, its decoding graph
// on the right and the status prompt below.
type Game struct {
	engine  *engine.PuzzleEngine
	adapter *render.Adapter
	layout  layout
	face    font.Face

	clusters bool
	original bool

	state *engine.PuzzleState
	view  *render.GraphView
}

// NewGame wraps an engine for display
func NewGame(e *engine.PuzzleEngine, adapter *render.Adapter) *Game {
	g := &Game{
		engine:  e,
		adapter: adapter,
		layout:  layout{size: e.GetConfig().L},
		face:    basicfont.Face7x13,
	}
	g.refresh()
	return g
}

// refresh re-reads the engine state and recomputes the graph picture
func (g *Game) refresh() {
	g.state = g.engine.GetState()

	g.view, g.clusters = renderView(g.adapter, g.state, g.engine.GraphSnapshot(g.original), g.clusters, g.view)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	changed := true
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		pos, ok := g.layout.cellAt(ebiten.CursorPosition())
		if !ok {
			changed = false
			break
		}
		g.engine.Press(pos)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.engine.Advance()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.engine.NewEpisode()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.clusters = !g.clusters
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.original = !g.original
	default:
		changed = false
	}

	if changed {
		g.refresh()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.drawBoard(screen)
	g.drawGraph(screen)
	g.drawStatus(screen)
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	selected := map[engine.Position]bool{}
	for _, p := range g.state.Selection {
		selected[p] = true
	}

	for y, row := range g.state.Display.Tiles {
		for x, tile := range row {
			tx, ty, side := g.layout.tileRect(x, y)
			vector.DrawFilledRect(screen, tx, ty, side, side, tileColor(tile.Color), false)
			if selected[engine.Position{X: x, Y: y}] {
				vector.StrokeRect(screen, tx+1, ty+1, side-2, side-2, 3, colornames.White, false)
			}
			if tile.Label != "" {
				bounds := text.BoundString(g.face, tile.Label)
				lx := int(tx+side/2) - bounds.Dx()/2
				ly := int(ty+side/2) + bounds.Dy()/2
				text.Draw(screen, tile.Label, g.face, lx, ly, colornames.White)
			}
		}
	}
}

func (g *Game) drawGraph(screen *ebiten.Image) {
	if g.view == nil {
		return
	}

	for _, edge := range g.view.Edges {
		ax, ay := g.layout.graphPoint(g.view.Nodes[edge.A].Position)
		bx, by := g.layout.graphPoint(g.view.Nodes[edge.B].Position)
		vector.StrokeLine(screen, ax, ay, bx, by, 1, edgeColor, true)
	}

	r := g.layout.nodeRadius()
	for _, node := range g.view.Nodes {
		cx, cy := g.layout.graphPoint(node.Position)
		vector.DrawFilledCircle(screen, cx, cy, r, tileColor(node.Color), true)
		if node.Label != "" {
			text.Draw(screen, node.Label, g.face, int(cx)-3, int(cy)+4, colornames.Black)
		}
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	y := g.layout.boardWidth() + 4
	ebitenutil.DebugPrintAt(screen, g.state.Display.Status, 8, y)

	mode := "live"
	if g.original {
		mode = "original"
	}
	hint := fmt.Sprintf("episode %d  charge %d  graph %s  [Enter] advance [N] new [C] clusters [O] original",
		g.state.Episode, g.state.RemainingCharge, mode)
	ebitenutil.DebugPrintAt(screen, hint, 8, y+16)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.layout.windowSize()
}
