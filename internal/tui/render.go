package tui

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/physics"
)

var (
	frameStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	ballStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	baffleStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// glyphs draws each static kind.
var glyphs = map[game.ItemKind]struct {
	r     rune
	style tcell.Style
}{
	game.KindAbsorber:   {'#', tcell.StyleDefault.Foreground(tcell.ColorRed)},
	game.KindTriangle:   {'^', tcell.StyleDefault.Foreground(tcell.ColorBlue)},
	game.KindCircle:     {'O', tcell.StyleDefault.Foreground(tcell.ColorPurple)},
	game.KindSquare:     {'%', tcell.StyleDefault.Foreground(tcell.ColorTeal)},
	game.KindPipe:       {'|', tcell.StyleDefault.Foreground(tcell.ColorGreen)},
	game.KindPipeTurned: {'+', tcell.StyleDefault.Foreground(tcell.ColorGreen)},
}

// Viewport maps world coordinates onto the cells inside the frame.
type Viewport struct {
	Grid          game.Grid
	Width, Height int // cells, frame excluded
}

// Cell returns the terminal cell of world point p.
func (v Viewport) Cell(p physics.Vec2) (int, int) {
	x := int(math.Floor(p.X / v.Grid.Width() * float64(v.Width)))
	y := int(math.Floor(p.Y / v.Grid.Height() * float64(v.Height)))
	return 1 + min(max(x, 0), v.Width-1), 1 + min(max(y, 0), v.Height-1)
}

// Renderer draws boards onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	grid   game.Grid
}

func NewRenderer(screen tcell.Screen, grid game.Grid) *Renderer {
	return &Renderer{screen: screen, grid: grid}
}

func (r *Renderer) viewport() Viewport {
	w, h := r.screen.Size()
	// last row holds the status line
	return Viewport{Grid: r.grid, Width: max(w-2, 1), Height: max(h-3, 1)}
}

// Draw paints statics from the layout and the moving parts from snap.
func (r *Renderer) Draw(statics []game.MapItem, snap game.Snapshot, status string) {
	r.screen.Clear()
	v := r.viewport()
	r.frame(v)

	for _, it := range statics {
		g, ok := glyphs[it.Kind]
		if !ok {
			continue
		}
		r.fill(v, it.Center.Minus(it.Size.Times(0.5)), it.Center.Plus(it.Size.Times(0.5)), g.r, g.style)
	}
	for _, b := range snap.Baffles {
		lo, hi := bounds(b.Vertexes)
		r.fill(v, lo, hi, '=', baffleStyle)
	}
	for _, b := range snap.Balls {
		x, y := v.Cell(b.Center)
		r.screen.SetContent(x, y, 'o', nil, ballStyle)
	}

	for i, ch := range status {
		r.screen.SetContent(i, v.Height+2, ch, nil, statusStyle)
	}
	r.screen.Show()
}

func (r *Renderer) frame(v Viewport) {
	right, bottom := v.Width+1, v.Height+1
	for x := 1; x < right; x++ {
		r.screen.SetContent(x, 0, '-', nil, frameStyle)
		r.screen.SetContent(x, bottom, '-', nil, frameStyle)
	}
	for y := 1; y < bottom; y++ {
		r.screen.SetContent(0, y, '|', nil, frameStyle)
		r.screen.SetContent(right, y, '|', nil, frameStyle)
	}
	for _, c := range [][2]int{{0, 0}, {right, 0}, {0, bottom}, {right, bottom}} {
		r.screen.SetContent(c[0], c[1], '+', nil, frameStyle)
	}
}

// fill paints every cell whose center lies in [lo, hi), and at least one.
func (r *Renderer) fill(v Viewport, lo, hi physics.Vec2, ch rune, style tcell.Style) {
	x0, y0 := v.Cell(lo)
	x1, y1 := v.Cell(hi.Minus(physics.NewVec2(1e-9, 1e-9)))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

func bounds(vs []physics.Vec2) (lo, hi physics.Vec2) {
	if len(vs) == 0 {
		return
	}
	lo, hi = vs[0], vs[0]
	for _, p := range vs[1:] {
		lo = physics.NewVec2(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = physics.NewVec2(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}
	return lo, hi
}
