package game

import "github.com/playmatatu/gizmoball/internal/physics"

// Board and pipe constants. The board is a square grid of cells; item lengths
// are multiples of GridLength.
const (
	GridLength     = 36.0
	GridXCellCount = 20
	GridYCellCount = 20

	// PipeEntryAcceptProjection is the largest lateral offset, measured from
	// the middle of an outlet edge, at which a ball is let into a pipe.
	PipeEntryAcceptProjection = 10.0
	// PipeTurnAcceptProjection is how close to the center of a turned pipe
	// a ball has to be before it is redirected to the other outlet.
	PipeTurnAcceptProjection = 5.0
)

// Grid describes the play field.
type Grid struct {
	Length float64 `json:"length" yaml:"length"`
	XCells int     `json:"x_cells" yaml:"x_cells"`
	YCells int     `json:"y_cells" yaml:"y_cells"`
}

func DefaultGrid() Grid {
	return Grid{Length: GridLength, XCells: GridXCellCount, YCells: GridYCellCount}
}

// Width and Height are in world units.
func (g Grid) Width() float64  { return g.Length * float64(g.XCells) }
func (g Grid) Height() float64 { return g.Length * float64(g.YCells) }

// CellCenter returns the center of cell (x, y), counted from the top left.
func (g Grid) CellCenter(x, y int) physics.Vec2 {
	return physics.NewVec2((float64(x)+0.5)*g.Length, (float64(y)+0.5)*g.Length)
}

// Contains reports whether the item's bounding box lies inside the field.
func (g Grid) Contains(item MapItem) bool {
	pos := GetPosition(item.Center, item.Size)
	end := pos.Plus(item.Size)
	return pos.X >= 0 && pos.Y >= 0 && end.X <= g.Width() && end.Y <= g.Height()
}
