package game

import "github.com/playmatatu/gizmoball/internal/physics"

type placement struct {
	kind ItemKind
	x, y int
	turns int
}

var demoPlacements = []placement{
	{KindBall, 3, 1, 0},
	{KindBall, 15, 2, 0},
	{KindTriangle, 3, 6, 1},
	{KindCircle, 9, 5, 0},
	{KindSquare, 15, 7, 0},
	{KindPipe, 6, 10, 0},
	{KindPipeTurned, 12, 11, 2},
	{KindTriangle, 17, 12, 0},
	{KindBaffleAlpha, 4, 16, 0},
	{KindBaffleBeta, 13, 16, 0},
}

// DemoLayout is a small playable board with one of every kind and an
// absorber floor.
func DemoLayout(g Grid) []MapItem {
	items := make([]MapItem, 0, len(demoPlacements)+g.XCells)
	for _, p := range demoPlacements {
		it := CreateMapItem(p.kind, g.CellCenter(p.x, p.y), g.Length)
		if it.IsBaffle() {
			it = MoveItem(it, it.Center.Plus(physics.NewVec2(g.Length/2, 0)))
		}
		for range p.turns {
			it = RotateItem(it)
		}
		items = append(items, it)
	}
	for x := range g.XCells {
		items = append(items, CreateMapItem(KindAbsorber, g.CellCenter(x, g.YCells-1), g.Length))
	}
	return items
}
