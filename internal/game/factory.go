package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
)

func basicRay(length float64) physics.Vec2 {
	return physics.NewVec2(length, length)
}

// SizeOfMapItem returns the bounding box of a freshly created item.
// Borders are sized by their caller and panic here like unknown kinds.
func SizeOfMapItem(kind ItemKind, length float64) physics.Vec2 {
	switch kind {
	case KindBall, KindAbsorber, KindTriangle, KindCircle, KindSquare, KindPipe, KindPipeTurned:
		return physics.NewVec2(length, length)
	case KindBaffleAlpha, KindBaffleBeta:
		return physics.NewVec2(length*2, length)
	}
	panic(fmt.Errorf("%w: no size for %q", ErrUnknownItemKind, kind))
}

// CreateMapItem builds an item of the given kind centered at center, one
// cell of the given length wide (two for baffles).
func CreateMapItem(kind ItemKind, center physics.Vec2, length float64) MapItem {
	item := MapItem{
		ID:     uuid.New(),
		Kind:   kind,
		Center: center,
		Size:   SizeOfMapItem(kind, length),
		Status: StatusNormal,
	}
	switch kind {
	case KindBall:
		item.Collider = physics.NewCircle(center, length/2)
		item.MassPoint = physics.MassPoint{P: center, M: 1}
	case KindAbsorber, KindSquare:
		item.Collider = physics.Square(center, basicRay(length/2))
		item.Scale = 1
	case KindTriangle:
		item.Collider = physics.IsoscelesRightTriangle(center, basicRay(length/2))
		item.Scale = 1
	case KindCircle:
		item.Collider = physics.NewCircle(center, length/2)
		item.Scale = 1
	case KindPipe, KindPipeTurned:
		item.Collider = physics.Square(center, basicRay(length/2))
	case KindBaffleAlpha, KindBaffleBeta:
		item.Collider = physics.Parallelogram(center, physics.NewVec2(length*2, 0), physics.NewVec2(0, length/4))
	default:
		panic(fmt.Errorf("%w: %q", ErrUnknownItemKind, kind))
	}
	item.Rotation = RotationUp
	return item
}

// NewBorder builds an axis-aligned wall of the given size.
func NewBorder(center, size physics.Vec2) MapItem {
	return MapItem{
		ID:       uuid.New(),
		Kind:     KindBorder,
		Center:   center,
		Size:     size,
		Collider: physics.Parallelogram(center, physics.NewVec2(size.X, 0), physics.NewVec2(0, size.Y)),
	}
}

// BoardBorders returns the four walls just outside the grid.
func BoardBorders(g Grid) []MapItem {
	w, h, l := g.Width(), g.Height(), g.Length
	return []MapItem{
		NewBorder(physics.NewVec2(w/2, -l/2), physics.NewVec2(w+2*l, l)),
		NewBorder(physics.NewVec2(w/2, h+l/2), physics.NewVec2(w+2*l, l)),
		NewBorder(physics.NewVec2(-l/2, h/2), physics.NewVec2(l, h)),
		NewBorder(physics.NewVec2(w+l/2, h/2), physics.NewVec2(l, h)),
	}
}
