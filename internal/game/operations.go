package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
)

// RotateItem turns a rotatable item a quarter turn clockwise on screen.
func RotateItem(item MapItem) MapItem {
	if !item.CanRotate() {
		return item
	}
	if p, ok := item.Collider.(physics.Polygon); ok {
		item.Collider = p.Map(physics.Vec2.Rotate)
	}
	item.Rotation = item.Rotation.Next()
	return item
}

// ScaleReducer maps a current scale to the next one.
type ScaleReducer func(scale int) int

func ZoomIn(scale int) int { return scale + 1 }

func ZoomOut(scale int) int { return max(1, scale-1) }

// ZoomItem rescales a zoomable item, keeping its top-left corner in place.
func ZoomItem(item MapItem, reduce ScaleReducer) MapItem {
	if !item.CanZoom() {
		return item
	}
	from := float64(item.Scale)
	to := float64(reduce(item.Scale))
	zoom := func(v physics.Vec2) physics.Vec2 { return v.Times(to / from) }

	position := GetPosition(item.Center, item.Size)
	item.Scale = int(to)
	item.Size = zoom(item.Size)
	item.Center = GetCenter(position, item.Size)
	switch c := item.Collider.(type) {
	case physics.Circle:
		item.Collider = physics.NewCircle(item.Center, c.Radius*to/from)
	case physics.Polygon:
		scaled := c.Map(zoom)
		scaled.Center = item.Center
		item.Collider = scaled
	default:
		panic(fmt.Errorf("%w: %T", physics.ErrUnknownCollider, c))
	}
	return item
}

// MoveItem places the item at a new center. Balls take their mass point along.
func MoveItem(item MapItem, center physics.Vec2) MapItem {
	item.Center = center
	item.Collider = item.Collider.MoveTo(center)
	if item.IsBall() {
		item.MassPoint.P = center
	}
	return item
}

// GetPosition is the top-left corner of a box.
func GetPosition(center, size physics.Vec2) physics.Vec2 {
	return center.Minus(size.Times(0.5))
}

func GetCenter(position, size physics.Vec2) physics.Vec2 {
	return position.Plus(size.Times(0.5))
}

// SplitItems separates balls, baffles and static obstacles, keeping order.
func SplitItems(items []MapItem) (balls, baffles, statics []MapItem) {
	for _, it := range items {
		switch {
		case it.IsBall():
			balls = append(balls, it)
		case it.IsBaffle():
			baffles = append(baffles, it)
		default:
			statics = append(statics, it)
		}
	}
	return balls, baffles, statics
}

func Colliders(items []MapItem) []physics.Collider {
	cs := make([]physics.Collider, len(items))
	for i, it := range items {
		cs[i] = it.Collider
	}
	return cs
}

func findItem(items []MapItem, id uuid.UUID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
