package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
)

// ErrUnknownItemKind is the panic value for a kind outside the closed set.
var ErrUnknownItemKind = errors.New("game: unknown map item kind")

// ItemKind discriminates MapItem variants.
type ItemKind string

const (
	KindBall        ItemKind = "ball"
	KindBorder      ItemKind = "border"
	KindAbsorber    ItemKind = "absorber"
	KindTriangle    ItemKind = "triangle"
	KindCircle      ItemKind = "circle"
	KindSquare      ItemKind = "square"
	KindPipe        ItemKind = "pipe"
	KindPipeTurned  ItemKind = "pipe-turned"
	KindBaffleAlpha ItemKind = "baffle-alpha"
	KindBaffleBeta  ItemKind = "baffle-beta"
)

// ItemKinds lists every kind in palette order.
var ItemKinds = []ItemKind{
	KindBall, KindBorder, KindAbsorber, KindTriangle, KindCircle,
	KindSquare, KindPipe, KindPipeTurned, KindBaffleAlpha, KindBaffleBeta,
}

func ParseItemKind(s string) (ItemKind, error) {
	for _, k := range ItemKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownItemKind, s)
}

// Rotation is a quarter-turn orientation, cycling clockwise on screen.
type Rotation int

const (
	RotationUp Rotation = iota
	RotationRight
	RotationDown
	RotationLeft
)

func (r Rotation) Valid() bool { return r >= RotationUp && r <= RotationLeft }

func (r Rotation) Next() Rotation { return (r + 1) % 4 }

// Direction is the unit vector the rotation points to. +y is down.
func (r Rotation) Direction() physics.Vec2 {
	switch r {
	case RotationUp:
		return physics.YUnit.Negate()
	case RotationRight:
		return physics.XUnit
	case RotationDown:
		return physics.YUnit
	case RotationLeft:
		return physics.XUnit.Negate()
	}
	panic(fmt.Sprintf("game: invalid rotation %d", int(r)))
}

// ItemStatus is editor state only.
type ItemStatus int

const (
	StatusNormal ItemStatus = iota
	StatusSelected
)

// MapItem is a ball or an obstacle. Which of Rotation, Scale and MassPoint are
// meaningful depends on Kind; see CanRotate, CanZoom and IsBall.
// Items are values: operations return modified copies.
type MapItem struct {
	ID        uuid.UUID
	Kind      ItemKind
	Center    physics.Vec2
	Size      physics.Vec2
	Status    ItemStatus
	Collider  physics.Collider
	Rotation  Rotation
	Scale     int
	MassPoint physics.MassPoint
}

func (it MapItem) String() string {
	return fmt.Sprintf("%s(%s @ %.1f,%.1f)", it.Kind, it.ID.String()[:8], it.Center.X, it.Center.Y)
}

func (it MapItem) IsBall() bool { return it.Kind == KindBall }

func (it MapItem) IsBaffle() bool {
	return it.Kind == KindBaffleAlpha || it.Kind == KindBaffleBeta
}

func (it MapItem) IsPipe() bool {
	return it.Kind == KindPipe || it.Kind == KindPipeTurned
}

// CanRotate reports whether the kind carries a Rotation.
func (it MapItem) CanRotate() bool {
	switch it.Kind {
	case KindAbsorber, KindTriangle, KindCircle, KindSquare, KindPipe, KindPipeTurned:
		return true
	case KindBall, KindBorder, KindBaffleAlpha, KindBaffleBeta:
		return false
	}
	panic(fmt.Errorf("%w: %q", ErrUnknownItemKind, it.Kind))
}

// CanZoom reports whether the kind carries a Scale.
func (it MapItem) CanZoom() bool {
	switch it.Kind {
	case KindAbsorber, KindTriangle, KindCircle, KindSquare:
		return true
	case KindBall, KindBorder, KindPipe, KindPipeTurned, KindBaffleAlpha, KindBaffleBeta:
		return false
	}
	panic(fmt.Errorf("%w: %q", ErrUnknownItemKind, it.Kind))
}

// IsMovable reports whether the item can move during play.
func (it MapItem) IsMovable() bool {
	switch it.Kind {
	case KindBall, KindBaffleAlpha, KindBaffleBeta:
		return true
	case KindBorder, KindAbsorber, KindTriangle, KindCircle, KindSquare, KindPipe, KindPipeTurned:
		return false
	}
	panic(fmt.Errorf("%w: %q", ErrUnknownItemKind, it.Kind))
}

func (it MapItem) IsStatic() bool { return !it.IsMovable() }

// Radius of a ball's collider.
func (it MapItem) Radius() float64 {
	if c, ok := it.Collider.(physics.Circle); ok {
		return c.Radius
	}
	return 0
}

// withMassPoint returns the ball moved to follow mp.
func (it MapItem) withMassPoint(mp physics.MassPoint) MapItem {
	it.MassPoint = mp
	it.Center = mp.P
	it.Collider = it.Collider.MoveTo(mp.P)
	return it
}
