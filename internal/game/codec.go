package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
)

var (
	// ErrMalformedLayout means the data is not a JSON array.
	ErrMalformedLayout = errors.New("invalid json")
	// ErrSchemaMismatch means an element of the array is not a map item.
	ErrSchemaMismatch = errors.New("invalid format")
)

type wireVec struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (w *wireVec) vec() (physics.Vec2, error) {
	if w == nil || w.X == nil || w.Y == nil {
		return physics.Zero, errors.New("vector needs x and y")
	}
	return physics.NewVec2(*w.X, *w.Y), nil
}

type wireCollider struct {
	Center   *wireVec  `json:"center"`
	Radius   *float64  `json:"radius"`
	Vertexes []wireVec `json:"vertexes"`
}

type wireMassPoint struct {
	P *wireVec `json:"p"`
	V *wireVec `json:"v"`
	A *wireVec `json:"a"`
	M *float64 `json:"m"`
}

type wireItem struct {
	ID        *uuid.UUID     `json:"id,omitempty"`
	Name      string         `json:"name"`
	Center    *wireVec       `json:"center"`
	Size      *wireVec       `json:"size"`
	Status    ItemStatus     `json:"status"`
	Collider  *wireCollider  `json:"collider"`
	Rotation  *int           `json:"rotation,omitempty"`
	Scale     *int           `json:"scale,omitempty"`
	MassPoint *wireMassPoint `json:"massPoint,omitempty"`
}

// colliderShape is the collider a kind must carry: 0 for a circle, otherwise
// the polygon vertex count.
func colliderShape(kind ItemKind) int {
	switch kind {
	case KindBall, KindCircle:
		return 0
	case KindTriangle:
		return 3
	case KindBorder, KindAbsorber, KindSquare, KindPipe, KindPipeTurned, KindBaffleAlpha, KindBaffleBeta:
		return 4
	}
	panic(fmt.Errorf("%w: %q", ErrUnknownItemKind, kind))
}

func (w *wireCollider) collider(shape int) (physics.Collider, error) {
	if w == nil {
		return nil, errors.New("missing collider")
	}
	center, err := w.Center.vec()
	if err != nil {
		return nil, fmt.Errorf("collider center: %w", err)
	}
	if shape == 0 {
		if w.Radius == nil || *w.Radius <= 0 {
			return nil, errors.New("circle collider needs a positive radius")
		}
		return physics.NewCircle(center, *w.Radius), nil
	}
	if len(w.Vertexes) != shape {
		return nil, fmt.Errorf("collider needs %d vertexes, got %d", shape, len(w.Vertexes))
	}
	vs := make([]physics.Vec2, len(w.Vertexes))
	for i := range w.Vertexes {
		if vs[i], err = w.Vertexes[i].vec(); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	return physics.NewPolygon(center, vs...), nil
}

func (w *wireMassPoint) massPoint() (physics.MassPoint, error) {
	if w == nil || w.M == nil {
		return physics.MassPoint{}, errors.New("ball needs a mass point")
	}
	if *w.M <= 0 {
		return physics.MassPoint{}, fmt.Errorf("ball mass must be positive, got %v", *w.M)
	}
	mp := physics.MassPoint{M: *w.M}
	var err error
	if mp.P, err = w.P.vec(); err != nil {
		return mp, fmt.Errorf("mass point p: %w", err)
	}
	if mp.V, err = w.V.vec(); err != nil {
		return mp, fmt.Errorf("mass point v: %w", err)
	}
	if mp.A, err = w.A.vec(); err != nil {
		return mp, fmt.Errorf("mass point a: %w", err)
	}
	return mp, nil
}

// UnmarshalJSON checks the item against the shape its kind requires.
func (it *MapItem) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := ParseItemKind(w.Name)
	if err != nil {
		return err
	}
	item := MapItem{Kind: kind, Status: w.Status}
	if w.ID != nil {
		item.ID = *w.ID
	} else {
		item.ID = uuid.New()
	}
	if item.Center, err = w.Center.vec(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if item.Size, err = w.Size.vec(); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	if item.Collider, err = w.Collider.collider(colliderShape(kind)); err != nil {
		return err
	}
	if item.CanRotate() {
		if w.Rotation == nil || !Rotation(*w.Rotation).Valid() {
			return fmt.Errorf("%s needs a rotation in 0..3", kind)
		}
		item.Rotation = Rotation(*w.Rotation)
	}
	if item.CanZoom() {
		if w.Scale == nil || *w.Scale < 1 {
			return fmt.Errorf("%s needs a positive scale", kind)
		}
		item.Scale = *w.Scale
	}
	if item.IsBall() {
		if item.MassPoint, err = w.MassPoint.massPoint(); err != nil {
			return err
		}
	}
	*it = item
	return nil
}

func vecPtr(v physics.Vec2) *wireVec {
	return &wireVec{X: &v.X, Y: &v.Y}
}

// MarshalJSON writes only the fields the kind carries.
func (it MapItem) MarshalJSON() ([]byte, error) {
	id := it.ID
	w := wireItem{
		ID:     &id,
		Name:   string(it.Kind),
		Center: vecPtr(it.Center),
		Size:   vecPtr(it.Size),
		Status: it.Status,
	}
	switch c := it.Collider.(type) {
	case physics.Circle:
		r := c.Radius
		w.Collider = &wireCollider{Center: vecPtr(c.Center), Radius: &r}
	case physics.Polygon:
		w.Collider = &wireCollider{Center: vecPtr(c.Center), Vertexes: make([]wireVec, len(c.Vertexes))}
		for i, v := range c.Vertexes {
			w.Collider.Vertexes[i] = *vecPtr(v)
		}
	default:
		return nil, fmt.Errorf("%w: %T", physics.ErrUnknownCollider, c)
	}
	if it.CanRotate() {
		r := int(it.Rotation)
		w.Rotation = &r
	}
	if it.CanZoom() {
		s := it.Scale
		w.Scale = &s
	}
	if it.IsBall() {
		mp := it.MassPoint
		w.MassPoint = &wireMassPoint{P: vecPtr(mp.P), V: vecPtr(mp.V), A: vecPtr(mp.A), M: &mp.M}
	}
	return json.Marshal(w)
}

// EncodeLayout serializes items as a JSON array.
func EncodeLayout(items []MapItem) ([]byte, error) {
	if items == nil {
		items = []MapItem{}
	}
	return json.Marshal(items)
}

// DecodeLayout parses a JSON array of items. It returns ErrMalformedLayout
// when data is not a JSON array and ErrSchemaMismatch when any element is not
// a valid item.
func DecodeLayout(data []byte) ([]MapItem, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}
	items := make([]MapItem, len(raw))
	for i, r := range raw {
		if err := items[i].UnmarshalJSON(r); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrSchemaMismatch, i, err)
		}
	}
	return items, nil
}
