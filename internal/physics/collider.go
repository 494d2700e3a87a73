package physics

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownCollider     = errors.New("physics: unknown collider")
	ErrUnknownColliderPair = errors.New("physics: unknown collider pair")
)

// projectionRange is the [min, max] shadow of a shape on an axis.
type projectionRange [2]float64

// hasOverlap is strict: ranges that only touch do not overlap.
func hasOverlap(p1, p2 projectionRange) bool {
	return p1[1] > p2[0] && p2[1] > p1[0]
}

func projectVertexes(vs []Vec2, axis Vec2) projectionRange {
	r := projectionRange{math.Inf(1), math.Inf(-1)}
	for _, v := range vs {
		s := v.Projection(axis)
		r[0] = math.Min(r[0], s)
		r[1] = math.Max(r[1], s)
	}
	return r
}

func projectCircle(c Circle, axis Vec2) projectionRange {
	s := c.Center.Projection(axis)
	return projectionRange{s - c.Radius, s + c.Radius}
}

// Axes returns the outward normal of every edge v[i] -> v[i+1].
func Axes(vs []Vec2) []Vec2 {
	axes := make([]Vec2, len(vs))
	for i, v := range vs {
		axes[i] = v.Minus(vs[Next(len(vs), i)]).Rotate()
	}
	return axes
}

// Next and Prev index a ring of n elements.
func Next(n, i int) int { return (i + 1) % n }

func Prev(n, i int) int { return (i - 1 + n) % n }

// ClosestVertex returns the vertex nearest to point, its distance and its index.
// Ties keep the earliest vertex.
func ClosestVertex(vs []Vec2, point Vec2) (Vec2, float64, int) {
	best, index := math.Inf(1), -1
	for i, v := range vs {
		if d := v.Distance(point); d < best {
			best, index = d, i
		}
	}
	if index < 0 {
		return Zero, best, index
	}
	return vs[index], best, index
}

func PolygonCollidesWithPolygon(p, q Polygon) bool {
	pv, qv := p.AbsoluteVertexes(), q.AbsoluteVertexes()
	for _, axes := range [][]Vec2{Axes(p.Vertexes), Axes(q.Vertexes)} {
		for _, axis := range axes {
			if axis.IsZero() {
				continue
			}
			if !hasOverlap(projectVertexes(pv, axis), projectVertexes(qv, axis)) {
				return false
			}
		}
	}
	return true
}

func PolygonCollidesWithCircle(p Polygon, c Circle) bool {
	vs := p.AbsoluteVertexes()
	axes := Axes(p.Vertexes)
	closest, _, _ := ClosestVertex(vs, c.Center)
	if extra := closest.Minus(c.Center); !extra.IsZero() {
		axes = append(axes, extra)
	}
	for _, axis := range axes {
		if axis.IsZero() {
			continue
		}
		if !hasOverlap(projectCircle(c, axis), projectVertexes(vs, axis)) {
			return false
		}
	}
	return true
}

// CircleCollidesWithCircle is strict: touching circles do not collide.
func CircleCollidesWithCircle(a, b Circle) bool {
	return a.Center.Distance(b.Center) < a.Radius+b.Radius
}

// Collides dispatches on the concrete pair. Unknown pairs are a programming
// error and panic.
func Collides(a, b Collider) bool {
	switch x := a.(type) {
	case Circle:
		switch y := b.(type) {
		case Circle:
			return CircleCollidesWithCircle(x, y)
		case Polygon:
			return PolygonCollidesWithCircle(y, x)
		}
	case Polygon:
		switch y := b.(type) {
		case Circle:
			return PolygonCollidesWithCircle(x, y)
		case Polygon:
			return PolygonCollidesWithPolygon(x, y)
		}
	}
	panic(fmt.Errorf("%w: %q with %q", ErrUnknownColliderPair, ColliderKindOf(a), ColliderKindOf(b)))
}

// HasAnyCollision reports whether any two colliders overlap.
func HasAnyCollision(cs []Collider) bool {
	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			if Collides(cs[i], cs[j]) {
				return true
			}
		}
	}
	return false
}
