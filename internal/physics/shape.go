package physics

// Collider is either a Circle or a Polygon. The set is closed: only this
// package can add variants.
type Collider interface {
	// Centroid is the reference point the shape is built around.
	Centroid() Vec2
	// MoveTo returns a copy of the shape centered at c.
	MoveTo(c Vec2) Collider
	isCollider()
}

// ColliderKind names a Collider variant.
type ColliderKind string

const (
	KindCircle  ColliderKind = "circle"
	KindPolygon ColliderKind = "polygon"
)

// Circle is a disc of the given radius.
type Circle struct {
	Center Vec2    `json:"center" msgpack:"center"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

func NewCircle(center Vec2, radius float64) Circle {
	return Circle{Center: center, Radius: radius}
}

func (c Circle) Centroid() Vec2 { return c.Center }

func (c Circle) MoveTo(center Vec2) Collider {
	c.Center = center
	return c
}

func (Circle) isCollider() {}

// Polygon is a convex polygon. Vertexes are offsets from Center, counter-clockwise
// in a right-handed system.
type Polygon struct {
	Center   Vec2   `json:"center" msgpack:"center"`
	Vertexes []Vec2 `json:"vertexes" msgpack:"vertexes"`
}

func NewPolygon(center Vec2, vertexes ...Vec2) Polygon {
	vs := make([]Vec2, len(vertexes))
	copy(vs, vertexes)
	return Polygon{Center: center, Vertexes: vs}
}

func (p Polygon) Centroid() Vec2 { return p.Center }

func (p Polygon) MoveTo(center Vec2) Collider {
	return NewPolygon(center, p.Vertexes...)
}

func (Polygon) isCollider() {}

// AbsoluteVertexes returns the vertexes in world coordinates.
func (p Polygon) AbsoluteVertexes() []Vec2 {
	out := make([]Vec2, len(p.Vertexes))
	for i, v := range p.Vertexes {
		out[i] = p.Center.Plus(v)
	}
	return out
}

// Map returns a copy of p with f applied to every relative vertex.
func (p Polygon) Map(f func(Vec2) Vec2) Polygon {
	vs := make([]Vec2, len(p.Vertexes))
	for i, v := range p.Vertexes {
		vs[i] = f(v)
	}
	return Polygon{Center: p.Center, Vertexes: vs}
}

func (p Polygon) IsTriangle() bool { return len(p.Vertexes) == 3 }

func (p Polygon) IsQuadrilateral() bool { return len(p.Vertexes) == 4 }

// Square builds a square whose first vertex sits at center+ray.
func Square(center, ray Vec2) Polygon {
	r2 := ray.Rotate()
	r3 := r2.Rotate()
	return NewPolygon(center, ray, r2, r3, r3.Rotate())
}

// IsoscelesRightTriangle builds the triangle with its right angle at center+rotate(ray).
func IsoscelesRightTriangle(center, ray Vec2) Polygon {
	r2 := ray.Rotate()
	return NewPolygon(center, ray, r2, r2.Rotate())
}

// Parallelogram builds the parallelogram spanned by a and b around center.
func Parallelogram(center, a, b Vec2) Polygon {
	first := a.Plus(b).Times(0.5)
	second := first.Minus(a)
	third := second.Minus(b)
	return NewPolygon(center, first, second, third, third.Plus(a))
}

func IsCircle(c Collider) bool {
	_, ok := c.(Circle)
	return ok
}

func IsPolygon(c Collider) bool {
	_, ok := c.(Polygon)
	return ok
}

// ColliderKindOf names c's variant, or "" for nil.
func ColliderKindOf(c Collider) ColliderKind {
	switch c.(type) {
	case Circle:
		return KindCircle
	case Polygon:
		return KindPolygon
	}
	return ""
}
