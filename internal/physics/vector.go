package physics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrZeroAxis is the panic value raised when an axis-dependent operation
// receives a zero-length axis.
var ErrZeroAxis = errors.New("physics: zero-length axis")

// ParallelTolerance bounds |sin θ| for two vectors to count as parallel.
const ParallelTolerance = 1e-6

// Vec2 is an immutable 2D vector in screen coordinates (+y points down).
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

var (
	Zero  = Vec2{}
	XUnit = Vec2{X: 1}
	YUnit = Vec2{Y: 1}
)

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) gl() mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Negate() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.gl().Dot(o.gl())
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Norm() float64 {
	return v.gl().Len()
}

func (v Vec2) Distance(o Vec2) float64 {
	return v.Minus(o).Norm()
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vec2) Equal(o Vec2) bool {
	return v.X == o.X && v.Y == o.Y
}

// Approx reports whether v and o differ by at most eps in each component.
func (v Vec2) Approx(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Rotate turns v by 90° counter-clockwise in a right-handed system.
// Applied to a polygon edge it yields the edge's outward normal.
func (v Vec2) Rotate() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// RotateBackward is the inverse of Rotate.
func (v Vec2) RotateBackward() Vec2 {
	return Vec2{X: v.Y, Y: -v.X}
}

func mustAxis(axis Vec2) float64 {
	n := axis.Norm()
	if n == 0 {
		panic(ErrZeroAxis)
	}
	return n
}

// Projection is the signed length of v along axis.
func (v Vec2) Projection(axis Vec2) float64 {
	return v.Dot(axis) / mustAxis(axis)
}

// ProjectionComponent is the vector component of v parallel to axis.
func (v Vec2) ProjectionComponent(axis Vec2) Vec2 {
	n := mustAxis(axis)
	return axis.Times(v.Dot(axis) / (n * n))
}

// Resize scales v to the given length, keeping its direction.
func (v Vec2) Resize(length float64) Vec2 {
	return v.Times(length / mustAxis(v))
}

func (v Vec2) Unit() Vec2 {
	return v.Resize(1)
}

// IsParallel reports whether v and o lie on the same line, either direction.
// Zero vectors are parallel to nothing.
func (v Vec2) IsParallel(o Vec2) bool {
	n := v.Norm() * o.Norm()
	if n == 0 {
		return false
	}
	return math.Abs(v.Cross(o)) <= ParallelTolerance*n
}

// IsSameDirection reports whether v and o are parallel and point the same way.
func (v Vec2) IsSameDirection(o Vec2) bool {
	return v.IsParallel(o) && v.Dot(o) > 0
}

// Average returns the arithmetic mean. It panics when called with no vectors.
func Average(vs ...Vec2) Vec2 {
	if len(vs) == 0 {
		panic("physics: average of no vectors")
	}
	var sum Vec2
	for _, v := range vs {
		sum = sum.Plus(v)
	}
	return sum.Times(1 / float64(len(vs)))
}
