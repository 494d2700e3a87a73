package game

import (
	"math"

	"github.com/playmatatu/gizmoball/internal/physics"
)

// CollisionKind names a Collision variant.
type CollisionKind string

const (
	CollisionArc      CollisionKind = "arc"
	CollisionAbsorber CollisionKind = "absorber"
	CollisionEntry    CollisionKind = "entry"
	CollisionInner    CollisionKind = "inner"
	CollisionEdge     CollisionKind = "edge"
	CollisionPoint    CollisionKind = "point"
	CollisionBall     CollisionKind = "ball"
)

// Collision is one classified contact of a ball during a tick. The set of
// variants is closed.
type Collision interface {
	Kind() CollisionKind
	// Target is the item the ball touches.
	Target() MapItem
	isCollision()
}

// ArcCollision is contact with a circle obstacle. Axis points from the
// obstacle center to the ball center.
type ArcCollision struct {
	Item MapItem
	Axis physics.Vec2
}

// AbsorberCollision schedules the ball for removal.
type AbsorberCollision struct {
	Item MapItem
}

// EntryCollision is a ball moving into a pipe through an outlet.
type EntryCollision struct {
	Item MapItem
	// Index of the outlet edge in the pipe geometry.
	Index int
	// Axis is the unit outward direction of the outlet.
	Axis physics.Vec2
	// Lateral is the signed offset of the ball from the outlet middle along
	// the unit edge direction Tangent.
	Lateral float64
	Tangent physics.Vec2
}

// InnerCollision is a ball traveling inside a pipe.
type InnerCollision struct {
	Item MapItem
}

// EdgeCollision is contact with one polygon edge. Axis is the edge's outward
// normal; From and To are the edge endpoints.
type EdgeCollision struct {
	Item  MapItem
	Point physics.Vec2
	Index int
	Axis  physics.Vec2
	From  physics.Vec2
	To    physics.Vec2
}

// PointCollision is contact with a polygon corner.
type PointCollision struct {
	Item  MapItem
	Point physics.Vec2
	Index int
}

// BallCollision is recorded on the lower-indexed ball of a touching pair.
type BallCollision struct {
	Item  MapItem
	Index int
	Axis  physics.Vec2
}

func (ArcCollision) Kind() CollisionKind      { return CollisionArc }
func (AbsorberCollision) Kind() CollisionKind { return CollisionAbsorber }
func (EntryCollision) Kind() CollisionKind    { return CollisionEntry }
func (InnerCollision) Kind() CollisionKind    { return CollisionInner }
func (EdgeCollision) Kind() CollisionKind     { return CollisionEdge }
func (PointCollision) Kind() CollisionKind    { return CollisionPoint }
func (BallCollision) Kind() CollisionKind     { return CollisionBall }

func (c ArcCollision) Target() MapItem      { return c.Item }
func (c AbsorberCollision) Target() MapItem { return c.Item }
func (c EntryCollision) Target() MapItem    { return c.Item }
func (c InnerCollision) Target() MapItem    { return c.Item }
func (c EdgeCollision) Target() MapItem     { return c.Item }
func (c PointCollision) Target() MapItem    { return c.Item }
func (c BallCollision) Target() MapItem     { return c.Item }

func (ArcCollision) isCollision()      {}
func (AbsorberCollision) isCollision() {}
func (EntryCollision) isCollision()    {}
func (InnerCollision) isCollision()    {}
func (EdgeCollision) isCollision()     {}
func (PointCollision) isCollision()    {}
func (BallCollision) isCollision()     {}

// Classify decides how ball touches obstacle, if at all. ball must already
// carry its tentative state for this tick.
func Classify(ball, obstacle MapItem, geometry GeometryCache) (Collision, bool) {
	circle, ok := ball.Collider.(physics.Circle)
	if !ok {
		return nil, false
	}
	switch c := obstacle.Collider.(type) {
	case physics.Circle:
		if physics.CircleCollidesWithCircle(c, circle) {
			return ArcCollision{Item: obstacle, Axis: circle.Center.Minus(c.Center)}, true
		}
		return nil, false
	case physics.Polygon:
		d := geometry.lookup(obstacle, c)
		switch {
		case obstacle.Kind == KindAbsorber:
			if physics.PolygonCollidesWithCircle(c, circle) {
				return AbsorberCollision{Item: obstacle}, true
			}
		case obstacle.IsPipe():
			if innerCollides(circle, d) {
				return InnerCollision{Item: obstacle}, true
			}
			if e, ok := entryCollides(ball, circle, obstacle, d); ok {
				return e, true
			}
		}
		if e, ok := edgeCollides(circle, obstacle, d); ok {
			return e, true
		}
		if p, ok := pointCollides(circle, obstacle, d); ok {
			return p, true
		}
		return nil, false
	}
	panic(physics.ErrUnknownCollider)
}

// adjacentEdges returns the indexes of the two edges meeting at vertex k.
func adjacentEdges(n, k int) [2]int {
	return [2]int{physics.Prev(n, k), k}
}

// edgeCollides tests the two edges next to the vertex closest to the ball.
// A hit needs the center to project inside the edge and to be less than a
// radius away from its line; the edge the ball sticks out of most wins.
func edgeCollides(circle physics.Circle, item MapItem, d ComputedPolygonData) (EdgeCollision, bool) {
	vs := d.AbsoluteVertexes
	_, _, k := physics.ClosestVertex(vs, circle.Center)
	if k < 0 {
		return EdgeCollision{}, false
	}
	var best EdgeCollision
	bestDistance, found := math.Inf(-1), false
	for _, i := range adjacentEdges(len(vs), k) {
		edge, axis := d.Edges[i], d.Axes[i]
		if edge.IsZero() {
			continue
		}
		to := vs[i]
		from := vs[physics.Next(len(vs), i)]
		t := circle.Center.Minus(from).Dot(edge) / edge.Dot(edge)
		if t < 0 || t > 1 {
			continue
		}
		dist := (axis.Dot(circle.Center) - d.PointProjections[i]) / axis.Norm()
		if math.Abs(dist) >= circle.Radius || dist <= bestDistance {
			continue
		}
		bestDistance, found = dist, true
		best = EdgeCollision{
			Item:  item,
			Point: from.Plus(edge.Times(t)),
			Index: i,
			Axis:  axis,
			From:  from,
			To:    to,
		}
	}
	return best, found
}

func pointCollides(circle physics.Circle, item MapItem, d ComputedPolygonData) (PointCollision, bool) {
	v, dist, k := physics.ClosestVertex(d.AbsoluteVertexes, circle.Center)
	if k < 0 || dist >= circle.Radius {
		return PointCollision{}, false
	}
	return PointCollision{Item: item, Point: v, Index: k}, true
}

// innerCollides reports whether the ball center lies behind both edges that
// meet at the vertex closest to it.
func innerCollides(circle physics.Circle, d ComputedPolygonData) bool {
	vs := d.AbsoluteVertexes
	v, _, k := physics.ClosestVertex(vs, circle.Center)
	if k < 0 {
		return false
	}
	rel := circle.Center.Minus(v)
	for _, i := range adjacentEdges(len(vs), k) {
		if rel.Dot(d.Axes[i]) > 0 {
			return false
		}
	}
	return true
}

// pipeOutlets returns the outward directions of a pipe's open ends.
func pipeOutlets(pipe MapItem) []physics.Vec2 {
	dir := pipe.Rotation.Direction()
	switch pipe.Kind {
	case KindPipe:
		return []physics.Vec2{dir, dir.Negate()}
	case KindPipeTurned:
		return []physics.Vec2{dir, dir.Rotate()}
	}
	return nil
}

// entryCollides looks for an outlet the ball is moving into, close enough to
// the outlet middle and less than a radius from the outlet line.
func entryCollides(ball MapItem, circle physics.Circle, pipe MapItem, d ComputedPolygonData) (EntryCollision, bool) {
	v := ball.MassPoint.V
	for i, axis := range d.Axes {
		if axis.IsZero() {
			continue
		}
		for _, out := range pipeOutlets(pipe) {
			if !axis.IsSameDirection(out) || v.Dot(out) >= 0 {
				continue
			}
			rel := circle.Center.Minus(d.Middles[i])
			if math.Abs(rel.Dot(out)) >= circle.Radius {
				continue
			}
			tangent := d.Edges[i].Unit()
			lateral := rel.Dot(tangent)
			if math.Abs(lateral) > PipeEntryAcceptProjection {
				continue
			}
			return EntryCollision{Item: pipe, Index: i, Axis: out, Lateral: lateral, Tangent: tangent}, true
		}
	}
	return EntryCollision{}, false
}
