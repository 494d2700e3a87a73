package game

import (
	"math"

	"github.com/playmatatu/gizmoball/internal/physics"
)

// pipeMotion is the constrained state of a ball in a pipe: a position
// correction relative to the tentative position and the velocity to hold.
type pipeMotion struct {
	dp physics.Vec2
	v  physics.Vec2
}

// override replaces every effect gathered so far with m.
func (bt *ballTick) override(m pipeMotion) {
	bt.effect = physics.Effect{
		DP: m.dp,
		DV: m.v.Minus(bt.tentative.MassPoint.V),
	}
}

// squaredSpeedAt is the squared speed the ball has at p when mechanical
// energy is conserved from its state before the tick.
func (bt *ballTick) squaredSpeedAt(p physics.Vec2) float64 {
	old := bt.old.MassPoint
	return old.V.Dot(old.V) + 2*old.A.Dot(p.Minus(old.P))
}

// enterPipe snaps the ball onto the outlet centerline and points it into the
// pipe. It fails when the ball lacks the energy to get there.
func (e *Engine) enterPipe(bt *ballTick, entry EntryCollision) (pipeMotion, bool) {
	dp := entry.Tangent.Times(-entry.Lateral)
	v2 := bt.squaredSpeedAt(bt.tentative.MassPoint.P.Plus(dp))
	if v2 < 0 {
		return pipeMotion{}, false
	}
	return pipeMotion{dp: dp, v: entry.Axis.Times(-math.Sqrt(v2))}, true
}

// travelPipe keeps a ball inside a pipe on the pipe's travel line. Turned
// pipes hand the ball over to the other leg once it reaches the bend.
func (e *Engine) travelPipe(bt *ballTick, inner InnerCollision) pipeMotion {
	pipe := inner.Item
	mp := bt.tentative.MassPoint
	rel := mp.P.Minus(pipe.Center)
	dir := pipe.Rotation.Direction()

	var target, travel physics.Vec2
	switch pipe.Kind {
	case KindPipeTurned:
		in, out := dir, dir.Rotate()
		if mp.V.Dot(out.Negate()) > mp.V.Dot(in.Negate()) {
			in, out = out, in
		}
		if along := rel.Dot(in); along <= PipeTurnAcceptProjection {
			target = mp.P.Minus(in.Times(along))
			travel = out
		} else {
			target = mp.P.Minus(out.Times(rel.Dot(out)))
			travel = in.Negate()
		}
	default:
		normal := dir.Rotate()
		target = mp.P.Minus(normal.Times(rel.Dot(normal)))
		travel = dir.Times(travelSign(mp, dir))
	}

	v2 := bt.squaredSpeedAt(target)
	if v2 < 0 {
		// out of energy: rest on the travel line
		return pipeMotion{dp: target.Minus(mp.P)}
	}
	return pipeMotion{dp: target.Minus(mp.P), v: travel.Times(math.Sqrt(v2))}
}

// travelSign is the way along dir the ball is heading, falling back to the
// way its acceleration pulls it.
func travelSign(mp physics.MassPoint, dir physics.Vec2) float64 {
	for _, v := range []physics.Vec2{mp.V, mp.A} {
		switch d := v.Dot(dir); {
		case d > 0:
			return 1
		case d < 0:
			return -1
		}
	}
	return 1
}
