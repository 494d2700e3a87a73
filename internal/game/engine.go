package game

import (
	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
	"go.uber.org/zap"
)

// CollisionEvent records a resolved contact for the view and for sound.
type CollisionEvent struct {
	Kind     CollisionKind `json:"kind" msgpack:"kind"`
	BallID   uuid.UUID     `json:"ball_id" msgpack:"ball_id"`
	TargetID uuid.UUID     `json:"target_id" msgpack:"target_id"`
	Speed    float64       `json:"speed" msgpack:"speed"` // impact speed, for volume
}

// TickResult is the outcome of one Step.
type TickResult struct {
	Balls  []MapItem
	Events []CollisionEvent
}

// Engine advances balls by one tick. It holds no state between ticks and is
// safe for concurrent use.
type Engine struct {
	params      physics.Params
	logger      *zap.Logger
	diagnostics bool
}

type EngineOption func(*Engine)

// WithDiagnostics turns on warnings for inconsistent classifications.
func WithDiagnostics(on bool) EngineOption {
	return func(e *Engine) { e.diagnostics = on }
}

func NewEngine(params physics.Params, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{params: params, logger: logger.Named("engine")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Params() physics.Params { return e.params }

// ballTick is the working state of one ball during Step.
type ballTick struct {
	old        MapItem
	tentative  MapItem
	collisions []Collision
	effect     physics.Effect
	absorbed   bool
}

func (b *ballTick) inner() (InnerCollision, bool) {
	for _, c := range b.collisions {
		if in, ok := c.(InnerCollision); ok {
			return in, true
		}
	}
	return InnerCollision{}, false
}

// ReduceNextTickWithPrecomputed advances the balls by one tick and returns
// the surviving balls followed by the unchanged baffles.
func (e *Engine) ReduceNextTickWithPrecomputed(balls, baffles, statics []MapItem, cache GeometryCache) []MapItem {
	res := e.Step(balls, baffles, statics, cache)
	return append(res.Balls, baffles...)
}

// Step advances the balls by one tick against the statics and baffles.
// cache holds the static polygon geometry; baffle geometry is computed here.
func (e *Engine) Step(balls, baffles, statics []MapItem, cache GeometryCache) TickResult {
	geometry := cache.WithMovables(baffles)
	obstacles := make([]MapItem, 0, len(statics)+len(baffles))
	obstacles = append(obstacles, statics...)
	obstacles = append(obstacles, baffles...)

	ticks := make([]*ballTick, len(balls))
	for i, ball := range balls {
		mp := ball.MassPoint.Apply(e.params.KinematicalEffect(ball.MassPoint))
		ticks[i] = &ballTick{old: ball, tentative: ball.withMassPoint(mp)}
	}

	for i, bt := range ticks {
		for _, obstacle := range obstacles {
			c, ok := Classify(bt.tentative, obstacle, geometry)
			if !ok {
				continue
			}
			bt.collisions = append(bt.collisions, c)
			if c.Kind() == CollisionAbsorber {
				bt.absorbed = true
			}
		}
		for j := i + 1; j < len(ticks); j++ {
			a, b := bt.tentative.Collider.(physics.Circle), ticks[j].tentative.Collider.(physics.Circle)
			if physics.CircleCollidesWithCircle(a, b) {
				bt.collisions = append(bt.collisions, BallCollision{
					Item:  ticks[j].tentative,
					Index: j,
					Axis:  b.Center.Minus(a.Center),
				})
			}
		}
	}

	var events []CollisionEvent
	for i, bt := range ticks {
		_, innerA := bt.inner()
		for _, c := range bt.collisions {
			bc, ok := c.(BallCollision)
			if !ok {
				continue
			}
			other := ticks[bc.Index]
			if _, innerB := other.inner(); innerA != innerB {
				continue
			}
			ea, eb := physics.PerfectElasticCollisionEffect(bt.tentative.MassPoint, other.tentative.MassPoint)
			if ea.IsZero() && eb.IsZero() {
				continue
			}
			bt.effect = bt.effect.Plus(ea)
			other.effect = other.effect.Plus(eb)
			events = append(events, CollisionEvent{
				Kind:     CollisionBall,
				BallID:   balls[i].ID,
				TargetID: bc.Item.ID,
				Speed:    bt.tentative.MassPoint.V.Minus(other.tentative.MassPoint.V).Norm(),
			})
		}
	}

	out := make([]MapItem, 0, len(ticks))
	for _, bt := range ticks {
		if bt.absorbed {
			events = append(events, e.event(bt, absorberOf(bt.collisions)))
			continue
		}
		events = append(events, e.resolve(bt)...)
		out = append(out, bt.tentative.withMassPoint(bt.tentative.MassPoint.Apply(bt.effect)))
	}
	return TickResult{Balls: out, Events: events}
}

func absorberOf(cs []Collision) Collision {
	for _, c := range cs {
		if c.Kind() == CollisionAbsorber {
			return c
		}
	}
	return nil
}

func (e *Engine) event(bt *ballTick, c Collision) CollisionEvent {
	return CollisionEvent{
		Kind:     c.Kind(),
		BallID:   bt.old.ID,
		TargetID: c.Target().ID,
		Speed:    bt.tentative.MassPoint.V.Norm(),
	}
}

// resolve layers surface reflection and pipe motion on top of the ball-ball
// effects already in bt.effect.
func (e *Engine) resolve(bt *ballTick) []CollisionEvent {
	var (
		events  []CollisionEvent
		axes    []physics.Vec2
		entries []EntryCollision
		edges   []EdgeCollision
		first   Collision
	)
	inner, isInner := bt.inner()
	for _, c := range bt.collisions {
		switch c := c.(type) {
		case ArcCollision:
			axes = append(axes, c.Axis)
		case EdgeCollision:
			axes = append(axes, c.Axis)
			edges = append(edges, c)
		case EntryCollision:
			entries = append(entries, c)
		}
		if first == nil && (c.Kind() == CollisionArc || c.Kind() == CollisionEdge) {
			first = c
		}
	}
	for _, c := range bt.collisions {
		p, ok := c.(PointCollision)
		if !ok || coveredByEdge(p.Point, edges) {
			continue
		}
		if axis := bt.tentative.Center.Minus(p.Point); !axis.IsZero() {
			axes = append(axes, axis)
			if first == nil {
				first = c
			}
		}
	}

	var entry *pipeMotion
	if len(entries) > 0 && !isInner {
		if len(entries) > 1 && e.diagnostics {
			e.logger.Warn("ball classified as entering more than one outlet",
				zap.Stringer("ball", bt.old.ID),
				zap.Int("entries", len(entries)))
		}
		m, ok := e.enterPipe(bt, entries[0])
		if ok {
			entry = &m
			events = append(events, e.event(bt, entries[0]))
		} else {
			// bounces off the outlet like a wall
			axes = append(axes, entries[0].Axis)
			if first == nil {
				first = EdgeCollision{Item: entries[0].Item, Index: entries[0].Index, Axis: entries[0].Axis}
			}
		}
	}

	if len(axes) > 0 {
		units := make([]physics.Vec2, len(axes))
		for i, a := range axes {
			units[i] = a.Unit()
		}
		if axis := physics.Average(units...); !axis.IsZero() {
			current := bt.tentative.MassPoint.Apply(bt.effect)
			reflect := physics.SurfaceReflectEffect(current, axis)
			if !reflect.IsZero() {
				bt.effect = bt.effect.Plus(reflect)
				events = append(events, e.event(bt, first))
			}
		}
	}

	switch {
	case isInner:
		bt.override(e.travelPipe(bt, inner))
	case entry != nil:
		bt.override(*entry)
	}
	return events
}

// coveredByEdge reports whether p is an endpoint of any edge contact.
func coveredByEdge(p physics.Vec2, edges []EdgeCollision) bool {
	for _, ec := range edges {
		if ec.From.Equal(p) || ec.To.Equal(p) {
			return true
		}
	}
	return false
}
