package game

import (
	"context"
	"errors"

	"github.com/playmatatu/gizmoball/internal/physics"
)

// Mode is the state of a session.
type Mode string

const (
	ModeLayout Mode = "layout"
	ModePlay   Mode = "play"
)

// BallView is what a renderer needs to draw a ball.
type BallView struct {
	ID     string       `json:"id" msgpack:"id"`
	Center physics.Vec2 `json:"center" msgpack:"center"`
	Radius float64      `json:"radius" msgpack:"radius"`
	V      physics.Vec2 `json:"v" msgpack:"v"`
}

// BaffleView is a baffle outline in world coordinates.
type BaffleView struct {
	ID       string         `json:"id" msgpack:"id"`
	Kind     ItemKind       `json:"kind" msgpack:"kind"`
	Center   physics.Vec2   `json:"center" msgpack:"center"`
	Vertexes []physics.Vec2 `json:"vertexes" msgpack:"vertexes"`
}

// Snapshot is the published state of a playing session.
type Snapshot struct {
	SessionID string           `json:"session_id" msgpack:"session_id"`
	Tick      uint64           `json:"tick" msgpack:"tick"`
	Mode      Mode             `json:"mode" msgpack:"mode"`
	Paused    bool             `json:"paused" msgpack:"paused"`
	Balls     []BallView       `json:"balls" msgpack:"balls"`
	Baffles   []BaffleView     `json:"baffles" msgpack:"baffles"`
	Events    []CollisionEvent `json:"events,omitempty" msgpack:"events,omitempty"`
}

func viewBalls(balls []MapItem) []BallView {
	out := make([]BallView, len(balls))
	for i, b := range balls {
		out[i] = BallView{ID: b.ID.String(), Center: b.Center, Radius: b.Radius(), V: b.MassPoint.V}
	}
	return out
}

func viewBaffles(baffles []MapItem) []BaffleView {
	out := make([]BaffleView, 0, len(baffles))
	for _, b := range baffles {
		p, ok := b.Collider.(physics.Polygon)
		if !ok {
			continue
		}
		out = append(out, BaffleView{ID: b.ID.String(), Kind: b.Kind, Center: b.Center, Vertexes: p.AbsoluteVertexes()})
	}
	return out
}

// Publisher receives snapshots on every render tick.
type Publisher interface {
	Publish(ctx context.Context, s Snapshot) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, s Snapshot) error

func (f PublisherFunc) Publish(ctx context.Context, s Snapshot) error { return f(ctx, s) }

// MultiPublisher publishes to each publisher in turn and joins the errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, s Snapshot) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
