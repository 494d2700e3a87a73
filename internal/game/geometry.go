package game

import (
	"maps"

	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
)

// ComputedPolygonData is the derived geometry of a polygon in world space.
// Edges[i] runs from vertex i+1 to vertex i, Axes[i] is its outward normal.
type ComputedPolygonData struct {
	AbsoluteVertexes []physics.Vec2
	Edges            []physics.Vec2
	Middles          []physics.Vec2
	Axes             []physics.Vec2
	PointProjections []float64
}

// PreCompute derives the world-space geometry of p.
func PreCompute(p physics.Polygon) ComputedPolygonData {
	vs := p.AbsoluteVertexes()
	n := len(vs)
	d := ComputedPolygonData{
		AbsoluteVertexes: vs,
		Edges:            make([]physics.Vec2, n),
		Middles:          make([]physics.Vec2, n),
		Axes:             make([]physics.Vec2, n),
		PointProjections: make([]float64, n),
	}
	for i, v := range vs {
		next := vs[physics.Next(n, i)]
		d.Edges[i] = v.Minus(next)
		d.Middles[i] = physics.Average(v, next)
		d.Axes[i] = d.Edges[i].Rotate()
		d.PointProjections[i] = d.Axes[i].Dot(v)
	}
	return d
}

// GeometryCache maps polygon items to their computed geometry.
type GeometryCache map[uuid.UUID]ComputedPolygonData

// PreComputeStatics builds the cache for the static polygon obstacles.
func PreComputeStatics(statics []MapItem) GeometryCache {
	cache := make(GeometryCache, len(statics))
	for _, it := range statics {
		if p, ok := it.Collider.(physics.Polygon); ok && it.IsStatic() {
			cache[it.ID] = PreCompute(p)
		}
	}
	return cache
}

// WithMovables returns a copy of the cache extended with fresh geometry for
// the given movable polygons. The receiver is not modified.
func (c GeometryCache) WithMovables(movables []MapItem) GeometryCache {
	out := make(GeometryCache, len(c)+len(movables))
	maps.Copy(out, c)
	for _, it := range movables {
		if p, ok := it.Collider.(physics.Polygon); ok {
			out[it.ID] = PreCompute(p)
		}
	}
	return out
}

// lookup returns the cached geometry, computing it when the cache misses.
func (c GeometryCache) lookup(it MapItem, p physics.Polygon) ComputedPolygonData {
	if d, ok := c[it.ID]; ok {
		return d
	}
	return PreCompute(p)
}
