package physics

// MassPoint is the dynamic state of a moving body.
type MassPoint struct {
	P Vec2    `json:"p" msgpack:"p"`
	V Vec2    `json:"v" msgpack:"v"`
	A Vec2    `json:"a" msgpack:"a"`
	M float64 `json:"m" msgpack:"m"`
}

// Effect is an additive delta to a MassPoint. Effects on one body during a
// tick are summed and applied once.
type Effect struct {
	DP Vec2
	DV Vec2
	DA Vec2
}

func (e Effect) Plus(o Effect) Effect {
	return Effect{DP: e.DP.Plus(o.DP), DV: e.DV.Plus(o.DV), DA: e.DA.Plus(o.DA)}
}

func (e Effect) IsZero() bool {
	return e.DP.IsZero() && e.DV.IsZero() && e.DA.IsZero()
}

func SumEffects(effects ...Effect) Effect {
	var sum Effect
	for _, e := range effects {
		sum = sum.Plus(e)
	}
	return sum
}

// Apply returns mp shifted by e.
func (mp MassPoint) Apply(e Effect) MassPoint {
	mp.P = mp.P.Plus(e.DP)
	mp.V = mp.V.Plus(e.DV)
	mp.A = mp.A.Plus(e.DA)
	return mp
}

func (mp MassPoint) KineticEnergy() float64 {
	return mp.M * mp.V.Dot(mp.V) / 2
}

// MechanicalEnergy is kinetic energy plus potential energy in the body's own
// acceleration field, taking the origin as zero potential.
func (mp MassPoint) MechanicalEnergy() float64 {
	return mp.KineticEnergy() - mp.M*mp.A.Dot(mp.P)
}

// Params are the integrator constants.
type Params struct {
	Tick     float64
	MaxSpeed float64
	Gravity  Vec2
}

func DefaultParams() Params {
	return Params{Tick: 0.025, MaxSpeed: 200, Gravity: NewVec2(0, 15)}
}

// Constrain clamps the length of v to max.
func Constrain(v Vec2, max float64) Vec2 {
	if n := v.Norm(); n > max {
		return v.Times(max / n)
	}
	return v
}

// KinematicalEffect is the free motion of mp over one tick.
func (p Params) KinematicalEffect(mp MassPoint) Effect {
	v := Constrain(mp.V.Plus(mp.A.Times(p.Tick)), p.MaxSpeed)
	return Effect{
		DP: mp.V.Times(p.Tick).Plus(mp.A.Times(p.Tick * p.Tick / 2)),
		DV: v.Minus(mp.V),
	}
}

// PerfectElasticCollisionEffect returns the velocity deltas of a head-on
// elastic exchange along the line of centers. Bodies that are not closing
// in on each other are left alone.
func PerfectElasticCollisionEffect(a, b MassPoint) (Effect, Effect) {
	axis := b.P.Minus(a.P)
	if axis.IsZero() || axis.Dot(a.V.Minus(b.V)) <= 0 {
		return Effect{}, Effect{}
	}
	m1, m2 := a.M, b.M
	v1t := a.V.ProjectionComponent(axis)
	v2t := b.V.ProjectionComponent(axis)
	nv1t := v1t.Times((m1 - m2) / (m1 + m2)).Plus(v2t.Times(2 * m2 / (m1 + m2)))
	nv2t := v2t.Times((m2 - m1) / (m1 + m2)).Plus(v1t.Times(2 * m1 / (m1 + m2)))
	return Effect{DV: nv1t.Minus(v1t)}, Effect{DV: nv2t.Minus(v2t)}
}

// SurfaceReflectEffect mirrors the velocity component along axis when the
// body moves against it. axis is the outward normal of the surface hit.
func SurfaceReflectEffect(mp MassPoint, axis Vec2) Effect {
	if mp.V.Dot(axis) >= 0 {
		return Effect{}
	}
	return Effect{DV: mp.V.ProjectionComponent(axis).Times(-2)}
}
