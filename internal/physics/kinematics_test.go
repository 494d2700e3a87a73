package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinematicalEffect(t *testing.T) {
	p := DefaultParams()
	mp := MassPoint{P: NewVec2(10, 10), V: NewVec2(4, 0), A: p.Gravity, M: 1}
	e := p.KinematicalEffect(mp)

	assert.InDelta(t, 4*p.Tick, e.DP.X, 1e-12)
	assert.InDelta(t, 15*p.Tick*p.Tick/2, e.DP.Y, 1e-12)
	assert.InDelta(t, 15*p.Tick, e.DV.Y, 1e-12)
	assert.Zero(t, e.DV.X)
	assert.True(t, e.DA.IsZero())
}

func TestKinematicalEffectClampsSpeed(t *testing.T) {
	p := DefaultParams()
	mp := MassPoint{V: NewVec2(0, 200), A: p.Gravity, M: 1}
	next := mp.Apply(p.KinematicalEffect(mp))
	assert.InDelta(t, p.MaxSpeed, next.V.Norm(), 1e-9)
}

func TestApplyZeroEffect(t *testing.T) {
	mp := MassPoint{P: NewVec2(1, 2), V: NewVec2(3, 4), A: NewVec2(5, 6), M: 2}
	assert.Equal(t, mp, mp.Apply(Effect{}))
	assert.Equal(t, mp, mp.Apply(SumEffects()))
}

func TestPerfectElasticCollisionSwapsEqualMasses(t *testing.T) {
	a := MassPoint{P: NewVec2(0, 0), V: NewVec2(30, 5), M: 1}
	b := MassPoint{P: NewVec2(10, 0), V: NewVec2(-30, -2), M: 1}
	ea, eb := PerfectElasticCollisionEffect(a, b)
	na, nb := a.Apply(ea), b.Apply(eb)

	assert.InDelta(t, -30, na.V.X, 1e-9)
	assert.InDelta(t, 30, nb.V.X, 1e-9)
	assert.InDelta(t, 5, na.V.Y, 1e-9)
	assert.InDelta(t, -2, nb.V.Y, 1e-9)
	assert.InDelta(t, a.KineticEnergy()+b.KineticEnergy(), na.KineticEnergy()+nb.KineticEnergy(), 1e-9)
}

func TestPerfectElasticCollisionConservesMomentum(t *testing.T) {
	a := MassPoint{P: NewVec2(0, 0), V: NewVec2(20, 10), M: 3}
	b := MassPoint{P: NewVec2(6, 8), V: NewVec2(-5, 0), M: 1}
	ea, eb := PerfectElasticCollisionEffect(a, b)
	na, nb := a.Apply(ea), b.Apply(eb)

	before := a.V.Times(a.M).Plus(b.V.Times(b.M))
	after := na.V.Times(na.M).Plus(nb.V.Times(nb.M))
	assert.True(t, before.Approx(after, 1e-9))
	assert.InDelta(t, a.KineticEnergy()+b.KineticEnergy(), na.KineticEnergy()+nb.KineticEnergy(), 1e-9)
}

func TestPerfectElasticCollisionSeparating(t *testing.T) {
	a := MassPoint{P: NewVec2(0, 0), V: NewVec2(-30, 0), M: 1}
	b := MassPoint{P: NewVec2(10, 0), V: NewVec2(30, 0), M: 1}
	ea, eb := PerfectElasticCollisionEffect(a, b)
	assert.True(t, ea.IsZero())
	assert.True(t, eb.IsZero())
}

func TestSurfaceReflectEffect(t *testing.T) {
	// falling (+y is down) onto the top face of an obstacle whose normal points up
	mp := MassPoint{V: NewVec2(7, 50), M: 1}
	e := SurfaceReflectEffect(mp, NewVec2(0, -1))
	assert.Equal(t, NewVec2(0, -100), e.DV)
	assert.Equal(t, NewVec2(7, -50), mp.Apply(e).V)

	// already leaving the surface
	assert.True(t, SurfaceReflectEffect(mp, NewVec2(0, 1)).IsZero())
}
