package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/gizmoball/internal/game"
)

func drain(t *testing.T, s interface {
	Stream([][2]float64) (int, bool)
}) (n int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	for {
		k, ok := s.Stream(buf)
		for _, smp := range buf[:k] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		n += k
		if !ok || k == 0 {
			return n, peak
		}
	}
}

func TestToneLengthAndLoudness(t *testing.T) {
	p := NewPlayer(200)

	soft := p.Tone(game.CollisionEvent{Kind: game.CollisionEdge, Speed: 0})
	require.NotNil(t, soft)
	n, peak := drain(t, soft)
	assert.Equal(t, sampleRate.N(toneLength), n)
	assert.LessOrEqual(t, peak, 0.05+1e-9)

	loud := p.Tone(game.CollisionEvent{Kind: game.CollisionBall, Speed: 500})
	_, peak = drain(t, loud)
	assert.Greater(t, peak, 0.3)
	assert.LessOrEqual(t, peak, 0.4+1e-9)
}

func TestInnerIsSilent(t *testing.T) {
	p := NewPlayer(200)
	assert.Nil(t, p.Tone(game.CollisionEvent{Kind: game.CollisionInner}))
}

func TestLoudness(t *testing.T) {
	p := NewPlayer(200)
	assert.InDelta(t, 0.05, p.loudness(-3), 1e-9)
	assert.InDelta(t, 0.225, p.loudness(100), 1e-9)
	assert.InDelta(t, 0.4, p.loudness(1e6), 1e-9)
	assert.InDelta(t, 0.4, NewPlayer(0).loudness(1), 1e-9)
}

func TestPlayWithoutSpeaker(t *testing.T) {
	p := NewPlayer(200)
	assert.NotPanics(t, func() {
		p.Play([]game.CollisionEvent{{Kind: game.CollisionEdge, Speed: 10}})
		p.Close()
	})
}
