package game

import (
	"testing"

	"github.com/playmatatu/gizmoball/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyState(t *testing.T) {
	keys := NewKeyState()
	keys.Press(KeyAlphaLeft)
	keys.Press(KeyBetaRight)
	sample := keys.Sample()
	keys.Release(KeyAlphaLeft)

	assert.Equal(t, -1.0, sample.Direction(KindBaffleAlpha))
	assert.Equal(t, 1.0, sample.Direction(KindBaffleBeta))
	assert.Equal(t, 0.0, keys.Sample().Direction(KindBaffleAlpha))
	assert.Equal(t, 0.0, sample.Direction(KindSquare))

	keys.Press(KeyAlphaLeft)
	keys.Press(KeyAlphaRight)
	assert.Equal(t, 0.0, keys.Sample().Direction(KindBaffleAlpha))

	keys.Reset()
	assert.Empty(t, keys.Sample())
}

func TestParseBaffleKey(t *testing.T) {
	k, err := ParseBaffleKey("j")
	require.NoError(t, err)
	assert.Equal(t, KeyBetaLeft, k)
	_, err = ParseBaffleKey("x")
	assert.Error(t, err)
}

func TestMoveBaffles(t *testing.T) {
	alpha := CreateMapItem(KindBaffleAlpha, physics.NewVec2(200, 300), GridLength)
	beta := CreateMapItem(KindBaffleBeta, physics.NewVec2(400, 300), GridLength)
	keys := KeySample{KeyAlphaRight: true, KeyBetaLeft: true}

	moved := MoveBaffles([]MapItem{alpha, beta}, nil, nil, keys, 6)
	assert.Equal(t, physics.NewVec2(206, 300), moved[0].Center)
	assert.Equal(t, physics.NewVec2(394, 300), moved[1].Center)
	assert.Equal(t, physics.NewVec2(200, 300), alpha.Center)
}

func TestMoveBafflesBlocked(t *testing.T) {
	alpha := CreateMapItem(KindBaffleAlpha, physics.NewVec2(200, 300), GridLength)
	// alpha spans x 164..236; a wall starts right at its end
	wall := CreateMapItem(KindSquare, physics.NewVec2(254, 300), GridLength)
	ball := CreateMapItem(KindBall, physics.NewVec2(200, 300-GridLength/8-GridLength/2), GridLength)

	moved := MoveBaffles([]MapItem{alpha}, []MapItem{wall}, nil, KeySample{KeyAlphaRight: true}, 6)
	assert.Equal(t, alpha.Center, moved[0].Center)

	moved = MoveBaffles([]MapItem{alpha}, []MapItem{wall}, nil, KeySample{KeyAlphaLeft: true}, 6)
	assert.Equal(t, physics.NewVec2(194, 300), moved[0].Center)

	// a ball resting on top does not block a sideways move
	moved = MoveBaffles([]MapItem{alpha}, nil, []MapItem{ball}, KeySample{KeyAlphaLeft: true}, 6)
	assert.Equal(t, physics.NewVec2(194, 300), moved[0].Center)

	beta := CreateMapItem(KindBaffleBeta, physics.NewVec2(275, 300), GridLength)
	moved = MoveBaffles([]MapItem{alpha, beta}, nil, nil, KeySample{KeyAlphaRight: true}, 6)
	assert.Equal(t, alpha.Center, moved[0].Center)
}
