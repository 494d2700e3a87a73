package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/models"
	"github.com/playmatatu/gizmoball/internal/physics"
)

func sampleItems() []game.MapItem {
	return []game.MapItem{
		game.CreateMapItem(game.KindBall, physics.NewVec2(18, 18), game.GridLength),
		game.CreateMapItem(game.KindTriangle, physics.NewVec2(90, 90), game.GridLength),
	}
}

func TestChecksumIsStable(t *testing.T) {
	data, sum, err := encode(sampleItems())
	require.NoError(t, err)
	assert.Equal(t, Checksum(data), sum)
	assert.NotEqual(t, Checksum([]byte("[]")), sum)
}

func TestEncodeEmptyLayout(t *testing.T) {
	data, _, err := encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestLoadItems(t *testing.T) {
	items := sampleItems()
	data, _, err := encode(items)
	require.NoError(t, err)

	got, err := LoadItems(&models.Layout{Items: data})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, game.KindTriangle, got[1].Kind)

	_, err = LoadItems(&models.Layout{Items: []byte("{")})
	assert.ErrorIs(t, err, game.ErrMalformedLayout)
}

func TestSaveRejectsEmptyName(t *testing.T) {
	s := NewLayoutStore(nil, nil)
	_, err := s.Save(context.Background(), "", sampleItems(), nil, "key")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestGetRejectsMalformedID(t *testing.T) {
	s := NewLayoutStore(nil, nil)
	_, err := s.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}
