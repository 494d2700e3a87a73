package game

import (
	"context"
	"testing"
	"time"

	"github.com/playmatatu/gizmoball/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	// the reaper goroutine may outlive the test, so it cannot log to t
	engine := NewEngine(physics.DefaultParams(), zap.NewNop())
	return NewManager(engine, fastConfig(), nil, nil, zap.NewNop())
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	s := m.Create(ctx, []MapItem{CreateMapItem(KindSquare, physics.NewVec2(18, 18), GridLength)})
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Len(t, got.Items(), 1)

	require.NoError(t, m.Close(ctx, s.ID))
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(ctx, s.ID), ErrSessionNotFound)
}

func TestManagerCloseAll(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	for i := 0; i < 5; i++ {
		s := m.Create(ctx, nil)
		require.NoError(t, s.Play())
	}
	require.NoError(t, m.CloseAll(ctx))
	assert.Zero(t, m.Count())
}

func TestIdleReaper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newTestManager(t)

	idle := m.Create(ctx, nil)
	busy := m.Create(ctx, nil)
	m.StartIdleReaper(ctx, 30*time.Millisecond, 5*time.Millisecond)

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		m.Touch(ctx, busy.ID)
		time.Sleep(5 * time.Millisecond)
	}
	_, err := m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(busy.ID)
	assert.NoError(t, err)
}
