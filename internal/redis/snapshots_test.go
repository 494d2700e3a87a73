package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/physics"
)

func TestSnapshotWireRoundTrip(t *testing.T) {
	snap := game.Snapshot{
		SessionID: "abc",
		Tick:      42,
		Mode:      game.ModePlay,
		Balls: []game.BallView{
			{ID: "b1", Center: physics.NewVec2(10, 20), Radius: 18, V: physics.NewVec2(0, 3)},
		},
		Baffles: []game.BaffleView{
			{ID: "f1", Kind: game.KindBaffleAlpha, Center: physics.NewVec2(50, 700),
				Vertexes: []physics.Vec2{physics.NewVec2(14, 693), physics.NewVec2(86, 693)}},
		},
		Events: []game.CollisionEvent{
			{Kind: game.CollisionEdge, BallID: uuid.New(), TargetID: uuid.New(), Speed: 3},
		},
	}

	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte{0xc1})
	assert.Error(t, err)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "snapshot:abc", snapshotKey("abc"))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestSnapshotStoreLatest(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	store := NewSnapshotStore(rdb, time.Minute)

	_, err := store.Latest(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	snap := game.Snapshot{SessionID: "abc", Tick: 3, Mode: game.ModePlay, Paused: true}
	require.NoError(t, store.Publish(ctx, snap))
	got, err := store.Latest(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, time.Minute, mr.TTL(snapshotKey("abc")))

	snap.Tick = 4
	require.NoError(t, store.Publish(ctx, snap))
	got, err = store.Latest(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.Tick)

	mr.FastForward(2 * time.Minute)
	_, err = store.Latest(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSubscribeSnapshots(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []game.Snapshot
	require.NoError(t, SubscribeSnapshots(ctx, rdb, zaptest.NewLogger(t), func(s game.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	}))

	store := NewSnapshotStore(rdb, time.Minute)
	require.NoError(t, store.Publish(ctx, game.Snapshot{SessionID: "abc", Tick: 1, Mode: game.ModePlay}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && seen[0].SessionID == "abc"
	}, time.Second, 5*time.Millisecond)
}
