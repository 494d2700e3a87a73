package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/game"
)

// SnapshotChannel carries every published snapshot, msgpack encoded.
const SnapshotChannel = "gizmoball:snapshots"

var ErrNoSnapshot = errors.New("no snapshot cached")

func snapshotKey(sessionID string) string {
	return "snapshot:" + sessionID
}

// EncodeSnapshot is the wire form used for both the cache and the channel.
func EncodeSnapshot(s game.Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

func DecodeSnapshot(data []byte) (game.Snapshot, error) {
	var s game.Snapshot
	err := msgpack.Unmarshal(data, &s)
	return s, err
}

// SnapshotStore caches the latest snapshot of each session and fans it out
// over pub/sub. It implements game.Publisher.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotStore(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{rdb: rdb, ttl: ttl}
}

func (s *SnapshotStore) Publish(ctx context.Context, snap game.Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	pipe := s.rdb.Pipeline()
	pipe.SetEx(ctx, snapshotKey(snap.SessionID), data, s.ttl)
	pipe.Publish(ctx, SnapshotChannel, data)
	_, err = pipe.Exec(ctx)
	return err
}

// Latest returns the cached snapshot of a session.
func (s *SnapshotStore) Latest(ctx context.Context, sessionID string) (game.Snapshot, error) {
	data, err := s.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return game.Snapshot{}, err
	}
	return DecodeSnapshot(data)
}

// SubscribeSnapshots calls handle for every snapshot on SnapshotChannel until
// ctx is done. It returns once the subscription is established.
func SubscribeSnapshots(ctx context.Context, rdb *redis.Client, logger *zap.Logger, handle func(game.Snapshot)) error {
	pubsub := rdb.Subscribe(ctx, SnapshotChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", SnapshotChannel, err)
	}

	log := logger.Named("snapshots")
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Info("snapshot subscriber started")
		for {
			select {
			case <-ctx.Done():
				log.Info("snapshot subscriber stopping")
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				snap, err := DecodeSnapshot([]byte(msg.Payload))
				if err != nil {
					log.Warn("invalid snapshot payload", zap.Error(err))
					continue
				}
				handle(snap)
			}
		}
	}()
	return nil
}
