package game

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartIdleReaper closes sessions that have seen no activity for idle,
// checking every poll. It returns immediately; the reaper stops with ctx.
func (m *Manager) StartIdleReaper(ctx context.Context, idle, poll time.Duration) {
	log := m.logger.Named("idle")
	log.Info("idle reaper started", zap.Duration("idle", idle), zap.Duration("poll", poll))
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("idle reaper stopping")
				return
			case <-ticker.C:
				for _, id := range m.idleSessions(ctx, time.Now().Add(-idle)) {
					if err := m.Close(ctx, id); err == nil {
						log.Info("closed idle session", zap.String("session", id))
					}
				}
			}
		}
	}()
}

// idleSessions returns the ids last active before cutoff.
func (m *Manager) idleSessions(ctx context.Context, cutoff time.Time) []string {
	if m.rdb != nil {
		members, err := m.rdb.ZRangeByScore(ctx, idleKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: fmt.Sprintf("%d", cutoff.Unix()),
		}).Result()
		if err == nil {
			return members
		}
		m.logger.Warn("failed to fetch idle sessions", zap.Error(err))
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, at := range m.lastActive {
		if at.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}
