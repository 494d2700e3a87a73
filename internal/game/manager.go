package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrSessionNotFound = errors.New("session not found")

// idleKey is the sorted set of session ids scored by last activity.
const idleKey = "session_idle"

// PublisherFactory builds the publisher for a new session.
type PublisherFactory func(sessionID string) Publisher

// Manager owns the live sessions.
type Manager struct {
	sessions   map[string]*Session
	lastActive map[string]time.Time
	engine     *Engine
	cfg        SessionConfig
	publishers PublisherFactory
	rdb        *redis.Client // optional; idle tracking falls back to memory
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewManager(engine *Engine, cfg SessionConfig, publishers PublisherFactory, rdb *redis.Client, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publishers == nil {
		publishers = func(string) Publisher { return MultiPublisher{} }
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		lastActive: make(map[string]time.Time),
		engine:     engine,
		cfg:        cfg,
		publishers: publishers,
		rdb:        rdb,
		logger:     logger,
	}
}

// Create starts a session in layout mode with the given items.
func (m *Manager) Create(ctx context.Context, items []MapItem) *Session {
	id := uuid.NewString()
	s := NewSession(id, items, m.cfg, m.engine, m.publishers(id), m.logger)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.Touch(ctx, id)
	m.logger.Info("session created", zap.String("session", id), zap.Int("items", len(items)))
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Touch records activity on a session.
func (m *Manager) Touch(ctx context.Context, id string) {
	now := time.Now()
	m.mu.Lock()
	m.lastActive[id] = now
	m.mu.Unlock()
	if m.rdb == nil {
		return
	}
	if err := m.rdb.ZAdd(ctx, idleKey, redis.Z{Score: float64(now.Unix()), Member: id}).Err(); err != nil {
		m.logger.Warn("failed to record session activity", zap.String("session", id), zap.Error(err))
	}
}

func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.lastActive, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	if m.rdb != nil {
		m.rdb.ZRem(ctx, idleKey, id)
	}
	m.logger.Info("session closed", zap.String("session", id))
	return nil
}

// CloseAll stops every session concurrently.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			err := m.Close(ctx, id)
			if errors.Is(err, ErrSessionNotFound) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
