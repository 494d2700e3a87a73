package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/gizmoball/internal/physics"
	"go.uber.org/zap"
)

var (
	ErrNotInLayoutMode = errors.New("session is not in layout mode")
	ErrNotInPlayMode   = errors.New("session is not in play mode")
	ErrItemOverlaps    = errors.New("item overlaps another item")
	ErrOutOfBounds     = errors.New("item is outside the board")
	ErrDuplicateBaffle = errors.New("board already has this baffle")
	ErrItemNotFound    = errors.New("item not found")
	ErrSessionClosed   = errors.New("session is closed")
	ErrNotPlaceable    = errors.New("item kind cannot be placed")
)

// SessionConfig holds the timing of a play session.
type SessionConfig struct {
	PhysicsInterval time.Duration
	PaddleInterval  time.Duration
	RenderInterval  time.Duration
	BaffleStep      float64
	Grid            Grid
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PhysicsInterval: 25 * time.Millisecond,
		PaddleInterval:  20 * time.Millisecond,
		RenderInterval:  33 * time.Millisecond,
		BaffleStep:      GridLength / 6,
		Grid:            DefaultGrid(),
	}
}

// Session is one board: edited in layout mode, simulated in play mode.
// While playing, a single goroutine drives the physics, paddle and render
// tickers; control calls stop it before changing mode.
type Session struct {
	ID        string
	cfg       SessionConfig
	engine    *Engine
	publisher Publisher
	keys      *KeyState
	logger    *zap.Logger

	ctl sync.Mutex // serializes mode changes

	mu      sync.Mutex
	items   []MapItem
	mode    Mode
	paused  bool
	closed  bool
	balls   []MapItem
	baffles []MapItem
	statics []MapItem
	cache   GeometryCache
	tick    uint64
	events  []CollisionEvent

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSession(id string, items []MapItem, cfg SessionConfig, engine *Engine, publisher Publisher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = MultiPublisher{}
	}
	return &Session{
		ID:        id,
		cfg:       cfg,
		engine:    engine,
		publisher: publisher,
		keys:      NewKeyState(),
		logger:    logger.Named("session").With(zap.String("session", id)),
		items:     append([]MapItem(nil), items...),
		mode:      ModeLayout,
	}
}

// Keys is the key state the paddle tick samples.
func (s *Session) Keys() *KeyState { return s.keys }

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Items returns the layout.
func (s *Session) Items() []MapItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MapItem(nil), s.items...)
}

// edit applies f to the layout under the lock, in layout mode only.
func (s *Session) edit(f func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.mode != ModeLayout {
		return ErrNotInLayoutMode
	}
	return f()
}

// checkPlacement validates the layout with candidate at index i (or appended
// when i < 0).
func (s *Session) checkPlacement(candidate MapItem, i int) error {
	if !s.cfg.Grid.Contains(candidate) {
		return ErrOutOfBounds
	}
	others := make([]physics.Collider, 0, len(s.items))
	for j, it := range s.items {
		if j == i {
			continue
		}
		if candidate.IsBaffle() && it.Kind == candidate.Kind {
			return ErrDuplicateBaffle
		}
		others = append(others, it.Collider)
	}
	if physics.HasAnyCollision(append(others, candidate.Collider)) {
		return ErrItemOverlaps
	}
	return nil
}

// AddItem places item on the board.
func (s *Session) AddItem(item MapItem) error {
	return s.edit(func() error {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if err := s.checkPlacement(item, -1); err != nil {
			return err
		}
		s.items = append(s.items, item)
		return nil
	})
}

// PlaceItem creates an item of the given kind on cell (x, y).
func (s *Session) PlaceItem(kind ItemKind, x, y int) (MapItem, error) {
	if kind == KindBorder || !slices.Contains(ItemKinds, kind) {
		return MapItem{}, ErrNotPlaceable
	}
	item := CreateMapItem(kind, s.cfg.Grid.CellCenter(x, y), s.cfg.Grid.Length)
	if item.IsBaffle() {
		// baffles span two cells starting at (x, y)
		item = MoveItem(item, item.Center.Plus(physics.NewVec2(s.cfg.Grid.Length/2, 0)))
	}
	return item, s.AddItem(item)
}

func (s *Session) RemoveItem(id uuid.UUID) error {
	return s.edit(func() error {
		i := findItem(s.items, id)
		if i < 0 {
			return ErrItemNotFound
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return nil
	})
}

// update replaces item id with f(item) if the result is a valid placement.
func (s *Session) update(id uuid.UUID, f func(MapItem) MapItem) (MapItem, error) {
	var out MapItem
	err := s.edit(func() error {
		i := findItem(s.items, id)
		if i < 0 {
			return ErrItemNotFound
		}
		next := f(s.items[i])
		if err := s.checkPlacement(next, i); err != nil {
			return err
		}
		s.items[i] = next
		out = next
		return nil
	})
	return out, err
}

func (s *Session) RotateItem(id uuid.UUID) (MapItem, error) {
	return s.update(id, RotateItem)
}

func (s *Session) ZoomItem(id uuid.UUID, reduce ScaleReducer) (MapItem, error) {
	return s.update(id, func(it MapItem) MapItem { return ZoomItem(it, reduce) })
}

func (s *Session) MoveItem(id uuid.UUID, center physics.Vec2) (MapItem, error) {
	return s.update(id, func(it MapItem) MapItem { return MoveItem(it, center) })
}

// ReplaceItems swaps in a whole layout, as when loading a saved board.
func (s *Session) ReplaceItems(items []MapItem) error {
	return s.edit(func() error {
		s.items = append([]MapItem(nil), items...)
		return nil
	})
}

// Play switches to play mode and starts the tickers.
func (s *Session) Play() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.mode != ModeLayout {
		s.mu.Unlock()
		return ErrNotInLayoutMode
	}
	balls, baffles, statics := SplitItems(s.items)
	if !hasKind(statics, KindBorder) {
		statics = append(statics, BoardBorders(s.cfg.Grid)...)
	}
	gravity := s.engine.Params().Gravity
	for i := range balls {
		balls[i].MassPoint.A = gravity
	}
	s.balls, s.baffles, s.statics = balls, baffles, statics
	s.cache = PreComputeStatics(statics)
	s.tick, s.events = 0, nil
	s.mode, s.paused = ModePlay, false
	s.mu.Unlock()

	s.keys.Reset()
	s.start()
	s.logger.Info("play started", zap.Int("balls", len(balls)), zap.Int("statics", len(statics)))
	return nil
}

// Pause stops the tickers and keeps the play state.
func (s *Session) Pause() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.mode != ModePlay || s.paused {
		s.mu.Unlock()
		return ErrNotInPlayMode
	}
	s.paused = true
	s.mu.Unlock()
	s.stop()
	s.publishNow()
	return nil
}

func (s *Session) Resume() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.mode != ModePlay || !s.paused {
		s.mu.Unlock()
		return ErrNotInPlayMode
	}
	s.paused = false
	s.mu.Unlock()
	s.start()
	return nil
}

// Layout leaves play mode. The layout is as it was when play started.
func (s *Session) Layout() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.mode != ModePlay {
		return ErrNotInPlayMode
	}
	s.mode, s.paused = ModeLayout, false
	s.balls, s.baffles, s.statics, s.cache, s.events = nil, nil, nil, nil, nil
	return nil
}

// Close stops the session for good.
func (s *Session) Close() {
	s.ctl.Lock()
	defer s.ctl.Unlock()
	s.stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func hasKind(items []MapItem, kind ItemKind) bool {
	for _, it := range items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

func (s *Session) start() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go s.run(ctx, done)
}

// stop cancels the loop and waits for it. Callers hold ctl, not mu.
func (s *Session) stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *Session) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	physicsTicker := time.NewTicker(s.cfg.PhysicsInterval)
	paddleTicker := time.NewTicker(s.cfg.PaddleInterval)
	renderTicker := time.NewTicker(s.cfg.RenderInterval)
	defer physicsTicker.Stop()
	defer paddleTicker.Stop()
	defer renderTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-physicsTicker.C:
			s.StepPhysics()
		case <-paddleTicker.C:
			s.StepPaddles()
		case <-renderTicker.C:
			if err := s.publisher.Publish(ctx, s.Snapshot()); err != nil && ctx.Err() == nil {
				s.logger.Warn("publish snapshot failed", zap.Error(err))
			}
		}
	}
}

// StepPhysics advances the balls by one engine tick.
func (s *Session) StepPhysics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModePlay {
		return
	}
	res := s.engine.Step(s.balls, s.baffles, s.statics, s.cache)
	s.balls = res.Balls
	s.events = append(s.events, res.Events...)
	s.tick++
}

// StepPaddles applies the sampled key state to the baffles.
func (s *Session) StepPaddles() {
	keys := s.keys.Sample()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModePlay || len(keys) == 0 {
		return
	}
	s.baffles = MoveBaffles(s.baffles, s.statics, s.balls, keys, s.cfg.BaffleStep)
}

// Snapshot returns the current state and drains pending collision events.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	snap.Events = s.events
	s.events = nil
	return snap
}

// State is Snapshot without events. It leaves them for the next render tick.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		Tick:      s.tick,
		Mode:      s.mode,
		Paused:    s.paused,
	}
	if s.mode == ModePlay {
		snap.Balls = viewBalls(s.balls)
		snap.Baffles = viewBaffles(s.baffles)
	} else {
		balls, baffles, _ := SplitItems(s.items)
		snap.Balls = viewBalls(balls)
		snap.Baffles = viewBaffles(baffles)
	}
	return snap
}

func (s *Session) publishNow() {
	if err := s.publisher.Publish(context.Background(), s.Snapshot()); err != nil {
		s.logger.Warn("publish snapshot failed", zap.Error(err))
	}
}

// Balls returns the balls in play.
func (s *Session) Balls() []MapItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MapItem(nil), s.balls...)
}

// Baffles returns the baffles in play.
func (s *Session) Baffles() []MapItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MapItem(nil), s.baffles...)
}

func (s *Session) String() string {
	return fmt.Sprintf("session %s (%s)", s.ID, s.Mode())
}
