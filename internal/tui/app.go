package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/game"
)

// Sounds plays collision events.
type Sounds interface {
	Play(events []game.CollisionEvent)
}

type silent struct{}

func (silent) Play([]game.CollisionEvent) {}

// App runs one local session in the terminal.
type App struct {
	screen   tcell.Screen
	renderer *Renderer
	sounds   Sounds
	logger   *zap.Logger
	snaps    chan game.Snapshot
	hold     time.Duration
}

func NewApp(screen tcell.Screen, grid game.Grid, sounds Sounds, logger *zap.Logger) *App {
	if sounds == nil {
		sounds = silent{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		screen:   screen,
		renderer: NewRenderer(screen, grid),
		sounds:   sounds,
		logger:   logger.Named("tui"),
		snaps:    make(chan game.Snapshot, 8),
		hold:     150 * time.Millisecond,
	}
}

// Publish implements game.Publisher. Frames are dropped when the screen
// falls behind.
func (a *App) Publish(_ context.Context, s game.Snapshot) error {
	select {
	case a.snaps <- s:
	default:
	}
	return nil
}

// Run drives s from the keyboard until the user quits or ctx is done.
func (a *App) Run(ctx context.Context, s *game.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	latch := NewKeyLatch(s.Keys(), a.hold)
	ticker := time.NewTicker(a.hold / 3)
	defer ticker.Stop()

	a.redraw(s, s.State())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			latch.Expire(now)

		case snap := <-a.snaps:
			a.sounds.Play(snap.Events)
			a.redraw(s, snap)

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
				a.redraw(s, s.State())
			case *tcell.EventKey:
				if quit(ev) {
					return nil
				}
				if latch.Handle(ev, time.Now()) {
					continue
				}
				if err := a.command(s, ev.Rune()); err != nil {
					a.logger.Debug("command rejected", zap.String("key", string(ev.Rune())), zap.Error(err))
				}
				a.redraw(s, s.State())
			}
		}
	}
}

func quit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Rune() == 'q')
}

func (a *App) command(s *game.Session, r rune) error {
	switch r {
	case 'p':
		return s.Play()
	case ' ':
		if s.State().Paused {
			return s.Resume()
		}
		return s.Pause()
	case 'r':
		return s.Layout()
	}
	return nil
}

func (a *App) redraw(s *game.Session, snap game.Snapshot) {
	_, _, statics := game.SplitItems(s.Items())
	a.renderer.Draw(statics, snap, status(snap))
}

func status(snap game.Snapshot) string {
	switch {
	case snap.Mode == game.ModeLayout:
		return "layout  p:play  q:quit"
	case snap.Paused:
		return fmt.Sprintf("paused  tick %d  space:resume  r:layout  q:quit", snap.Tick)
	}
	return fmt.Sprintf("play  tick %d  balls %d  a/d j/l:baffles  space:pause  r:layout  q:quit", snap.Tick, len(snap.Balls))
}
