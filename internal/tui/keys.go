package tui

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/playmatatu/gizmoball/internal/game"
)

// Terminals report key repeats but never key releases. A KeyLatch holds a
// baffle key down while repeats keep arriving and releases it once they stop.
type KeyLatch struct {
	keys *game.KeyState
	hold time.Duration

	mu   sync.Mutex
	seen map[game.BaffleKey]time.Time
}

func NewKeyLatch(keys *game.KeyState, hold time.Duration) *KeyLatch {
	return &KeyLatch{keys: keys, hold: hold, seen: make(map[game.BaffleKey]time.Time)}
}

// Handle presses the baffle key in ev, if any, and reports whether it was one.
func (l *KeyLatch) Handle(ev *tcell.EventKey, now time.Time) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	key, err := game.ParseBaffleKey(string(ev.Rune()))
	if err != nil {
		return false
	}
	l.mu.Lock()
	l.seen[key] = now
	l.mu.Unlock()
	l.keys.Press(key)
	return true
}

// Expire releases keys not seen within the hold window.
func (l *KeyLatch) Expire(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, at := range l.seen {
		if now.Sub(at) >= l.hold {
			delete(l.seen, key)
			l.keys.Release(key)
		}
	}
}
