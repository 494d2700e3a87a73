package game

import (
	"fmt"
	"sync"

	"github.com/playmatatu/gizmoball/internal/physics"
)

// BaffleKey is a key that moves a baffle.
type BaffleKey string

const (
	KeyAlphaLeft  BaffleKey = "a"
	KeyAlphaRight BaffleKey = "d"
	KeyBetaLeft   BaffleKey = "j"
	KeyBetaRight  BaffleKey = "l"
)

var baffleKeys = map[ItemKind][2]BaffleKey{
	KindBaffleAlpha: {KeyAlphaLeft, KeyAlphaRight},
	KindBaffleBeta:  {KeyBetaLeft, KeyBetaRight},
}

func ParseBaffleKey(s string) (BaffleKey, error) {
	switch k := BaffleKey(s); k {
	case KeyAlphaLeft, KeyAlphaRight, KeyBetaLeft, KeyBetaRight:
		return k, nil
	}
	return "", fmt.Errorf("game: unknown baffle key %q", s)
}

// KeyState tracks which baffle keys are held down. It is fed by press and
// release events and read once per paddle tick.
type KeyState struct {
	mu      sync.Mutex
	pressed map[BaffleKey]bool
}

func NewKeyState() *KeyState {
	return &KeyState{pressed: make(map[BaffleKey]bool)}
}

func (k *KeyState) Press(key BaffleKey) {
	k.mu.Lock()
	k.pressed[key] = true
	k.mu.Unlock()
}

func (k *KeyState) Release(key BaffleKey) {
	k.mu.Lock()
	delete(k.pressed, key)
	k.mu.Unlock()
}

func (k *KeyState) Reset() {
	k.mu.Lock()
	clear(k.pressed)
	k.mu.Unlock()
}

// Sample copies the current key state.
func (k *KeyState) Sample() KeySample {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := make(KeySample, len(k.pressed))
	for key := range k.pressed {
		s[key] = true
	}
	return s
}

// KeySample is a snapshot of held keys.
type KeySample map[BaffleKey]bool

// Direction is -1, 0 or 1 for the horizontal move the keys ask of a baffle.
func (s KeySample) Direction(kind ItemKind) float64 {
	keys, ok := baffleKeys[kind]
	if !ok {
		return 0
	}
	var d float64
	if s[keys[0]] {
		d--
	}
	if s[keys[1]] {
		d++
	}
	return d
}

// MoveBaffles shifts each baffle horizontally by step in the direction its
// keys ask for. A move is kept only if the baffle then overlaps none of the
// statics, the balls or the other baffles.
func MoveBaffles(baffles, statics, balls []MapItem, keys KeySample, step float64) []MapItem {
	out := make([]MapItem, len(baffles))
	copy(out, baffles)
	for i, b := range out {
		dir := keys.Direction(b.Kind)
		if dir == 0 {
			continue
		}
		moved := MoveItem(b, b.Center.Plus(physics.NewVec2(dir*step, 0)))
		if collidesAny(moved.Collider, statics, balls) || collidesOthers(moved.Collider, out, i) {
			continue
		}
		out[i] = moved
	}
	return out
}

func collidesAny(c physics.Collider, groups ...[]MapItem) bool {
	for _, items := range groups {
		for _, it := range items {
			if physics.Collides(c, it.Collider) {
				return true
			}
		}
	}
	return false
}

func collidesOthers(c physics.Collider, items []MapItem, skip int) bool {
	for j, it := range items {
		if j != skip && physics.Collides(c, it.Collider) {
			return true
		}
	}
	return false
}
