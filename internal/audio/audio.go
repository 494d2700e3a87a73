package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/playmatatu/gizmoball/internal/game"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneLength = 40 * time.Millisecond

	// per-tick cap so a pile-up does not turn into noise
	maxTonesPerBatch = 4
)

// tones is the pitch of each collision kind, in Hz.
var tones = map[game.CollisionKind]float64{
	game.CollisionArc:      660,
	game.CollisionEdge:     440,
	game.CollisionPoint:    520,
	game.CollisionBall:     880,
	game.CollisionEntry:    330,
	game.CollisionAbsorber: 180,
}

// Player turns collision events into short sine tones.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	maxSpeed    float64
	initialized bool
}

// NewPlayer creates a player; speeds at or above maxSpeed play loudest.
func NewPlayer(maxSpeed float64) *Player {
	return &Player{mixer: &beep.Mixer{}, maxSpeed: maxSpeed}
}

// Init opens the speaker. Without it Play is a no-op.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

// Play queues a tone for each event, up to a few per call.
func (p *Player) Play(events []game.CollisionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	streams := make([]beep.Streamer, 0, maxTonesPerBatch)
	for _, e := range events {
		if len(streams) == maxTonesPerBatch {
			break
		}
		if s := p.Tone(e); s != nil {
			streams = append(streams, s)
		}
	}
	if len(streams) == 0 {
		return
	}
	speaker.Lock()
	p.mixer.Add(streams...)
	speaker.Unlock()
}

// Tone is the sound of one event, or nil for kinds that make none.
func (p *Player) Tone(e game.CollisionEvent) beep.Streamer {
	freq, ok := tones[e.Kind]
	if !ok {
		return nil
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return beep.Take(sampleRate.N(toneLength), &effects.Gain{
		Streamer: sine,
		Gain:     p.loudness(e.Speed) - 1,
	})
}

// loudness maps impact speed to an amplitude in [0.05, 0.4].
func (p *Player) loudness(speed float64) float64 {
	if p.maxSpeed <= 0 {
		return 0.4
	}
	f := min(max(speed/p.maxSpeed, 0), 1)
	return 0.05 + 0.35*f
}
