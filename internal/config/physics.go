package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/physics"
	"gopkg.in/yaml.v3"
)

// Physics is the tuning file for the engine and the play loop.
type Physics struct {
	Tick     float64 `yaml:"tick"`
	MaxSpeed float64 `yaml:"max_speed"`
	Gravity  struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"gravity"`

	PhysicsInterval time.Duration `yaml:"physics_interval"`
	PaddleInterval  time.Duration `yaml:"paddle_interval"`
	RenderInterval  time.Duration `yaml:"render_interval"`
	BaffleStep      float64       `yaml:"baffle_step"`

	Grid game.Grid `yaml:"grid"`
}

// DefaultPhysics matches the built-in engine constants.
func DefaultPhysics() Physics {
	params := physics.DefaultParams()
	session := game.DefaultSessionConfig()
	var p Physics
	p.Tick = params.Tick
	p.MaxSpeed = params.MaxSpeed
	p.Gravity.X, p.Gravity.Y = params.Gravity.X, params.Gravity.Y
	p.PhysicsInterval = session.PhysicsInterval
	p.PaddleInterval = session.PaddleInterval
	p.RenderInterval = session.RenderInterval
	p.BaffleStep = session.BaffleStep
	p.Grid = session.Grid
	return p
}

// LoadPhysics reads a tuning file. An empty path yields the defaults.
func LoadPhysics(path string) (Physics, error) {
	if path == "" {
		return DefaultPhysics(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Physics{}, fmt.Errorf("open physics config: %w", err)
	}
	defer f.Close()
	return ParsePhysics(f)
}

// ParsePhysics decodes YAML over the defaults, so missing keys keep their
// default values.
func ParsePhysics(r io.Reader) (Physics, error) {
	p := DefaultPhysics()
	if err := yaml.NewDecoder(r).Decode(&p); err != nil && err != io.EOF {
		return Physics{}, fmt.Errorf("decode physics config: %w", err)
	}
	if p.Tick <= 0 || p.MaxSpeed <= 0 {
		return Physics{}, fmt.Errorf("physics config: tick and max_speed must be positive")
	}
	if p.PhysicsInterval <= 0 || p.PaddleInterval <= 0 || p.RenderInterval <= 0 {
		return Physics{}, fmt.Errorf("physics config: intervals must be positive")
	}
	if p.Grid.Length <= 0 || p.Grid.XCells <= 0 || p.Grid.YCells <= 0 {
		return Physics{}, fmt.Errorf("physics config: grid must be positive")
	}
	return p, nil
}

func (p Physics) Params() physics.Params {
	return physics.Params{
		Tick:     p.Tick,
		MaxSpeed: p.MaxSpeed,
		Gravity:  physics.NewVec2(p.Gravity.X, p.Gravity.Y),
	}
}

func (p Physics) Session() game.SessionConfig {
	return game.SessionConfig{
		PhysicsInterval: p.PhysicsInterval,
		PaddleInterval:  p.PaddleInterval,
		RenderInterval:  p.RenderInterval,
		BaffleStep:      p.BaffleStep,
		Grid:            p.Grid,
	}
}
