package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/audio"
	"github.com/playmatatu/gizmoball/internal/config"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/logging"
	"github.com/playmatatu/gizmoball/internal/tui"
)

func main() {
	layoutPath := flag.String("layout", "", "layout JSON file (default: built-in demo board)")
	physicsPath := flag.String("physics", "", "physics tuning YAML")
	logPath := flag.String("log", "", "write logs to this file")
	mute := flag.Bool("mute", false, "disable collision sounds")
	flag.Parse()

	if err := run(*layoutPath, *physicsPath, *logPath, *mute); err != nil {
		fmt.Fprintf(os.Stderr, "gizmoball: %v\n", err)
		os.Exit(1)
	}
}

func run(layoutPath, physicsPath, logPath string, mute bool) error {
	logger, err := logging.NewFile(logPath, "debug")
	if err != nil {
		return err
	}
	defer logger.Sync()

	tuning, err := config.LoadPhysics(physicsPath)
	if err != nil {
		return err
	}
	items := game.DemoLayout(tuning.Grid)
	if layoutPath != "" {
		data, err := os.ReadFile(layoutPath)
		if err != nil {
			return err
		}
		if items, err = game.DecodeLayout(data); err != nil {
			return err
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	var sounds tui.Sounds
	if !mute {
		player := audio.NewPlayer(tuning.MaxSpeed)
		if err := player.Init(); err != nil {
			// Non-fatal, the board plays without sound
			logger.Warn("audio unavailable", zap.Error(err))
		} else {
			defer player.Close()
			sounds = player
		}
	}

	app := tui.NewApp(screen, tuning.Grid, sounds, logger)
	engine := game.NewEngine(tuning.Params(), logger)
	session := game.NewSession(uuid.NewString(), items, tuning.Session(), engine, app, logger)
	defer session.Close()

	return app.Run(context.Background(), session)
}
