package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/config"
	"github.com/playmatatu/gizmoball/internal/database"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/logging"
	"github.com/playmatatu/gizmoball/internal/store"
)

// seed-layouts stores the demo board, plus any layout files given as
// arguments, so a fresh deployment has something to play.
func main() {
	name := flag.String("name", "demo", "name of the demo layout")
	flag.Parse()

	cfg := config.Load()
	logger := logging.Must(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	editKey := os.Getenv("SEED_EDIT_KEY")
	if editKey == "" {
		editKey = "change-me-in-production"
		logger.Warn("using default edit key; set SEED_EDIT_KEY in production")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	layouts := store.NewLayoutStore(db, logger)

	tuning, err := config.LoadPhysics(cfg.PhysicsConfigPath)
	if err != nil {
		logger.Fatal("failed to load physics config", zap.Error(err))
	}

	l, err := layouts.Save(ctx, *name, game.DemoLayout(tuning.Grid), []string{"demo"}, editKey)
	if err != nil {
		logger.Fatal("failed to save demo layout", zap.Error(err))
	}
	logger.Info("seeded layout", zap.String("id", l.ID), zap.String("name", l.Name))

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal("failed to read layout", zap.String("path", path), zap.Error(err))
		}
		items, err := game.DecodeLayout(data)
		if err != nil {
			logger.Fatal("invalid layout", zap.String("path", path), zap.Error(err))
		}
		l, err := layouts.Save(ctx, path, items, nil, editKey)
		if err != nil {
			logger.Fatal("failed to save layout", zap.String("path", path), zap.Error(err))
		}
		logger.Info("seeded layout", zap.String("id", l.ID), zap.String("name", l.Name), zap.Int("items", l.ItemCount))
	}
}
