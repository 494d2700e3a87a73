package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/playmatatu/gizmoball/internal/api"
	"github.com/playmatatu/gizmoball/internal/api/handlers"
	"github.com/playmatatu/gizmoball/internal/config"
	"github.com/playmatatu/gizmoball/internal/database"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/logging"
	"github.com/playmatatu/gizmoball/internal/middleware"
	"github.com/playmatatu/gizmoball/internal/migrations"
	"github.com/playmatatu/gizmoball/internal/redis"
	"github.com/playmatatu/gizmoball/internal/store"
	"github.com/playmatatu/gizmoball/internal/ws"
)

func main() {
	// Initialize configuration (loads .env when present)
	cfg := config.Load()

	logger := logging.Must(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tuning, err := config.LoadPhysics(cfg.PhysicsConfigPath)
	if err != nil {
		return err
	}

	// Initialize database
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		logger.Info("running migrations", zap.String("dir", cfg.MigrationsDir))
		if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
			return err
		}
	}

	// Redis is optional; without it snapshots go straight to the sockets
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		if rdb, err = redis.Connect(ctx, cfg.RedisURL); err != nil {
			return err
		}
		defer rdb.Close()
	}

	engine := game.NewEngine(tuning.Params(), logger, game.WithDiagnostics(!cfg.IsProduction()))

	var hub *ws.Hub
	var publishers game.PublisherFactory
	var reader handlers.SnapshotReader
	if rdb != nil {
		snapshots := redis.NewSnapshotStore(rdb, cfg.SnapshotTTL())
		publishers = func(string) game.Publisher { return snapshots }
		reader = snapshots
	} else {
		publishers = func(string) game.Publisher { return hub }
	}
	manager := game.NewManager(engine, tuning.Session(), publishers, rdb, logger)
	hub = ws.NewHub(manager, middleware.OriginAllowed(cfg), logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.Deps{
		Config:    cfg,
		Manager:   manager,
		Layouts:   store.NewLayoutStore(db, logger),
		Hub:       hub,
		Snapshots: reader,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	if rdb != nil {
		if err := redis.SubscribeSnapshots(ctx, rdb, logger, hub.Broadcast); err != nil {
			return err
		}
	}
	manager.StartIdleReaper(ctx, cfg.SessionIdle(), cfg.IdlePoll())

	g.Go(func() error {
		logger.Info("starting gizmoball server", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := manager.CloseAll(shutdownCtx); err != nil {
			logger.Warn("closing sessions", zap.Error(err))
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
