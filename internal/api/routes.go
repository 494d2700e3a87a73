package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/api/handlers"
	"github.com/playmatatu/gizmoball/internal/config"
	"github.com/playmatatu/gizmoball/internal/game"
	"github.com/playmatatu/gizmoball/internal/middleware"
	"github.com/playmatatu/gizmoball/internal/store"
	"github.com/playmatatu/gizmoball/internal/ws"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Config    *config.Config
	Manager   *game.Manager
	Layouts   store.Repository
	Hub       *ws.Hub
	// Snapshots is the shared snapshot cache; nil without Redis.
	Snapshots handlers.SnapshotReader
	Logger    *zap.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	log := d.Logger.Named("api")
	router.Use(middleware.CORSMiddleware(d.Config, d.Logger))

	if !d.Config.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store")
			c.Next()
		})
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Manager))

		layouts := v1.Group("/layouts")
		{
			layouts.GET("", handlers.ListLayouts(d.Layouts, log))
			layouts.POST("", handlers.SaveLayout(d.Layouts, log))
			layouts.GET("/:id", handlers.GetLayout(d.Layouts, log))
			layouts.PUT("/:id", handlers.OverwriteLayout(d.Layouts, log))
		}

		ttl := d.Config.ControlTokenDuration()
		v1.POST("/sessions", handlers.CreateSession(d.Manager, d.Layouts, d.Config.JWTSecret, ttl, log))
		v1.GET("/sessions/:id/snapshot", handlers.GetSnapshot(d.Snapshots, d.Manager, log))

		// Everything below needs the control token of the session
		session := v1.Group("/sessions/:id", middleware.RequireControlToken(d.Config.JWTSecret))
		{
			session.GET("", handlers.GetSession(d.Manager, log))
			session.DELETE("", handlers.CloseSession(d.Manager, log))

			session.POST("/items", handlers.PlaceItem(d.Manager, log))
			session.DELETE("/items/:item", handlers.RemoveItem(d.Manager, log))
			session.POST("/items/:item/rotate", handlers.ItemAction(d.Manager, log, handlers.Rotate))
			session.POST("/items/:item/zoom-in", handlers.ItemAction(d.Manager, log, handlers.Zoom(game.ZoomIn)))
			session.POST("/items/:item/zoom-out", handlers.ItemAction(d.Manager, log, handlers.Zoom(game.ZoomOut)))
			session.POST("/items/:item/move", handlers.ItemAction(d.Manager, log, handlers.Move))

			session.POST("/play", handlers.SessionControl(d.Manager, log, (*game.Session).Play))
			session.POST("/pause", handlers.SessionControl(d.Manager, log, (*game.Session).Pause))
			session.POST("/resume", handlers.SessionControl(d.Manager, log, (*game.Session).Resume))
			session.POST("/layout", handlers.SessionControl(d.Manager, log, (*game.Session).Layout))
			session.POST("/save", handlers.SaveSession(d.Manager, d.Layouts, log))

			session.GET("/ws", handlers.ServeWebSocket(d.Manager, d.Hub, log))
		}
	}
}
