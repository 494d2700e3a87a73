package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/gizmoball/internal/config"
)

func allowedOrigins(cfg *config.Config) []string {
	if !cfg.IsProduction() {
		return []string{
			"http://localhost:5173", // Vite dev server
			"http://127.0.0.1:5173",
		}
	}
	if cfg.FrontendURL != "" {
		return []string{cfg.FrontendURL}
	}
	return nil
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	origins := allowedOrigins(cfg)
	logger.Named("cors").Info("cors configured",
		zap.String("environment", cfg.Environment), zap.Strings("origins", origins))

	corsConfig := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Edit-Key", "If-Match", "Accept",
		},
		ExposeHeaders: []string{
			"Content-Length", "ETag", "X-Session-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour, // Cache preflight responses
	}
	if len(origins) == 0 {
		// cors refuses a config with no origins at all
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(corsConfig)
}

// OriginAllowed validates WebSocket upgrade origins. Requests without an
// Origin header come from non-browser clients and are let through.
func OriginAllowed(cfg *config.Config) func(r *http.Request) bool {
	origins := allowedOrigins(cfg)
	dev := !cfg.IsProduction()
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if dev && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			return true
		}
		return slices.Contains(origins, origin)
	}
}
