package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionIdleMinutes     int
	IdleWorkerPollInterval int // seconds
	SnapshotTTLSeconds     int

	// Physics tuning file, optional
	PhysicsConfigPath string

	// Security
	JWTSecret           string
	ControlTokenMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/gizmoball?sslmode=disable"),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		SessionIdleMinutes:     getEnvInt("SESSION_IDLE_MINUTES", 30),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 30),
		SnapshotTTLSeconds:     getEnvInt("SNAPSHOT_TTL_SECONDS", 60),

		PhysicsConfigPath: getEnv("PHYSICS_CONFIG", ""),

		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		ControlTokenMinutes: getEnvInt("CONTROL_TOKEN_MINUTES", 720),
	}
}

// IsProduction reports whether diagnostics should be off.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SessionIdle is how long a session may go untouched before it is closed.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c *Config) IdlePoll() time.Duration {
	return time.Duration(c.IdleWorkerPollInterval) * time.Second
}

func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

func (c *Config) ControlTokenDuration() time.Duration {
	return time.Duration(c.ControlTokenMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
