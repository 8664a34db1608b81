package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	JWTSecret string
	TokenTTL  time.Duration

	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Room garbage collection: finished rooms are kept briefly so both
	// players can read the final score; any room older than RoomMaxAge
	// is considered abandoned.
	FinishedRoomTTL time.Duration
	RoomMaxAge      time.Duration
	SweepInterval   time.Duration
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./spellstreak.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Spellstreak"),

		FinishedRoomTTL: getDuration("FINISHED_ROOM_TTL", time.Hour),
		RoomMaxAge:      getDuration("ROOM_MAX_AGE", 24*time.Hour),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 15*time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable or returns a default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
