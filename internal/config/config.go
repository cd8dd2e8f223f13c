// Package config loads runtime settings from the environment. An optional
// .env file is read first so local development does not need exported
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the scheduler needs.
type Config struct {
	// HTTPAddr is the listen address, e.g. ":8080".
	HTTPAddr string
	// DatabasePath is the SQLite database file.
	DatabasePath string
	// JWTSecret signs login tokens. Required.
	JWTSecret string
	// TokenTTL bounds how long a login token stays valid.
	TokenTTL time.Duration
	// AMQPURL points at the notification broker. Empty disables it.
	AMQPURL string
	// CompletionSchedule is the cron expression for the sweep that marks
	// past reservations completed.
	CompletionSchedule string
	// LogLevel selects the slog level name.
	LogLevel string
}

// Load reads the configuration, collecting every problem before failing so
// an operator sees the full list at once.
func Load() (Config, error) {
	// Missing .env is fine; exported variables still apply.
	_ = godotenv.Load()

	var problems []string

	cfg := Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "scheduler.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		CompletionSchedule: getEnv("COMPLETION_SCHEDULE", "*/15 * * * *"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}

	ttl := getEnv("TOKEN_TTL_MINUTES", "60")
	minutes, err := strconv.Atoi(ttl)
	if err != nil || minutes <= 0 {
		problems = append(problems, fmt.Sprintf("TOKEN_TTL_MINUTES %q must be a positive integer", ttl))
	} else {
		cfg.TokenTTL = time.Duration(minutes) * time.Minute
	}

	if len(problems) > 0 {
		return Config{}, errors.New("config: " + strings.Join(problems, "; "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
