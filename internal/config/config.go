package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/constants"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	// Hosted backend (durable store + archetype generator function).
	BackendEndpoint  string
	BackendProjectID string
	BackendAPIKey    string

	// CSV roster bundled with the deployment.
	RosterPath string

	GenerationTimeout time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:            getEnv("DB_PATH", "hoopcrest.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		BackendEndpoint:   getEnv("BACKEND_ENDPOINT", ""),
		BackendProjectID:  getEnv("BACKEND_PROJECT_ID", ""),
		BackendAPIKey:     getEnv("BACKEND_API_KEY", ""),
		RosterPath:        getEnv("ROSTER_PATH", "players.csv"),
		GenerationTimeout: constants.GenerationTimeout,
	}

	if cfg.BackendEndpoint == "" {
		return nil, fmt.Errorf("BACKEND_ENDPOINT is required")
	}
	if cfg.BackendProjectID == "" {
		return nil, fmt.Errorf("BACKEND_PROJECT_ID is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("backend_endpoint", cfg.BackendEndpoint).
		Str("roster_path", cfg.RosterPath).
		Dur("generation_timeout", cfg.GenerationTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
