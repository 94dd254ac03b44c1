package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Provider selects the narrative/media backend: "gemini" or "mock".
	Provider       string
	GeminiAPIKey   string
	NarrativeModel string

	RedisURL     string
	NarrationDir string
}

func Load() (*Config, error) {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Provider:       strings.ToLower(getEnv("PROVIDER", "gemini")),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		NarrativeModel: getEnv("NARRATIVE_MODEL", ""),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		NarrationDir:   getEnv("NARRATION_DIR", ""),
	}

	switch cfg.Provider {
	case "gemini", "mock":
	default:
		return nil, fmt.Errorf("invalid provider %q (supported: gemini, mock)", cfg.Provider)
	}

	if cfg.Provider == "gemini" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when provider is gemini")
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
