package library

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries the process-level settings. Values come from a .env file
// when present, then the environment, then the defaults.
type Config struct {
	StoragePath string // LIBRARY_STORAGE
	ExportPath  string // LIBRARY_EXPORT
	LogLevel    slog.Level
}

// LoadConfig reads configuration from .env and the environment.
func LoadConfig() *Config {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	return &Config{
		StoragePath: getEnv("LIBRARY_STORAGE", "data/storage.json"),
		ExportPath:  getEnv("LIBRARY_EXPORT", "library_export.db"),
		LogLevel:    parseLogLevel(getEnv("LIBRARY_LOG_LEVEL", "info")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
