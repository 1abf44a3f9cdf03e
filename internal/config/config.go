package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port       string
	DBPath     string
	APIBaseURL string
	LogLevel   string
}

// Load reads configuration from a .env file (when present) and the
// environment. Missing values fall back to local-development defaults.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("no .env file, using environment", "error", err)
	}

	return Config{
		Port:       getenv("YALASURF_PORT", "3000"),
		DBPath:     getenv("YALASURF_DB_PATH", "yalasurf.db"),
		APIBaseURL: getenv("YALASURF_API_URL", "http://localhost:8000"),
		LogLevel:   getenv("YALASURF_LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
