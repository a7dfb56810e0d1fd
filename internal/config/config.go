package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the relay.
type Config struct {
	Port         string
	Env          string
	ClientOrigin []string // allowed origins for CORS and WebSocket upgrades; "*" allows any

	DefaultRoom  string
	PresetRooms  []string
	HistoryLimit int // per-room message log cap

	MaxMessageSize int64 // WebSocket read limit in bytes

	// Per-connection inbound event rate limiting
	RateLimitBurst  int
	RateLimitRefill time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "5000"),
		Env:             getEnv("ENV", "development"),
		DefaultRoom:     getEnv("DEFAULT_ROOM", "general"),
		HistoryLimit:    getEnvInt("MESSAGE_HISTORY_LIMIT", 200),
		MaxMessageSize:  getEnvInt64("MAX_MESSAGE_SIZE", 1<<20),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitRefill: time.Duration(getEnvInt("RATE_LIMIT_REFILL_SECONDS", 1)) * time.Second,
	}

	cfg.ClientOrigin = splitList(getEnv("CLIENT_URL", "http://localhost:5173"))
	cfg.PresetRooms = splitList(getEnv("CHAT_ROOMS", "general,tech,gaming,support"))

	if strings.TrimSpace(cfg.DefaultRoom) == "" {
		cfg.DefaultRoom = "general"
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
