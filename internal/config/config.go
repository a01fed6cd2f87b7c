package config

import (
	"os"
	"time"
)

const (
	// WebSocket pumps
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096
	SendBufferSize = 256

	// History pagination. Page size is fixed so the head-page cache key is
	// deterministic and can be invalidated without scanning.
	HistoryPageSize = 50
	HistoryCacheTTL = 5 * time.Minute

	// Friendship suggestions
	SuggestionLimit = 20

	// Auth
	TokenTTL = 72 * time.Hour
)

// Config містить усі налаштування, що читаються з оточення.
type Config struct {
	Addr          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	JWTSecret     string
}

// Load reads the configuration from environment variables, applying the same
// defaults as the docker-compose setup.
func Load() Config {
	return Config{
		Addr:          envOr("HTTP_ADDR", ":8080"),
		PostgresDSN:   envOr("POSTGRES_DSN", "host=localhost user=user password=password dbname=sociogodb port=5432 sslmode=disable"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6380"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     envOr("JWT_SECRET", "dev-only-secret-change-me"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
