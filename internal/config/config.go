package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP API
	HTTPHost string
	HTTPPort int

	// Upstream stats API
	MPLBase         string
	UpstreamTimeout time.Duration
	UpstreamRPS     int

	// Model
	ModelConfigPath string

	// Sync
	SyncDBPath   string
	SyncSeason   string
	SyncInterval time.Duration
	CronSecret   string

	// Per ip:path requests per minute
	RateLimitPerMin int

	// Sync failure alerts; empty disables
	DiscordWebhookURL string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPHost: envStr("HTTP_HOST", "0.0.0.0"),
		HTTPPort: envInt("HTTP_PORT", 8080),

		MPLBase:         envStr("MPL_BASE", "https://mlbb-stats.ridwaanhall.com/api/mplid"),
		UpstreamTimeout: time.Duration(envInt("UPSTREAM_TIMEOUT_SEC", 10)) * time.Second,
		UpstreamRPS:     envInt("UPSTREAM_RPS", 5),

		ModelConfigPath: envStr("MODEL_CONFIG_PATH", "internal/config/model.yaml"),

		SyncDBPath: envStr("SYNC_DB_PATH", "data/mplid.db"),
		SyncSeason: envStr("SYNC_SEASON", "S16"),
		// 0 disables the periodic sync; POST /api/cron/sync still works.
		SyncInterval: time.Duration(envInt("SYNC_INTERVAL_MIN", 30)) * time.Minute,
		CronSecret:   envStr("CRON_SECRET", ""),

		RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 30),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func (c *Config) Addr() string {
	return c.HTTPHost + ":" + strconv.Itoa(c.HTTPPort)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
