package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds server settings and gameplay policy knobs. Everything is
// overridable from the environment so deployments can tune policy without a
// rebuild.
type Config struct {
	HTTPPort  string
	MongoURI  string
	MongoDB   string
	RedisAddr string
	JWTSecret string

	// External track search endpoint.
	TrackSearchURL string

	// Room policy.
	MaxRooms       int
	MaxPlayers     int
	RevealDuration time.Duration
	ReconnectGrace time.Duration
	ReapInterval   time.Duration
	RequireReady   bool

	// Per-connection action rate limit.
	ActionsPerSec float64
	ActionBurst   int
}

func Load() *Config {
	return &Config{
		HTTPPort:  getEnv("PORT", "8080"),
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "tunequiz"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		TrackSearchURL: getEnv("TRACK_SEARCH_URL", "https://saavn.dev/api/search/songs"),

		MaxRooms:       getEnvInt("MAX_ROOMS", 100),
		MaxPlayers:     getEnvInt("MAX_PLAYERS_PER_ROOM", 10),
		RevealDuration: getEnvDuration("REVEAL_DURATION", 10*time.Second),
		ReconnectGrace: getEnvDuration("RECONNECT_GRACE", 60*time.Second),
		ReapInterval:   getEnvDuration("REAP_INTERVAL", time.Minute),
		RequireReady:   getEnvBool("REQUIRE_READY", false),

		ActionsPerSec: getEnvFloat("WS_ACTIONS_PER_SEC", 8),
		ActionBurst:   getEnvInt("WS_ACTION_BURST", 16),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
