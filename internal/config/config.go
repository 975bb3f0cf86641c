package config

import (
	"fmt"
	"log"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	JWTIssuer        string
	JWTSigningKey    string
	TokenTTL         time.Duration
	BroadcastBackend string
	BroadcastChannel string
	RedisAddr        string
	RateLimitPerMin  int
	DefaultClassName string
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		JWTIssuer:        getEnv("JWT_ISSUER", "classroll"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		TokenTTL:         durationEnv("TOKEN_TTL", 24*time.Hour),
		BroadcastBackend: getEnv("BROADCAST_BACKEND", "memory"),
		BroadcastChannel: getEnv("BROADCAST_CHANNEL", "classroll:attendance"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		DefaultClassName: getEnv("DEFAULT_CLASS_NAME", "Computer Science 101"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
