package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q", cfg.HTTPPort)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.BroadcastBackend != "memory" {
		t.Errorf("BroadcastBackend = %q, want memory", cfg.BroadcastBackend)
	}
	if cfg.BroadcastChannel != "classroll:attendance" {
		t.Errorf("BroadcastChannel = %q", cfg.BroadcastChannel)
	}
	if cfg.DefaultClassName != "Computer Science 101" {
		t.Errorf("DefaultClassName = %q", cfg.DefaultClassName)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("BROADCAST_BACKEND", "redis")
	t.Setenv("BROADCAST_CHANNEL", "classroll:events")

	cfg := Load()
	if cfg.HTTPPort != "9999" || cfg.TokenTTL != 2*time.Hour ||
		cfg.RateLimitPerMin != 30 || cfg.BroadcastBackend != "redis" ||
		cfg.BroadcastChannel != "classroll:events" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")

	cfg := Load()
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want fallback 24h", cfg.TokenTTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin = %d, want fallback 120", cfg.RateLimitPerMin)
	}
}
