package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.BufferMinutes != 60 {
		t.Errorf("expected default buffer 60, got %d", cfg.BufferMinutes)
	}
	if cfg.DepositAmountCents != 5000 {
		t.Errorf("expected default deposit 5000, got %d", cfg.DepositAmountCents)
	}
	if cfg.CatalogCacheTTL != 10*time.Minute {
		t.Errorf("expected default catalog TTL 10m, got %s", cfg.CatalogCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BUFFER_MINUTES", "30")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("CATALOG_CACHE_TTL", "1m")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.BufferMinutes != 30 {
		t.Errorf("expected buffer 30, got %d", cfg.BufferMinutes)
	}
	if !cfg.UseMemoryQueue {
		t.Error("expected memory queue enabled")
	}
	if cfg.CatalogCacheTTL != time.Minute {
		t.Errorf("expected catalog TTL 1m, got %s", cfg.CatalogCacheTTL)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BUFFER_MINUTES", "not-a-number")
	t.Setenv("REDIS_TLS", "sometimes")

	cfg := Load()

	if cfg.BufferMinutes != 60 {
		t.Errorf("malformed int should fall back to default, got %d", cfg.BufferMinutes)
	}
	if cfg.RedisTLS {
		t.Error("malformed bool should fall back to default")
	}
}
