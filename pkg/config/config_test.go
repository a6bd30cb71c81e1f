package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "JWT_SECRET", "TOKEN_TTL", "STORE_DRIVER", "CONSISTENCY_MODE", "COOKIE_SECURE", "ADMIN_USER_IDS", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreFirestore || cfg.ConsistencyMode != "fast" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.JWTSecret != devJWTSecret || cfg.CookieSecure {
		t.Fatalf("development secret/cookie = %q/%v", cfg.JWTSecret, cfg.CookieSecure)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CONSISTENCY_MODE", "transactional")
	t.Setenv("ADMIN_USER_IDS", "a, b,,c")
	t.Setenv("METRICS_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 2*time.Hour || !cfg.CookieSecure || cfg.StoreDriver != StoreMemory {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.AdminUserIDs, []string{"a", "b", "c"}) {
		t.Fatalf("AdminUserIDs = %v", cfg.AdminUserIDs)
	}
	if cfg.MetricsPort != "" {
		t.Fatalf("MetricsPort = %q, want disabled", cfg.MetricsPort)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"store driver":     {"STORE_DRIVER": "redis"},
		"consistency mode": {"CONSISTENCY_MODE": "eventual"},
		"token ttl":        {"TOKEN_TTL": "forever"},
		"missing secret":   {"ENV": "production", "JWT_SECRET": ""},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load succeeded")
			}
		})
	}
}
