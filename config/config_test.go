package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ENV", "")
	t.Setenv("WATCH_INTERVAL_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Expected sqlite backend, got %s", cfg.Store.Backend)
	}
	if cfg.Admin.Username != "admin" {
		t.Errorf("Expected admin username, got %s", cfg.Admin.Username)
	}
	if cfg.Watcher.Interval != 5*time.Second {
		t.Errorf("Expected 5s watch interval, got %v", cfg.Watcher.Interval)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}

func TestLoad_DefaultSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_BACKEND", "memory")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for default JWT secret in production")
	}
}

func TestLoad_CORSOriginsTrimmed(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:5173 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []string{"http://localhost:3000", "http://127.0.0.1:5173"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("Expected %v, got %v", want, cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("Expected %s, got %s", want[i], cfg.CORS.AllowedOrigins[i])
		}
	}
}
