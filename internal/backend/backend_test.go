package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/internal/logger"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"memory", config.BackendMemory, false},
		{"sqlite", config.BackendSQLite, false},
		{"unknown", "etcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Store: config.StoreConfig{
				Backend:    tt.backend,
				SQLitePath: filepath.Join(t.TempDir(), "slots.db"),
			}}

			b, err := Open(ctx, cfg, logger.Nop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			defer b.Close()

			if b.Watch == nil {
				t.Error("Expected a watchable store")
			}
			if b.Limiter != nil {
				t.Error("Expected no remote limiter")
			}
			if err := b.Store.Set(ctx, "theme", "light"); err != nil {
				t.Fatalf("Set error: %v", err)
			}
			if v, ok, _ := b.Store.Get(ctx, "theme"); !ok || v != "light" {
				t.Errorf("Get = %q, %v", v, ok)
			}
		})
	}
}
