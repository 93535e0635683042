package database

import (
	"strings"
	"testing"
)

func TestPending(t *testing.T) {
	tests := []struct {
		name    string
		version int
		want    []int
	}{
		{name: "fresh database", version: 0, want: []int{1, 2}},
		{name: "partially migrated", version: 1, want: []int{2}},
		{name: "up to date", version: 2, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pending(tt.version)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d migrations, got %d", len(tt.want), len(got))
			}
			for i, m := range got {
				if m.Version != tt.want[i] {
					t.Errorf("index %d: expected version %d, got %d", i, tt.want[i], m.Version)
				}
			}
		})
	}
}

func TestMigrations_UniqueVersions(t *testing.T) {
	seen := map[int]bool{}
	for _, m := range Migrations {
		if seen[m.Version] {
			t.Fatalf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = true
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d must define Up and Down", m.Version)
		}
	}
}

func TestMigrations_Reversible(t *testing.T) {
	for _, m := range Migrations {
		if strings.TrimSpace(m.Up) == "" {
			t.Errorf("migration %d has no up statement", m.Version)
		}
		if strings.TrimSpace(m.Down) == "" {
			t.Errorf("migration %d cannot be rolled back", m.Version)
		}
	}
}
