package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/storage"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(storage.NewMemoryStore(), logger.Nop())

	u := &models.User{Username: "sara", Password: "hash", Email: "sara@example.com", Name: "sara"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := repo.Create(ctx, u); !errors.Is(err, ErrUserExists) {
		t.Fatalf("Expected ErrUserExists, got %v", err)
	}

	got, err := repo.Get(ctx, "sara")
	if err != nil || *got != *u {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := repo.Get(ctx, "omar"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}

	n, _ := repo.Count(ctx)
	if n != 1 {
		t.Errorf("Expected 1 user, got %d", n)
	}
}

func TestUserRepository_EnsureUserIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(storage.NewMemoryStore(), logger.Nop())
	admin := &models.User{Username: "admin", Password: "x", Email: "admin@example.com", Name: "Administrator"}

	created, err := repo.EnsureUser(ctx, admin)
	if err != nil || !created {
		t.Fatalf("first EnsureUser = %v, %v", created, err)
	}
	created, err = repo.EnsureUser(ctx, admin)
	if err != nil || created {
		t.Fatalf("second EnsureUser = %v, %v", created, err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Expected 1 user, got %d", n)
	}
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(storage.NewMemoryStore(), logger.Nop())
	_ = repo.Create(ctx, &models.User{Username: "sara", Password: "plain"})

	if err := repo.Update(ctx, &models.User{Username: "sara", Password: "hashed"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	got, _ := repo.Get(ctx, "sara")
	if got.Password != "hashed" {
		t.Errorf("Expected updated password, got %s", got.Password)
	}
	if err := repo.Update(ctx, &models.User{Username: "ghost"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_CorruptSlot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Set(ctx, SlotUsers, "{not json")
	repo := NewUserRepository(store, logger.Nop())

	users, err := repo.List(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("List = %v, %v", users, err)
	}
}
