package repository

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/storage"
)

type PreferenceRepository struct {
	store storage.Store
}

func NewPreferenceRepository(store storage.Store) *PreferenceRepository {
	return &PreferenceRepository{store: store}
}

// Theme returns the stored theme, or the default when unset or unknown
func (r *PreferenceRepository) Theme(ctx context.Context) (string, error) {
	t, ok, err := r.store.Get(ctx, SlotTheme)
	if err != nil {
		return "", fmt.Errorf("failed to get theme: %w", err)
	}
	if !ok || models.ValidateTheme(t) != nil {
		return models.DefaultTheme, nil
	}
	return t, nil
}

func (r *PreferenceRepository) SetTheme(ctx context.Context, theme string) error {
	if err := models.ValidateTheme(theme); err != nil {
		return err
	}
	if err := r.store.Set(ctx, SlotTheme, theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
