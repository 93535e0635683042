package repository

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/storage"
)

// ProfileRepository keeps the profile name, avatar and bio in one slot each.
type ProfileRepository struct {
	store storage.Store
}

func NewProfileRepository(store storage.Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Load returns the stored profile with defaults for username applied
func (r *ProfileRepository) Load(ctx context.Context, username string) (models.Profile, error) {
	var p models.Profile
	for key, dst := range map[string]*string{
		SlotProfileName:   &p.Name,
		SlotProfileAvatar: &p.Avatar,
		SlotProfileBio:    &p.Bio,
	} {
		v, _, err := r.store.Get(ctx, key)
		if err != nil {
			return models.Profile{}, fmt.Errorf("failed to get %s: %w", key, err)
		}
		*dst = v
	}
	return p.Normalize(username), nil
}

// Save normalizes p and writes it. The avatar slot is written last so
// watchers of the avatar see a complete profile.
func (r *ProfileRepository) Save(ctx context.Context, username string, p models.Profile) (models.Profile, error) {
	p = p.Normalize(username)
	for _, kv := range [][2]string{
		{SlotProfileName, p.Name},
		{SlotProfileBio, p.Bio},
		{SlotProfileAvatar, p.Avatar},
	} {
		if err := r.store.Set(ctx, kv[0], kv[1]); err != nil {
			return models.Profile{}, fmt.Errorf("failed to save %s: %w", kv[0], err)
		}
	}
	return p, nil
}

// Clear removes the stored profile so defaults apply again
func (r *ProfileRepository) Clear(ctx context.Context) error {
	for _, key := range []string{SlotProfileName, SlotProfileAvatar, SlotProfileBio} {
		if err := r.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}
