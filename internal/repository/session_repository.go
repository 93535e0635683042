package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/storage"
)

var ErrNoSession = errors.New("no active session")

// SessionRepository persists the signed-in user: the session record, the
// current-username flag and, for the admin account only, the admin
// credential flag.
type SessionRepository struct {
	store storage.Store
}

func NewSessionRepository(store storage.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Save writes the session. credential is written to the admin flag when
// non-empty and cleared otherwise.
func (r *SessionRepository) Save(ctx context.Context, s models.Session, credential string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.store.Set(ctx, SlotSession, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := r.store.Set(ctx, SlotUsername, s.Username); err != nil {
		return fmt.Errorf("failed to save username flag: %w", err)
	}

	if credential != "" {
		err = r.store.Set(ctx, SlotAdminPass, credential)
	} else {
		err = r.store.Remove(ctx, SlotAdminPass)
	}
	if err != nil {
		return fmt.Errorf("failed to save admin flag: %w", err)
	}
	return nil
}

// Current builds the explicit session value from the stored slots. The
// username flag decides who is signed in; the session record only adds the
// display name and start time.
func (r *SessionRepository) Current(ctx context.Context) (*models.Session, error) {
	username, ok, err := r.store.Get(ctx, SlotUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to get username flag: %w", err)
	}
	if !ok || username == "" {
		return nil, ErrNoSession
	}

	s := models.Session{Username: username, Name: username}
	if raw, ok, err := r.store.Get(ctx, SlotSession); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	} else if ok {
		var stored models.Session
		if json.Unmarshal([]byte(raw), &stored) == nil && stored.Username == username {
			s = stored
		}
	}

	credential, _, err := r.store.Get(ctx, SlotAdminPass)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin flag: %w", err)
	}
	s.Credential = credential

	return &s, nil
}

// Clear signs the current user out
func (r *SessionRepository) Clear(ctx context.Context) error {
	for _, key := range []string{SlotSession, SlotUsername, SlotAdminPass} {
		if err := r.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}
