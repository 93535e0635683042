package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/storage"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already exists")
)

// UserRepository keeps the user list as a plain JSON array in one slot.
type UserRepository struct {
	store storage.Store
	log   *logger.Logger
	mu    sync.Mutex
}

func NewUserRepository(store storage.Store, log *logger.Logger) *UserRepository {
	return &UserRepository{store: store, log: log.With("service", "UserRepository")}
}

// List returns every user. An unreadable slot reads as no users.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	raw, ok, err := r.store.Get(ctx, SlotUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	if !ok || raw == "" {
		return []models.User{}, nil
	}

	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		r.log.Warn("stored user list unreadable, treating as empty", "error", err)
		return []models.User{}, nil
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (r *UserRepository) save(ctx context.Context, users []models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := r.store.Set(ctx, SlotUsers, string(data)); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	users, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// Get retrieves a user by username
func (r *UserRepository) Get(ctx context.Context, username string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// Create appends a new user; the username must be unused
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username {
			return ErrUserExists
		}
	}

	return r.save(ctx, append(users, *user))
}

// Update replaces the user with the same username
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == user.Username {
			users[i] = *user
			return r.save(ctx, users)
		}
	}
	return ErrUserNotFound
}

// EnsureUser creates user unless its username already exists. It reports
// whether a user was created.
func (r *UserRepository) EnsureUser(ctx context.Context, user *models.User) (bool, error) {
	err := r.Create(ctx, user)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
