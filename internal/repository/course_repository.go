package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/obfuscate"
	"github.com/learnhub/backend/internal/storage"
	"github.com/learnhub/backend/internal/youtube"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrDuplicateID    = errors.New("duplicate course id")
)

// CourseRepository keeps the whole course list encrypted in one slot. Every
// mutation reads the full list, changes it and rewrites it.
type CourseRepository struct {
	store storage.Store
	codec *obfuscate.Codec
	log   *logger.Logger
	now   func() time.Time

	// serializes read-modify-write within this process only
	mu sync.Mutex
}

func NewCourseRepository(store storage.Store, codec *obfuscate.Codec, log *logger.Logger) *CourseRepository {
	return &CourseRepository{
		store: store,
		codec: codec,
		log:   log.With("service", "CourseRepository"),
		now:   time.Now,
	}
}

// LoadAll returns the stored list. A missing, undecryptable or non-list value
// yields an empty list; only a failing backend returns an error.
func (r *CourseRepository) LoadAll(ctx context.Context) ([]models.Course, error) {
	return r.loadAll(ctx)
}

func (r *CourseRepository) loadAll(ctx context.Context) ([]models.Course, error) {
	enc, ok, err := r.store.Get(ctx, SlotCourses)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	if !ok {
		return []models.Course{}, nil
	}

	var courses []models.Course
	if err := r.codec.Decrypt(enc, &courses); err != nil {
		r.log.Warn("stored course list unreadable, treating as empty", "error", err)
		return []models.Course{}, nil
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// SaveAll encrypts and writes the full list and stamps the last-updated slot.
// When encryption fails nothing is written.
func (r *CourseRepository) SaveAll(ctx context.Context, courses []models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveAll(ctx, courses)
}

func (r *CourseRepository) saveAll(ctx context.Context, courses []models.Course) error {
	if courses == nil {
		courses = []models.Course{}
	}

	enc, err := r.codec.Encrypt(courses)
	if err != nil {
		return fmt.Errorf("failed to encrypt courses: %w", err)
	}

	if err := r.store.Set(ctx, SlotCourses, enc); err != nil {
		return fmt.Errorf("failed to save courses: %w", err)
	}

	stamp := strconv.FormatInt(r.now().UnixMilli(), 10)
	if err := r.store.Set(ctx, SlotCoursesUpdated, stamp); err != nil {
		return fmt.Errorf("failed to stamp courses update: %w", err)
	}

	return nil
}

// Get returns the course with id
func (r *CourseRepository) Get(ctx context.Context, id string) (*models.Course, error) {
	courses, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range courses {
		if courses[i].ID == id {
			return &courses[i], nil
		}
	}
	return nil, ErrCourseNotFound
}

// Upsert replaces the course with the same id in place or appends it. An
// empty id gets a freshly generated one. Invalid video ids are stored empty.
// It returns the stored record and whether it was appended.
func (r *CourseRepository) Upsert(ctx context.Context, c models.Course) (models.Course, bool, error) {
	if err := c.Validate(); err != nil && !errors.Is(err, models.ErrInvalidVideoID) {
		return models.Course{}, false, err
	}
	if !youtube.IsValidID(c.VideoID) {
		c.VideoID = ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	courses, err := r.loadAll(ctx)
	if err != nil {
		return models.Course{}, false, err
	}

	if c.ID == "" {
		c.ID = newCourseID(courses)
	}

	created := true
	for i := range courses {
		if courses[i].ID == c.ID {
			courses[i] = c
			created = false
			break
		}
	}
	if created {
		courses = append(courses, c)
	}

	if err := r.saveAll(ctx, courses); err != nil {
		return models.Course{}, false, err
	}
	return c, created, nil
}

// ReplaceAll swaps the whole catalog for courses after bringing each record
// in line with the stored-record rules: invalid video ids are stored empty and
// missing ids are generated. A blank title or a repeated id rejects the list
// and nothing is written.
func (r *CourseRepository) ReplaceAll(ctx context.Context, courses []models.Course) ([]models.Course, error) {
	out := make([]models.Course, 0, len(courses))
	seen := make(map[string]bool, len(courses))
	for i, c := range courses {
		c.ID = strings.TrimSpace(c.ID)
		if err := c.Validate(); err != nil && !errors.Is(err, models.ErrInvalidVideoID) {
			return nil, fmt.Errorf("course %d: %w", i+1, err)
		}
		if !youtube.IsValidID(c.VideoID) {
			c.VideoID = ""
		}
		if c.ID != "" {
			if seen[c.ID] {
				return nil, fmt.Errorf("course %d: %w %q", i+1, ErrDuplicateID, c.ID)
			}
			seen[c.ID] = true
		}
		out = append(out, c)
	}

	for i := range out {
		if out[i].ID == "" {
			out[i].ID = newCourseID(out)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveAll(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove drops every course whose id equals id and reports whether any was
// removed. Nothing is written when nothing matched.
func (r *CourseRepository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	courses, err := r.loadAll(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(courses) {
		return false, nil
	}

	if err := r.saveAll(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// LastUpdated returns the epoch millis of the last SaveAll, ok=false if the
// list was never saved or the stamp is unreadable.
func (r *CourseRepository) LastUpdated(ctx context.Context) (int64, bool, error) {
	raw, ok, err := r.store.Get(ctx, SlotCoursesUpdated)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read courses update stamp: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return ms, true, nil
}

const courseIDPrefix = "c_"

// newCourseID returns "c_" plus ten random hex characters, retrying on the
// unlikely clash with an id already in the list.
func newCourseID(existing []models.Course) string {
	for {
		id := courseIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
		clash := false
		for _, c := range existing {
			if c.ID == id {
				clash = true
				break
			}
		}
		if !clash {
			return id
		}
	}
}
