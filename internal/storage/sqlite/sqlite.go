// Package sqlite stores slots in a single-file SQLite database through gorm.
// It is the default on-disk backend shared by the server and coursectl.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/learnhub/backend/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Slot is one row of the slots table.
type Slot struct {
	Key       string `gorm:"column:slot_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

type Store struct {
	storage.Broadcaster

	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the slots table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Slot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slots table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var slot Slot
	err := s.db.WithContext(ctx).Where("slot_key = ?", key).Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get slot %s: %w", key, err)
	}
	return slot.Value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	slot := Slot{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to set slot %s: %w", key, err)
	}

	s.Publish(storage.Change{Key: key, Value: value})
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&Slot{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove slot %s: %w", key, res.Error)
	}

	if res.RowsAffected > 0 {
		s.Publish(storage.Change{Key: key, Removed: true})
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
