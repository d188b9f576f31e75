package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ilbmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSessionRepository stores session entries in a SQL table. It works with
// both the sqlite and postgres drivers.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new GORMSessionRepository and migrates
// its table.
func NewGORMSessionRepository(db *gorm.DB) (*GORMSessionRepository, error) {
	if err := db.AutoMigrate(&models.SessionEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session table: %w", err)
	}
	return &GORMSessionRepository{db: db}, nil
}

// Get returns the value stored under key, or "" when there is none.
func (r *GORMSessionRepository) Get(ctx context.Context, key string) (string, error) {
	var entry models.SessionEntry
	if err := r.db.WithContext(ctx).First(&entry, "session_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get session key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Put upserts key.
func (r *GORMSessionRepository) Put(ctx context.Context, key, value string) error {
	entry := models.SessionEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to put session key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *GORMSessionRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&models.SessionEntry{}, "session_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}
	return nil
}
