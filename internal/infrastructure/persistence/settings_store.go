package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSettingsStore implements document.SettingsStore on the
// app_settings table. SetIfCAS relies on row-level atomicity of a
// single INSERT or UPDATE, so concurrent writers race safely without
// an explicit transaction.
type GormSettingsStore struct {
	db *gorm.DB
}

// NewGormSettingsStore creates a new GORM-based settings store
func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

// Get returns the value for key and whether the key exists
func (s *GormSettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	var model models.AppSettingModel
	err := s.db.WithContext(ctx).First(&model, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return model.Value, true, nil
}

// SetIfCAS atomically sets key to newValue when the stored value still
// equals expected. A nil expected requires the key to not exist yet.
// Returns false without error when another writer got there first.
func (s *GormSettingsStore) SetIfCAS(ctx context.Context, key string, expected *string, newValue string) (bool, error) {
	now := time.Now().UTC()

	if expected == nil {
		err := s.db.WithContext(ctx).Create(&models.AppSettingModel{
			Key:       key,
			Value:     newValue,
			UpdatedAt: now,
		}).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to insert setting %s: %w", key, err)
		}
		return true, nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.AppSettingModel{}).
		Where("key = ? AND value = ?", key, *expected).
		Updates(map[string]any{"value": newValue, "updated_at": now})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update setting %s: %w", key, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// isUniqueViolation catches driver-specific duplicate key errors that
// gorm does not translate.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// Ensure GormSettingsStore implements the port
var _ document.SettingsStore = (*GormSettingsStore)(nil)
