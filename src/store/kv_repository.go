package store

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one persisted key/value blob. Values are JSON-serialized by the
// snapshot layer; this table knows nothing about their shape.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KVRepository implements the get/set/remove contract over the store DB.
type KVRepository struct {
	db *gorm.DB
}

// NewKVRepository uses the package connection opened by Init.
func NewKVRepository() *KVRepository {
	return &KVRepository{db: DB}
}

// WithDB overrides the underlying *gorm.DB instance. Useful for tests or
// custom sessions/transactions.
func (r *KVRepository) WithDB(db *gorm.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get fetches a value by key. The second return is false when the key does
// not exist; absence is not an error.
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry KVEntry

	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "KVRepository",
			"op":   "Get",
			"key":  key,
		}).WithError(err).Error("Failed to fetch value")
		return "", false, err
	}

	return entry.Value, true, nil
}

// Set upserts a value under key.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "KVRepository",
			"op":   "Set",
			"key":  key,
		}).WithError(err).Error("Failed to store value")
		return err
	}

	return nil
}

// Remove deletes a key. Removing a missing key is a no-op.
func (r *KVRepository) Remove(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&KVEntry{}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "KVRepository",
			"op":   "Remove",
			"key":  key,
		}).WithError(err).Error("Failed to remove value")
		return err
	}

	return nil
}
