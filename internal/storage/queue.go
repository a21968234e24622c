package storage

import (
	"anonpair/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateQueueEntry inserts entry unless the user already has a row.
// It reports whether a row was created.
func (s *Service) CreateQueueEntry(ctx context.Context, entry *models.QueueEntry) (bool, error) {
	result := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(entry)
	if result.Error != nil {
		log.Printf("ERROR: Failed to add user %s to queue: %v", entry.UserID, result.Error)
		return false, fmt.Errorf("create queue entry: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetQueueEntry returns the user's queue row, or nil if the user is not queued.
func (s *Service) GetQueueEntry(ctx context.Context, userID string) (*models.QueueEntry, error) {
	return s.findQueueEntry(s.DB.WithContext(ctx), userID)
}

// LockQueueEntry is GetQueueEntry with a row lock held until the transaction ends.
func (s *Service) LockQueueEntry(ctx context.Context, userID string) (*models.QueueEntry, error) {
	return s.findQueueEntry(s.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (s *Service) findQueueEntry(db *gorm.DB, userID string) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := db.Where("user_id = ?", userID).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue entry for %s: %w", userID, err)
	}
	return &entry, nil
}

// LockAvailableEntries selects every waiting row FOR UPDATE in arrival order.
// Rows inserted after the read are not covered and wait for the next tick.
func (s *Service) LockAvailableEntries(ctx context.Context) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := s.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("available = ?", true).
		Order("joined_at ASC").
		Order("pool_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("lock available entries: %w", err)
	}
	return entries, nil
}

// CountAvailable returns the number of users currently waiting.
func (s *Service) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.QueueEntry{}).Where("available = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count available entries: %w", err)
	}
	return count, nil
}

// SetAvailability sets the user's availability flag and returns the number of rows touched.
func (s *Service) SetAvailability(ctx context.Context, userID string, available bool) (int64, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Where("user_id = ?", userID).
		Update("available", available)
	if result.Error != nil {
		return 0, fmt.Errorf("set availability for %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// ClaimEntry flips a waiting row to unavailable. It touches nothing if the
// row is gone or already claimed.
func (s *Service) ClaimEntry(ctx context.Context, userID string) (int64, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Where("user_id = ? AND available = ?", userID, true).
		Update("available", false)
	if result.Error != nil {
		return 0, fmt.Errorf("claim entry for %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteQueueEntry removes the user's row and returns the number of rows removed.
func (s *Service) DeleteQueueEntry(ctx context.Context, userID string) (int64, error) {
	result := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.QueueEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete queue entry for %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// ListQueue returns every queue row in arrival order.
func (s *Service) ListQueue(ctx context.Context) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := s.DB.WithContext(ctx).Order("joined_at ASC").Order("pool_id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	return entries, nil
}
