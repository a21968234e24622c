package storage

import (
	"anonpair/backend/internal/models"
	"context"
	"fmt"
	"log"
	"slices"
)

// SaveMessage appends a message to a session's log. The row ID is filled in by GORM.
func (s *Service) SaveMessage(ctx context.Context, msg *models.ChatHistory) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", msg.ChatID, err)
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// GetRecentMessages returns the last limit messages of a chat, oldest first.
func (s *Service) GetRecentMessages(ctx context.Context, chatID string, limit int) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	err := s.DB.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		log.Printf("ERROR: Failed to get chat history for chat %s: %v", chatID, err)
		return nil, fmt.Errorf("get recent messages: %w", err)
	}
	slices.Reverse(history)
	return history, nil
}

// DeleteMessages hard-deletes every message of a chat.
func (s *Service) DeleteMessages(ctx context.Context, chatID string) error {
	if err := s.DB.WithContext(ctx).Unscoped().Where("chat_id = ?", chatID).Delete(&models.ChatHistory{}).Error; err != nil {
		return fmt.Errorf("delete messages for %s: %w", chatID, err)
	}
	return nil
}
