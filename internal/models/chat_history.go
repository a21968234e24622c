package models

import "gorm.io/gorm"

// ChatHistory represents a saved chat message in the PostgreSQL database.
// The embedded gorm.Model provides ID, CreatedAt, UpdatedAt, and DeletedAt fields,
// which serve as the message ID and timestamps.
type ChatHistory struct {
	gorm.Model

	// ChatID is the session the message belongs to.
	ChatID string `gorm:"not null;index:idx_chat_msg"`
	// SenderID is the anonymous ID of the user who sent the message.
	SenderID string `gorm:"type:text;not null;index:idx_chat_msg"`
	// Content is the message body.
	Content string `gorm:"type:text;not null"`
	// Type indicates the kind of message ("text", "assistant").
	Type string `gorm:"type:text;not null"`
}

// ToChatMessage converts the stored row to its wire form.
func (h *ChatHistory) ToChatMessage() ChatMessage {
	return ChatMessage{
		ID:       h.ID,
		ChatID:   h.ChatID,
		SenderID: h.SenderID,
		Content:  h.Content,
		Type:     h.Type,
		SentAt:   h.CreatedAt,
	}
}
