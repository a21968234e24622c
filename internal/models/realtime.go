package models

import "time"

// ChatMessage is the wire form of a stored message.
type ChatMessage struct {
	ID       uint      `json:"id"`
	ChatID   string    `json:"chat_id"`
	SenderID string    `json:"sender_id"`
	Content  string    `json:"content"`
	Type     string    `json:"type"` // "text", "assistant"
	SentAt   time.Time `json:"sent_at"`
}

// EventType names a realtime queue notification.
type EventType string

const (
	EventMatched     EventType = "matched"
	EventPartnerLeft EventType = "partner_left"
	EventMessage     EventType = "message"
)

// QueueEvent is pushed to a single user over Redis pub/sub and the WebSocket.
// Events are hints to re-poll status; they never replace it.
type QueueEvent struct {
	Type    EventType    `json:"type"`
	ChatID  string       `json:"chat_id,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
}
