package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrIncompletePair is returned when a pair is built with a missing member.
	ErrIncompletePair = errors.New("pair requires two user ids")
	// ErrSelfPair is returned when both slots hold the same user.
	ErrSelfPair = errors.New("pair members must be distinct")
)

// Pair is the fixed two-slot membership of a chat session.
// The zero value is not a valid pair; use NewPair.
type Pair struct {
	first  string
	second string
}

// NewPair builds a pair from two distinct, non-empty user ids.
func NewPair(first, second string) (Pair, error) {
	if first == "" || second == "" {
		return Pair{}, ErrIncompletePair
	}
	if first == second {
		return Pair{}, ErrSelfPair
	}
	return Pair{first: first, second: second}, nil
}

// Members returns both user ids in slot order.
func (p Pair) Members() [2]string { return [2]string{p.first, p.second} }

// Has reports whether userID occupies either slot.
func (p Pair) Has(userID string) bool {
	return userID != "" && (p.first == userID || p.second == userID)
}

// Partner returns the other member for userID.
func (p Pair) Partner(userID string) (string, bool) {
	switch userID {
	case "":
		return "", false
	case p.first:
		return p.second, true
	case p.second:
		return p.first, true
	}
	return "", false
}

// ChatSession is an ephemeral 1-on-1 chat created by the matcher.
// The row exists only while the chat is active; teardown deletes it.
type ChatSession struct {
	// ChatID is the unique identifier for the session (UUID).
	ChatID string `gorm:"primaryKey" json:"chat_id"`
	// UserAID is the member that was first in the queue.
	UserAID string `gorm:"column:user_a_id;not null;uniqueIndex" json:"user_a_id"`
	// UserBID is the member that was second in the queue. The two unique
	// indexes are per column; storage.SaveSession rejects a user already
	// present in the other column.
	UserBID   string    `gorm:"column:user_b_id;not null;uniqueIndex" json:"user_b_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// NewChatSession creates a session row for a complete pair.
func NewChatSession(pair Pair, now time.Time) *ChatSession {
	return &ChatSession{
		ChatID:    uuid.New().String(),
		UserAID:   pair.first,
		UserBID:   pair.second,
		CreatedAt: now,
	}
}

// Pair returns the session's membership. It fails only for rows that were
// written outside NewChatSession.
func (s *ChatSession) Pair() (Pair, error) {
	return NewPair(s.UserAID, s.UserBID)
}
