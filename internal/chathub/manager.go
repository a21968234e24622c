package chathub

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

// ManagerService is the request-facing side of the queue. It owns joins and
// messages and delegates status and leaves to their coordinators. It never
// creates sessions; only the MatcherService does.
type ManagerService struct {
	Storage storage.Storage
	Status  *StatusResolver
	Leave   *LeaveCoordinator
	Now     func() time.Time
}

func NewManagerService(s storage.Storage, historyLimit int) *ManagerService {
	return &ManagerService{
		Storage: s,
		Status:  NewStatusResolver(s, historyLimit),
		Leave:   NewLeaveCoordinator(s),
		Now:     time.Now,
	}
}

// Join puts the user in the pool as Waiting.
func (m *ManagerService) Join(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.ErrMissingField
	}

	banned, err := m.Storage.IsUserBanned(ctx, userID)
	if err != nil {
		return classify("check ban", err)
	}
	if banned {
		return apperr.ErrBanned
	}

	created, err := m.Storage.CreateQueueEntry(ctx, models.NewQueueEntry(userID, m.Now()))
	if err != nil {
		return classify("join queue", err)
	}
	if !created {
		return apperr.ErrAlreadyQueued
	}
	log.Printf("INFO: User %s joined the queue", userID)
	return nil
}

// ResolveStatus returns the user's NotQueued, Waiting or Matched view.
func (m *ManagerService) ResolveStatus(ctx context.Context, userID string) (*Status, error) {
	return m.Status.Resolve(ctx, userID)
}

// Send appends a message to chatID on behalf of a current member and pushes
// it to both members.
func (m *ManagerService) Send(ctx context.Context, chatID, userID, content string) (*models.ChatMessage, error) {
	if chatID == "" || userID == "" {
		return nil, apperr.ErrMissingField
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > config.MaxMessageLength {
		return nil, apperr.ErrMessageTooLong
	}

	var (
		saved   models.ChatMessage
		members [2]string
	)
	// The session lock orders the insert against a concurrent teardown, so a
	// message is never written after its session's messages were purged.
	err := m.Storage.Transaction(ctx, func(tx storage.Storage) error {
		session, err := tx.LockSessionForUser(ctx, userID)
		if err != nil {
			return err
		}
		if session == nil || session.ChatID != chatID {
			return apperr.ErrNotMember
		}
		pair, err := session.Pair()
		if err != nil {
			return apperr.Wrap(apperr.CodeConflict, apperr.ErrMalformedChat.Error(), err)
		}

		history := &models.ChatHistory{
			ChatID:   chatID,
			SenderID: userID,
			Content:  content,
			Type:     config.MessageTypeText,
		}
		if err := tx.SaveMessage(ctx, history); err != nil {
			return err
		}
		saved = history.ToChatMessage()
		members = pair.Members()
		return nil
	})
	if err != nil {
		return nil, classify("send message", err)
	}

	for _, id := range members {
		publish(ctx, m.Storage, id, models.QueueEvent{Type: models.EventMessage, ChatID: chatID, Message: &saved})
	}
	return &saved, nil
}

// SkipToNext ends the caller's chat and requeues both members.
func (m *ManagerService) SkipToNext(ctx context.Context, chatID, callerID, otherUserID string) (*LeaveResult, error) {
	return m.Leave.SkipToNext(ctx, chatID, callerID, otherUserID)
}

// FullLeave removes the caller from the system and requeues any partner.
func (m *ManagerService) FullLeave(ctx context.Context, userID string) (*LeaveResult, error) {
	return m.Leave.FullLeave(ctx, userID)
}

// RegisterUser adds an anonymous user to the directory.
func (m *ManagerService) RegisterUser(ctx context.Context, user *models.User) error {
	if user == nil || user.Username == "" {
		return apperr.ErrMissingField
	}
	return classify("register user", m.Storage.SaveUser(ctx, user))
}

// Ping checks the database the queue depends on.
func (m *ManagerService) Ping(ctx context.Context) error {
	return classify("ping database", m.Storage.Ping(ctx))
}

// classify leaves typed errors alone and wraps anything else as a storage failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(op+" failed", err)
}
