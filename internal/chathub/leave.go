package chathub

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"log"
)

// LeaveResult describes what a leave tore down. ChatID and PartnerID are
// empty when the caller was only waiting.
type LeaveResult struct {
	WasMatched bool   `json:"was_matched"`
	ChatID     string `json:"chat_id,omitempty"`
	PartnerID  string `json:"partner_id,omitempty"`
}

// LeaveCoordinator handles every voluntary exit from Waiting or Matched.
// Every path locks the session row before any queue row, so two partners
// leaving at once queue up on the same lock instead of deadlocking.
type LeaveCoordinator struct {
	Storage storage.Storage
}

func NewLeaveCoordinator(s storage.Storage) *LeaveCoordinator {
	return &LeaveCoordinator{Storage: s}
}

// FullLeave removes the user from the system. A matched user's session and
// messages are deleted and the partner goes back to Waiting, all in one commit.
func (c *LeaveCoordinator) FullLeave(ctx context.Context, userID string) (*LeaveResult, error) {
	if userID == "" {
		return nil, apperr.ErrMissingField
	}

	var result LeaveResult
	err := c.Storage.Transaction(ctx, func(tx storage.Storage) error {
		result = LeaveResult{}

		session, err := tx.LockSessionForUser(ctx, userID)
		if err != nil {
			return err
		}
		entry, err := tx.LockQueueEntry(ctx, userID)
		if err != nil {
			return err
		}
		if entry == nil {
			return apperr.ErrNotQueued
		}

		if entry.Available {
			_, err := tx.DeleteQueueEntry(ctx, userID)
			return err
		}

		if session == nil {
			// A tick may have paired the user between the two reads above.
			// The queue row lock now orders us after that commit.
			session, err = tx.LockSessionForUser(ctx, userID)
			if err != nil {
				return err
			}
			if session == nil {
				return apperr.ErrSessionNotFound
			}
		}
		partnerID, err := teardown(ctx, tx, session, userID)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteQueueEntry(ctx, userID); err != nil {
			return err
		}

		result = LeaveResult{WasMatched: true, ChatID: session.ChatID, PartnerID: partnerID}
		return nil
	})
	if err != nil {
		return nil, classify("leave queue", err)
	}

	if result.WasMatched {
		log.Printf("INFO: User %s left chat %s, partner %s requeued", userID, result.ChatID, result.PartnerID)
		publish(ctx, c.Storage, result.PartnerID, models.QueueEvent{Type: models.EventPartnerLeft, ChatID: result.ChatID})
	}
	return &result, nil
}

// SkipToNext ends the caller's chat and puts both members back in Waiting.
// otherUserID must be the caller's partner in chatID.
func (c *LeaveCoordinator) SkipToNext(ctx context.Context, chatID, callerID, otherUserID string) (*LeaveResult, error) {
	if chatID == "" || callerID == "" || otherUserID == "" {
		return nil, apperr.ErrMissingField
	}
	if callerID == otherUserID {
		return nil, apperr.ErrSelfReference
	}

	var result LeaveResult
	err := c.Storage.Transaction(ctx, func(tx storage.Storage) error {
		result = LeaveResult{}

		session, err := tx.LockSessionForUser(ctx, callerID)
		if err != nil {
			return err
		}
		if session == nil {
			return apperr.ErrNotMember
		}
		if session.ChatID != chatID {
			return apperr.ErrChatMismatch
		}
		pair, err := session.Pair()
		if err != nil {
			return apperr.Wrap(apperr.CodeConflict, apperr.ErrMalformedChat.Error(), err)
		}
		if partner, _ := pair.Partner(callerID); partner != otherUserID {
			return apperr.ErrPartnerMismatch
		}

		partnerID, err := teardown(ctx, tx, session, callerID)
		if err != nil {
			return err
		}
		requeued, err := tx.SetAvailability(ctx, callerID, true)
		if err != nil {
			return err
		}
		if requeued == 0 {
			return apperr.ErrEntryMissing
		}

		result = LeaveResult{WasMatched: true, ChatID: session.ChatID, PartnerID: partnerID}
		return nil
	})
	if err != nil {
		return nil, classify("skip to next", err)
	}

	log.Printf("INFO: User %s skipped chat %s, both members requeued", callerID, chatID)
	publish(ctx, c.Storage, result.PartnerID, models.QueueEvent{Type: models.EventPartnerLeft, ChatID: chatID})
	return &result, nil
}

// teardown purges the session's messages, deletes the session and requeues
// the partner. It must run inside a transaction that already holds the
// session row lock.
func teardown(ctx context.Context, tx storage.Storage, session *models.ChatSession, callerID string) (string, error) {
	pair, err := session.Pair()
	if err != nil {
		return "", apperr.Wrap(apperr.CodeConflict, apperr.ErrMalformedChat.Error(), err)
	}
	partnerID, ok := pair.Partner(callerID)
	if !ok {
		return "", apperr.ErrNotMember
	}

	if err := tx.DeleteMessages(ctx, session.ChatID); err != nil {
		return "", err
	}
	deleted, err := tx.DeleteSession(ctx, session.ChatID)
	if err != nil {
		return "", err
	}
	if deleted == 0 {
		return "", apperr.ErrSessionNotFound
	}

	requeued, err := tx.SetAvailability(ctx, partnerID, true)
	if err != nil {
		return "", err
	}
	if requeued == 0 {
		return "", apperr.ErrPartnerMissing
	}
	return partnerID, nil
}
