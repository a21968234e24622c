package chathub

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

type QueueState string

const (
	StateNotQueued QueueState = "not_queued"
	StateWaiting   QueueState = "waiting"
	StateMatched   QueueState = "matched"
)

// Participant is a directory summary of one chat member.
type Participant struct {
	UserID       string                    `json:"user_id"`
	Username     string                    `json:"username"`
	Description  string                    `json:"description"`
	MemberSince  time.Time                 `json:"member_since"`
	IsSelf       bool                      `json:"is_self"`
	Relationship models.RelationshipStatus `json:"relationship,omitempty"`
}

// Status is the discriminated view of a user's place in the queue. QueueSize
// is set only when Waiting; the chat fields only when Matched.
type Status struct {
	State        QueueState           `json:"state"`
	QueueSize    int64                `json:"queue_size,omitempty"`
	ChatID       string               `json:"chat_id,omitempty"`
	Participants []Participant        `json:"participants,omitempty"`
	Messages     []models.ChatMessage `json:"messages,omitempty"`
}

// StatusResolver answers status polls. It never writes. Concurrent polls
// for the same user share one lookup.
type StatusResolver struct {
	Storage      storage.Storage
	HistoryLimit int

	group singleflight.Group
}

func NewStatusResolver(s storage.Storage, historyLimit int) *StatusResolver {
	if historyLimit <= 0 {
		historyLimit = config.DefaultHistoryLimit
	}
	return &StatusResolver{Storage: s, HistoryLimit: historyLimit}
}

// Resolve returns the user's current state. The returned Status may be
// shared with concurrent callers and must not be modified.
func (r *StatusResolver) Resolve(ctx context.Context, userID string) (*Status, error) {
	if userID == "" {
		return nil, apperr.ErrMissingField
	}

	// The shared lookup outlives any one caller, so it must not inherit the
	// first caller's cancellation. Each caller still stops waiting on its own ctx.
	ch := r.group.DoChan(userID, func() (interface{}, error) {
		return r.resolve(context.WithoutCancel(ctx), userID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, classify("resolve status", res.Err)
		}
		return res.Val.(*Status), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *StatusResolver) resolve(ctx context.Context, userID string) (*Status, error) {
	entry, err := r.Storage.GetQueueEntry(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &Status{State: StateNotQueued}, nil
	}

	if entry.Available {
		size, err := r.Storage.CountAvailable(ctx)
		if err != nil {
			return nil, err
		}
		return &Status{State: StateWaiting, QueueSize: size}, nil
	}

	session, err := r.Storage.GetSessionForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		// Claimed but no session: a teardown is committing. The next poll settles it.
		log.Printf("WARN: User %s is claimed but has no session", userID)
		return &Status{State: StateMatched}, nil
	}

	participants, err := r.participants(ctx, session, userID)
	if err != nil {
		return nil, err
	}

	history, err := r.Storage.GetRecentMessages(ctx, session.ChatID, r.HistoryLimit)
	if err != nil {
		return nil, err
	}
	messages := make([]models.ChatMessage, 0, len(history))
	for i := range history {
		messages = append(messages, history[i].ToChatMessage())
	}

	return &Status{
		State:        StateMatched,
		ChatID:       session.ChatID,
		Participants: participants,
		Messages:     messages,
	}, nil
}

// participants resolves both session slots. A slot that is empty or has no
// directory row is left out.
func (r *StatusResolver) participants(ctx context.Context, session *models.ChatSession, viewerID string) ([]Participant, error) {
	ids := make([]string, 0, 2)
	for _, id := range []string{session.UserAID, session.UserBID} {
		if id != "" {
			ids = append(ids, id)
		}
	}

	users, err := r.Storage.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	result := make([]Participant, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		p := Participant{
			UserID:      u.ID,
			Username:    u.Username,
			Description: u.Description,
			MemberSince: u.CreatedAt,
			IsSelf:      id == viewerID,
		}
		if !p.IsSelf {
			rel, err := r.Storage.GetRelationship(ctx, viewerID, id)
			if err != nil {
				return nil, err
			}
			p.Relationship = rel
		}
		result = append(result, p)
	}
	return result, nil
}
