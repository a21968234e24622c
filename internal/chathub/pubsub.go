package chathub

import (
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"encoding/json"
	"log"
)

const subscriberBuffer = 16

// publish sends an event to one user. Events only prompt a status poll, so a
// failed publish is logged and the operation that caused it still succeeds.
func publish(ctx context.Context, s storage.Storage, userID string, event models.QueueEvent) {
	if userID == "" {
		return
	}
	if err := s.PublishEvent(ctx, userID, event); err != nil {
		log.Printf("WARN: Failed to publish %s event to %s: %v", event.Type, userID, err)
	}
}

// Subscribe streams the user's queue events until ctx is done. The channel
// is closed when the subscription ends.
func (m *ManagerService) Subscribe(ctx context.Context, userID string) (<-chan models.QueueEvent, error) {
	pubsub := m.Storage.SubscribeUser(ctx, userID)
	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, classify("subscribe to queue events", err)
	}

	out := make(chan models.QueueEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.QueueEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("Error unmarshalling Redis message: %v", err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
