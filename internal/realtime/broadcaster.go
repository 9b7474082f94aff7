// Package realtime publishes freshly written notifications for push-capable clients.
// Polling GET /notifications remains the delivery contract; this is a best-effort hook.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// Broadcaster announces a notification to its recipient's channel.
type Broadcaster interface {
	Broadcast(ctx context.Context, notification domain.Notification) error
}

// Publisher is the part of the go-redis client used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Envelope is the JSON document published per notification.
type Envelope struct {
	ID          int64                   `json:"id"`
	UserID      int64                   `json:"user_id"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	Type        domain.NotificationType `json:"type"`
	RelatedType *string                 `json:"related_type"`
	RelatedID   *int64                  `json:"related_id"`
	CreatedAt   time.Time               `json:"created_at"`
}

// RedisBroadcaster publishes envelopes on "<prefix><user id>".
type RedisBroadcaster struct {
	client Publisher
	prefix string
}

// NewRedisBroadcaster builds a broadcaster over client.
func NewRedisBroadcaster(client Publisher, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, prefix: prefix}
}

// Channel returns the channel name for userID.
func (b *RedisBroadcaster) Channel(userID int64) string {
	return fmt.Sprintf("%s%d", b.prefix, userID)
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, n domain.Notification) error {
	env := Envelope{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt,
	}
	if !n.Related.IsNone() {
		kind := string(n.Related.Kind)
		id := n.Related.ID
		env.RelatedType, env.RelatedID = &kind, &id
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.Channel(n.UserID), payload).Err()
}

// NopBroadcaster discards notifications.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(context.Context, domain.Notification) error { return nil }
