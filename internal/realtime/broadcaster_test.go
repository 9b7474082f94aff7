package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

type recordingPublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.payload, _ = message.([]byte)
	return redis.NewIntResult(1, p.err)
}

func TestBroadcastPublishesToRecipientChannel(t *testing.T) {
	pub := &recordingPublisher{}
	b := NewRedisBroadcaster(pub, "notifications:user:")

	err := b.Broadcast(context.Background(), domain.Notification{
		ID:      3,
		UserID:  12,
		Title:   "Ticket resolved",
		Type:    domain.NotificationResolved,
		Related: domain.RelatedToTicket(44),
	})
	require.NoError(t, err)
	assert.Equal(t, "notifications:user:12", pub.channel)

	var env Envelope
	require.NoError(t, json.Unmarshal(pub.payload, &env))
	assert.Equal(t, int64(3), env.ID)
	require.NotNil(t, env.RelatedType)
	assert.Equal(t, "ticket", *env.RelatedType)
	assert.Equal(t, int64(44), *env.RelatedID)
}

func TestBroadcastOmitsEmptyRelation(t *testing.T) {
	pub := &recordingPublisher{}
	b := NewRedisBroadcaster(pub, "n:")

	require.NoError(t, b.Broadcast(context.Background(), domain.Notification{UserID: 1}))
	assert.Contains(t, string(pub.payload), `"related_type":null`)
}

func TestBroadcastReturnsPublishError(t *testing.T) {
	b := NewRedisBroadcaster(&recordingPublisher{err: errors.New("down")}, "n:")
	assert.Error(t, b.Broadcast(context.Background(), domain.Notification{UserID: 1}))
}
