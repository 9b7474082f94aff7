package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishRunsEveryHandlerDespiteErrors(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var calls []string
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventTicketResolved, nil, TicketResolvedPayload{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestNewStampsIdentity(t *testing.T) {
	a := New(EventCallCreated, nil, nil)
	b := New(EventCallCreated, nil, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestPublishRecoversHandlerPanics(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	reached := false
	d.Subscribe(EventTicketCommented, func(context.Context, Event) error {
		panic("mail template missing")
	})
	d.Subscribe(EventTicketCommented, func(context.Context, Event) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() {
		require.NoError(t, d.Publish(context.Background(), New(EventTicketCommented, nil, nil)))
	})
	assert.True(t, reached)
}
