package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func TestNotificationOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.newTicket(t, h.agentA, &h.agentB.ID)

	notes := h.notificationsFor(h.agentB.ID)
	require.Len(t, notes, 1)
	id := notes[0].ID

	_, err := h.notifications.MarkRead(ctx, h.agentA, id)
	requireCode(t, err, "FORBIDDEN")
	err = h.notifications.Delete(ctx, h.supervisor, id)
	requireCode(t, err, "FORBIDDEN")

	read, err := h.notifications.MarkRead(ctx, h.agentB, id)
	require.NoError(t, err)
	assert.True(t, read.Read)

	// Marking twice is harmless.
	_, err = h.notifications.MarkRead(ctx, h.agentB, id)
	require.NoError(t, err)

	_, err = h.notifications.MarkRead(ctx, h.agentB, 424242)
	requireCode(t, err, "NOT_FOUND")
}

func TestNotificationListAndCounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		h.newTicket(t, h.agentA, &h.agentB.ID)
	}

	page, err := h.notifications.List(ctx, h.agentB, false, PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 3, page.Unread)
	require.Len(t, page.Items, 2)
	assert.Greater(t, page.Items[0].ID, page.Items[1].ID, "newest first")

	_, err = h.notifications.MarkRead(ctx, h.agentB, page.Items[0].ID)
	require.NoError(t, err)

	unreadOnly, err := h.notifications.List(ctx, h.agentB, true, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, unreadOnly.Total)

	changed, err := h.notifications.MarkAllRead(ctx, h.agentB)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	count, err := h.notifications.UnreadCount(ctx, h.agentB)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Supervisors' rows are untouched.
	count, err = h.notifications.UnreadCount(ctx, h.supervisor)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeleteAllNotifications(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.newTicket(t, h.agentA, &h.agentB.ID)
	h.newTicket(t, h.agentA, &h.agentB.ID)

	first := h.notificationsFor(h.agentB.ID)[0]
	_, err := h.notifications.MarkRead(ctx, h.agentB, first.ID)
	require.NoError(t, err)

	deleted, err := h.notifications.DeleteAll(ctx, h.agentB, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = h.notifications.DeleteAll(ctx, h.agentB, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.Empty(t, h.notificationsFor(h.agentB.ID))
}

func TestNotificationFailuresDoNotFailTheWrite(t *testing.T) {
	h := newHarness(t)
	h.store.FailNotificationWrites = errors.New("disk full")
	h.broadcasts.Err = errors.New("redis down")
	h.mails.Full = true

	ticket := h.newTicket(t, h.agentA, &h.agentB.ID)
	_, ok := h.store.Ticket(ticket.ID)
	assert.True(t, ok)
	assert.Empty(t, h.store.AllNotifications())
}

func TestWrittenNotificationsAreBroadcast(t *testing.T) {
	h := newHarness(t)
	h.newTicket(t, h.agentA, &h.agentB.ID)

	sent := h.broadcasts.Sent()
	require.Len(t, sent, 2)
	for _, n := range sent {
		assert.NotZero(t, n.ID)
	}
}

func TestPurgeRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.newTicket(t, h.agentA, &h.agentB.ID)
	note := h.notificationsFor(h.agentB.ID)[0]
	_, err := h.notifications.MarkRead(ctx, h.agentB, note.ID)
	require.NoError(t, err)

	deleted, err := h.notifications.PurgeRead(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted, "recently read rows are kept")

	deleted, err = h.notifications.PurgeRead(ctx, time.Nanosecond)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = h.notifications.PurgeRead(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestNotificationMessagesNameTheActor(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.agentA, nil)

	notes := h.notificationsFor(h.supervisor.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationNewTicket, notes[0].Type)
	assert.Contains(t, notes[0].Message, h.agentA.Name)
	assert.Contains(t, notes[0].Message, ticket.TicketNumber)
}

func TestResolutionEmailNamesTheResolver(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.agentA, &h.agentB.ID)

	resolved := domain.TicketStatusResolved
	_, err := h.tickets.UpdateTicket(context.Background(), h.supervisor, ticket.ID, TicketPatch{Status: &resolved})
	require.NoError(t, err)

	var bodies []string
	for _, msg := range h.mails.Messages() {
		if strings.HasSuffix(msg.Subject, "resolved") {
			bodies = append(bodies, msg.HTMLBody)
		}
	}
	require.Len(t, bodies, 2, "creator and assignee")
	for _, body := range bodies {
		assert.Contains(t, body, "Resolved by:</strong> "+h.supervisor.Name)
		assert.NotContains(t, body, "Resolved by:</strong> "+h.agentB.Name)
	}
}
