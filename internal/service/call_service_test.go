package service

import (
	"context"
	"testing"

	"github.com/aarondl/opt/omitnull"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func TestActivatingCallPutsSiblingOnHold(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	c1 := h.newCall(t, h.agentA, domain.CallStatusActive)
	c2 := h.newCall(t, h.agentA, domain.CallStatusIncoming)

	active := domain.CallStatusActive
	updated, err := h.calls.UpdateCall(ctx, h.agentA, c2.ID, CallPatch{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusActive, updated.Status)

	stored, ok := h.store.Call(c1.ID)
	require.True(t, ok)
	assert.Equal(t, domain.CallStatusOnHold, stored.Status)

	all, total, err := h.calls.ListCalls(ctx, h.supervisor, CallListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	none, total, err := h.calls.ListCalls(ctx, h.agentB, CallListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	_, err = h.calls.UpdateCall(ctx, h.agentB, c1.ID, CallPatch{Subject: strPtr("hijack")})
	requireCode(t, err, "FORBIDDEN")
}

func TestCreatingActiveCallHoldsPreviousActive(t *testing.T) {
	h := newHarness(t)

	first := h.newCall(t, h.agentA, domain.CallStatusActive)
	other := h.newCall(t, h.agentB, domain.CallStatusActive)
	h.newCall(t, h.agentA, domain.CallStatusActive)

	stored, _ := h.store.Call(first.ID)
	assert.Equal(t, domain.CallStatusOnHold, stored.Status)

	untouched, _ := h.store.Call(other.ID)
	assert.Equal(t, domain.CallStatusActive, untouched.Status, "other agents' calls are independent")
}

func TestCreateCallDefaultsToIncoming(t *testing.T) {
	h := newHarness(t)
	call := h.newCall(t, h.agentA, "")
	assert.Equal(t, domain.CallStatusIncoming, call.Status)
	assert.Equal(t, h.agentA.ID, call.UserID)
}

func TestCreateCallValidation(t *testing.T) {
	h := newHarness(t)
	rating := 6
	duration := -1
	_, err := h.calls.CreateCall(context.Background(), h.agentA, CallCreateInput{
		CallTime:           testNow,
		ClientName:         "  ",
		ClientPhone:        "555",
		Subject:            "x",
		CallType:           "fax",
		DurationSeconds:    &duration,
		SatisfactionRating: &rating,
	})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestCreateCallNotifiesSupervisorsOnlyForAgents(t *testing.T) {
	h := newHarness(t)

	call := h.newCall(t, h.agentA, domain.CallStatusIncoming)
	notes := h.notificationsFor(h.supervisor.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationNewCall, notes[0].Type)
	assert.Equal(t, domain.RelatedToCall(call.ID), notes[0].Related)

	h.newCall(t, h.supervisor, domain.CallStatusIncoming)
	assert.Len(t, h.notificationsFor(h.supervisor.ID), 1, "supervisor calls notify nobody")
}

func TestUpdateCallClearsNullableFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	call := h.newCall(t, h.agentA, domain.CallStatusEnded)

	updated, err := h.calls.UpdateCall(ctx, h.agentA, call.ID, CallPatch{
		DurationSeconds:    omitnull.From(120),
		Notes:              omitnull.From("  follow up  "),
		SatisfactionRating: omitnull.From(4),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.DurationSeconds)
	assert.Equal(t, 120, *updated.DurationSeconds)
	assert.Equal(t, "follow up", *updated.Notes)

	updated, err = h.calls.UpdateCall(ctx, h.agentA, call.ID, CallPatch{
		Notes:              omitnull.FromPtr[string](nil),
		SatisfactionRating: omitnull.FromPtr[int](nil),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Notes)
	assert.Nil(t, updated.SatisfactionRating)
	assert.Equal(t, 120, *updated.DurationSeconds, "unset fields are left alone")
}

func TestDeleteCallKeepsTicketsUnlinked(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	call := h.newCall(t, h.agentA, domain.CallStatusEnded)

	ticket, err := h.tickets.CreateTicket(ctx, h.agentA, TicketCreateInput{
		CallID:      &call.ID,
		ClientName:  "Acme Corp",
		ClientPhone: "555",
		Subject:     "Refund",
		Description: "Customer wants a refund",
	})
	require.NoError(t, err)

	err = h.calls.DeleteCall(ctx, h.agentB, call.ID)
	requireCode(t, err, "FORBIDDEN")

	require.NoError(t, h.calls.DeleteCall(ctx, h.agentA, call.ID))
	stored, ok := h.store.Ticket(ticket.ID)
	require.True(t, ok)
	assert.Nil(t, stored.CallID)

	_, err = h.calls.GetCall(ctx, h.agentA, call.ID)
	requireCode(t, err, "NOT_FOUND")
}

func TestSupervisorCanReadAnyCall(t *testing.T) {
	h := newHarness(t)
	call := h.newCall(t, h.agentA, domain.CallStatusIncoming)

	got, err := h.calls.GetCall(context.Background(), h.supervisor, call.ID)
	require.NoError(t, err)
	assert.Equal(t, call.ID, got.ID)

	_, err = h.calls.GetCall(context.Background(), h.agentB, call.ID)
	requireCode(t, err, "FORBIDDEN")
}
