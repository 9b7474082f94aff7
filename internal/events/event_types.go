package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCallCreated     EventType = "call_created"
	EventTicketCreated   EventType = "ticket_created"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventTicketResolved  EventType = "ticket_resolved"
	EventTicketCommented EventType = "ticket_commented"
)

// Event represents a domain event emitted by services after the change committed.
type Event struct {
	ID        string       `json:"id"`
	Type      EventType    `json:"type"`
	Actor     *domain.User `json:"-"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   interface{}  `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor *domain.User, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// CallCreatedPayload payload.
type CallCreatedPayload struct {
	Call domain.Call
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket
}

// TicketAssignedPayload payload. PreviousAssignee is nil when the ticket was unassigned.
type TicketAssignedPayload struct {
	Ticket           domain.Ticket
	PreviousAssignee *int64
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Ticket         domain.Ticket
	PreviousStatus domain.TicketStatus
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	Ticket  domain.Ticket
	Comment domain.TicketComment
}
