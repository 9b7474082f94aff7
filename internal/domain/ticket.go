package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket is a support request, optionally raised from a call.
type Ticket struct {
	ID           int64
	TicketNumber string
	CallID       *int64
	CreatedBy    int64
	AssignedTo   *int64
	ClientName   string
	ClientPhone  string
	Subject      string
	Description  string
	Priority     TicketPriority
	Status       TicketStatus
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAssignedTo reports whether userID is the current assignee.
func (t *Ticket) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// Stakeholders returns the creator and, when set and different, the assignee.
func (t *Ticket) Stakeholders() []int64 {
	ids := []int64{t.CreatedBy}
	if t.AssignedTo != nil && *t.AssignedTo != t.CreatedBy {
		ids = append(ids, *t.AssignedTo)
	}
	return ids
}
