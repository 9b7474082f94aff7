package domain

import "time"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationNewCall   NotificationType = "new_call"
	NotificationNewTicket NotificationType = "new_ticket"
	NotificationAssigned  NotificationType = "assigned"
	NotificationResolved  NotificationType = "resolved"
	NotificationComment   NotificationType = "comment"
)

// RelatedKind discriminates RelatedEntity.
type RelatedKind string

const (
	RelatedNone   RelatedKind = ""
	RelatedCall   RelatedKind = "call"
	RelatedTicket RelatedKind = "ticket"
)

// RelatedEntity points a notification at the call or ticket it concerns.
type RelatedEntity struct {
	Kind RelatedKind
	ID   int64
}

// NoRelated is the empty reference.
var NoRelated = RelatedEntity{}

// RelatedToCall references a call.
func RelatedToCall(id int64) RelatedEntity {
	return RelatedEntity{Kind: RelatedCall, ID: id}
}

// RelatedToTicket references a ticket.
func RelatedToTicket(id int64) RelatedEntity {
	return RelatedEntity{Kind: RelatedTicket, ID: id}
}

// IsNone reports whether the reference is empty.
func (r RelatedEntity) IsNone() bool {
	return r.Kind == RelatedNone
}

// Notification is a message addressed to exactly one user.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      NotificationType
	Related   RelatedEntity
	Read      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
