// Package access holds the single role and ownership policy consulted by every call,
// ticket, comment and notification action.
package access

import (
	"github.com/spec-kit/callcenter-service/internal/domain"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// CanAccessCall reports whether user may read or modify call. Supervisors see every call;
// agents only their own.
func CanAccessCall(user *domain.User, call *domain.Call) bool {
	if user == nil || call == nil {
		return false
	}
	return user.IsSupervisor() || call.UserID == user.ID
}

// CanAccessTicket reports whether user may read, update or comment on ticket. Agents must
// have created it or be its assignee.
func CanAccessTicket(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return user.IsSupervisor() || ticket.CreatedBy == user.ID || ticket.IsAssignedTo(user.ID)
}

// CanDeleteTicket allows supervisors and the ticket's creator.
func CanDeleteTicket(user *domain.User, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	return user.IsSupervisor() || ticket.CreatedBy == user.ID
}

// CanReopenTicket allows only supervisors to move a ticket out of closed.
func CanReopenTicket(user *domain.User) bool {
	return user.IsSupervisor()
}

// CanEditComment allows only the author.
func CanEditComment(user *domain.User, comment *domain.TicketComment) bool {
	return user != nil && comment != nil && comment.UserID == user.ID
}

// CanDeleteComment allows the author and supervisors.
func CanDeleteComment(user *domain.User, comment *domain.TicketComment) bool {
	if user == nil || comment == nil {
		return false
	}
	return user.IsSupervisor() || comment.UserID == user.ID
}

// CanAccessNotification holds regardless of role: notifications are private to the recipient.
func CanAccessNotification(user *domain.User, notification *domain.Notification) bool {
	return user != nil && notification != nil && notification.UserID == user.ID
}

// CallOwnerScope returns the owner filter for call listings, nil meaning unrestricted.
func CallOwnerScope(user *domain.User) *int64 {
	if user.IsSupervisor() {
		return nil
	}
	id := user.ID
	return &id
}

// TicketParticipantScope returns the participant filter for ticket listings, nil meaning
// unrestricted.
func TicketParticipantScope(user *domain.User) *int64 {
	return CallOwnerScope(user)
}

// Check converts a failed predicate into a Forbidden error.
func Check(allowed bool, message string) error {
	if allowed {
		return nil
	}
	return apperrors.NewForbidden(message)
}
