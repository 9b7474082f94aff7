package service

import "github.com/spec-kit/callcenter-service/internal/domain"

// NewCallRecipients selects supervisors when the call was logged by an agent. Calls
// logged by supervisors notify nobody.
func NewCallRecipients(creator *domain.User, supervisors []domain.User) []int64 {
	if !creator.IsAgent() {
		return nil
	}
	return userIDs(supervisors)
}

// NewTicketRecipients selects every supervisor.
func NewTicketRecipients(supervisors []domain.User) []int64 {
	return userIDs(supervisors)
}

// ResolvedRecipients selects the creator and assignee, minus the resolving user.
func ResolvedRecipients(ticket *domain.Ticket, actorID int64) []int64 {
	return without(ticket.Stakeholders(), actorID)
}

// AssignedRecipients selects the assignee, including a self-assigning actor.
func AssignedRecipients(ticket *domain.Ticket) []int64 {
	if ticket.AssignedTo == nil {
		return nil
	}
	return []int64{*ticket.AssignedTo}
}

// CommentRecipients selects the creator and assignee, minus the comment author.
func CommentRecipients(ticket *domain.Ticket, authorID int64) []int64 {
	return without(ticket.Stakeholders(), authorID)
}

func userIDs(users []domain.User) []int64 {
	ids := make([]int64, 0, len(users))
	seen := make(map[int64]struct{}, len(users))
	for _, u := range users {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}
	return ids
}

func without(ids []int64, exclude int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
