package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aarondl/opt/omitnull"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/access"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// NumberGenerator hands out ticket numbers.
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.TicketCommentRepository
	calls      repository.CallRepository
	users      repository.UserRepository
	numbers    NumberGenerator
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	CallRepo    repository.CallRepository
	UserRepo    repository.UserRepository
	Numbers     NumberGenerator
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		calls:      deps.CallRepo,
		users:      deps.UserRepo,
		numbers:    deps.Numbers,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CallID      *int64
	AssignedTo  *int64
	ClientName  string
	ClientPhone string
	Subject     string
	Description string
	Priority    domain.TicketPriority
}

// TicketPatch carries a partial ticket update. CallID and AssignedTo may be cleared by
// sending null.
type TicketPatch struct {
	CallID      omitnull.Val[int64]
	AssignedTo  omitnull.Val[int64]
	ClientName  *string
	ClientPhone *string
	Subject     *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// TicketListFilter narrows ticket listings.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	AssignedTo *int64
	CallID     *int64
	Search     *string
	Page       PageRequest
}

// CreateTicket opens a ticket on behalf of actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		CallID:      input.CallID,
		CreatedBy:   actor.ID,
		AssignedTo:  input.AssignedTo,
		ClientName:  strings.TrimSpace(input.ClientName),
		ClientPhone: strings.TrimSpace(input.ClientPhone),
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, ticket.CallID, ticket.AssignedTo); err != nil {
		return nil, err
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	ticket.TicketNumber = number

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if apperrors.IsUniqueViolation(err, repository.TicketNumberConstraint) {
			return nil, apperrors.NewConflict("ticket number already in use", map[string]any{"ticket_number": number})
		}
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.New(events.EventTicketCreated, actor, events.TicketCreatedPayload{Ticket: *ticket}))
	if ticket.AssignedTo != nil {
		publish(ctx, s.dispatcher, events.New(events.EventTicketAssigned, actor, events.TicketAssignedPayload{Ticket: *ticket}))
	}
	return ticket, nil
}

// UpdateTicket applies patch and emits resolved/assigned events for the edges crossed.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID int64, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	if err := access.Check(access.CanAccessTicket(actor, ticket), "ticket is not yours"); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssignedTo

	if patch.Status != nil && oldStatus == domain.TicketStatusClosed && *patch.Status != domain.TicketStatusClosed {
		if err := access.Check(access.CanReopenTicket(actor), "only supervisors can reopen closed tickets"); err != nil {
			return nil, err
		}
	}

	patch.apply(ticket)
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}
	var newCall, newAssignee *int64
	if !patch.CallID.IsUnset() {
		newCall = ticket.CallID
	}
	if !patch.AssignedTo.IsUnset() {
		newAssignee = ticket.AssignedTo
	}
	if err := s.checkReferences(ctx, actor, newCall, newAssignee); err != nil {
		return nil, err
	}
	stampStatusTimes(ticket, oldStatus, s.now())

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}

	if oldStatus != domain.TicketStatusResolved && ticket.Status == domain.TicketStatusResolved {
		publish(ctx, s.dispatcher, events.New(events.EventTicketResolved, actor, events.TicketResolvedPayload{
			Ticket:         *ticket,
			PreviousStatus: oldStatus,
		}))
	}
	if ticket.AssignedTo != nil && !sameID(oldAssignee, ticket.AssignedTo) {
		publish(ctx, s.dispatcher, events.New(events.EventTicketAssigned, actor, events.TicketAssignedPayload{
			Ticket:           *ticket,
			PreviousAssignee: oldAssignee,
		}))
	}
	return ticket, nil
}

// DeleteTicket removes a ticket and, by cascade, its comments.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID int64) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return notFoundOr(err, "ticket", ticketID)
	}
	if err := access.Check(access.CanDeleteTicket(actor, ticket), "only the creator or a supervisor can delete this ticket"); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return notFoundOr(err, "ticket", ticketID)
	}
	return nil
}

// GetTicket returns a visible ticket with its comments.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, []domain.TicketComment, error) {
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// ListTickets returns the page of tickets visible to actor and the total match count.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]domain.Ticket, int, error) {
	page := filter.Page.Normalize()
	tickets, total, err := s.tickets.List(ctx, repository.TicketFilter{
		ParticipantID: access.TicketParticipantScope(actor),
		AssignedTo:    filter.AssignedTo,
		CallID:        filter.CallID,
		Statuses:      filter.Statuses,
		Priorities:    filter.Priorities,
		SearchTerm:    filter.Search,
		Limit:         page.PageSize,
		Offset:        page.Offset(),
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// AddComment appends to the ticket's thread.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, text string) (*domain.TicketComment, error) {
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	text, err = validComment(text)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{TicketID: ticket.ID, UserID: actor.ID, Comment: text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, events.New(events.EventTicketCommented, actor, events.TicketCommentedPayload{
		Ticket:  *ticket,
		Comment: *comment,
	}))
	return comment, nil
}

// ListComments returns the ticket's thread, oldest first.
func (s *TicketService) ListComments(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.TicketComment, error) {
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// EditComment lets the author rewrite a comment.
func (s *TicketService) EditComment(ctx context.Context, actor *domain.User, ticketID, commentID int64, text string) (*domain.TicketComment, error) {
	comment, err := s.ticketComment(ctx, actor, ticketID, commentID)
	if err != nil {
		return nil, err
	}
	if err := access.Check(access.CanEditComment(actor, comment), "only the author can edit this comment"); err != nil {
		return nil, err
	}
	if comment.Comment, err = validComment(text); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, notFoundOr(err, "comment", commentID)
	}
	return comment, nil
}

// DeleteComment removes a comment; authors and supervisors only.
func (s *TicketService) DeleteComment(ctx context.Context, actor *domain.User, ticketID, commentID int64) error {
	comment, err := s.ticketComment(ctx, actor, ticketID, commentID)
	if err != nil {
		return err
	}
	if err := access.Check(access.CanDeleteComment(actor, comment), "only the author or a supervisor can delete this comment"); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return notFoundOr(err, "comment", commentID)
	}
	return nil
}

func (s *TicketService) visibleTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", ticketID)
	}
	if err := access.Check(access.CanAccessTicket(actor, ticket), "ticket is not yours"); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ticketComment loads a comment and verifies it hangs off a ticket visible to actor.
func (s *TicketService) ticketComment(ctx context.Context, actor *domain.User, ticketID, commentID int64) (*domain.TicketComment, error) {
	if _, err := s.visibleTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "comment", commentID)
	}
	if comment.TicketID != ticketID {
		return nil, apperrors.NewNotFound("comment", map[string]any{"id": commentID})
	}
	return comment, nil
}

// checkReferences verifies that a newly set call and assignee exist. Agents may only
// link calls they own.
func (s *TicketService) checkReferences(ctx context.Context, actor *domain.User, callID, assigneeID *int64) error {
	fields := map[string]string{}
	if callID != nil {
		call, err := s.calls.GetByID(ctx, *callID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			fields["call_id"] = "does not exist"
		case err != nil:
			return apperrors.MapError(err)
		case !access.CanAccessCall(actor, call):
			return apperrors.NewForbidden("call belongs to another agent")
		}
	}
	if assigneeID != nil {
		if _, err := s.users.GetByID(ctx, *assigneeID); errors.Is(err, pgx.ErrNoRows) {
			fields["assigned_to"] = "does not exist"
		} else if err != nil {
			return apperrors.MapError(err)
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid ticket references", fields)
	}
	return nil
}

func (p TicketPatch) apply(ticket *domain.Ticket) {
	if !p.CallID.IsUnset() {
		ticket.CallID = optionalPtr(p.CallID)
	}
	if !p.AssignedTo.IsUnset() {
		ticket.AssignedTo = optionalPtr(p.AssignedTo)
	}
	if p.ClientName != nil {
		ticket.ClientName = strings.TrimSpace(*p.ClientName)
	}
	if p.ClientPhone != nil {
		ticket.ClientPhone = strings.TrimSpace(*p.ClientPhone)
	}
	if p.Subject != nil {
		ticket.Subject = strings.TrimSpace(*p.Subject)
	}
	if p.Description != nil {
		ticket.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		ticket.Priority = *p.Priority
	}
	if p.Status != nil {
		ticket.Status = *p.Status
	}
}

// stampStatusTimes records when a ticket was resolved or closed and clears the stamps once
// it returns to an open state.
func stampStatusTimes(ticket *domain.Ticket, old domain.TicketStatus, now time.Time) {
	switch ticket.Status {
	case domain.TicketStatusResolved:
		if old != domain.TicketStatusResolved {
			ticket.ResolvedAt = &now
		}
		ticket.ClosedAt = nil
	case domain.TicketStatusClosed:
		if old != domain.TicketStatusClosed {
			ticket.ClosedAt = &now
		}
	default:
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
	}
}

func validateTicket(ticket *domain.Ticket) error {
	fields := map[string]string{}
	if ticket.ClientName == "" {
		fields["client_name"] = "is required"
	}
	if ticket.ClientPhone == "" {
		fields["client_phone"] = "is required"
	}
	if ticket.Subject == "" {
		fields["subject"] = "is required"
	}
	if ticket.Description == "" {
		fields["description"] = "is required"
	}
	switch ticket.Priority {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
	default:
		fields["priority"] = "must be one of low medium high urgent"
	}
	switch ticket.Status {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusPending,
		domain.TicketStatusResolved, domain.TicketStatusClosed:
	default:
		fields["status"] = "must be one of open in-progress pending resolved closed"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid ticket", fields)
	}
	return nil
}

func validComment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewValidationError("invalid comment", map[string]string{"comment": "is required"})
	}
	return text, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
