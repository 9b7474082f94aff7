package dto

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/opt/omitnull"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	CallID      null.Int64 `json:"call_id" validate:"omitempty,gt=0"`
	AssignedTo  null.Int64 `json:"assigned_to" validate:"omitempty,gt=0"`
	ClientName  string     `json:"client_name" validate:"required,max=255"`
	ClientPhone string     `json:"client_phone" validate:"required,max=20"`
	Subject     string     `json:"subject" validate:"required,max=255"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,ticket_priority"`
}

// UpdateTicketRequest payload for PUT /tickets/:id. call_id and assigned_to are cleared by
// sending null.
type UpdateTicketRequest struct {
	CallID      omitnull.Val[int64] `json:"call_id" validate:"omitempty,gt=0"`
	AssignedTo  omitnull.Val[int64] `json:"assigned_to" validate:"omitempty,gt=0"`
	ClientName  *string             `json:"client_name" validate:"omitempty,min=1,max=255"`
	ClientPhone *string             `json:"client_phone" validate:"omitempty,min=1,max=20"`
	Subject     *string             `json:"subject" validate:"omitempty,min=1,max=255"`
	Description *string             `json:"description" validate:"omitempty,min=1"`
	Priority    *string             `json:"priority" validate:"omitempty,ticket_priority"`
	Status      *string             `json:"status" validate:"omitempty,ticket_status"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID           int64                 `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	CallID       *int64                `json:"call_id"`
	CreatedBy    int64                 `json:"created_by"`
	AssignedTo   *int64                `json:"assigned_to"`
	ClientName   string                `json:"client_name"`
	ClientPhone  string                `json:"client_phone"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse adds the comment thread.
type TicketDetailResponse struct {
	TicketResponse
	Comments []CommentResponse `json:"comments"`
}

// CommentRequest payload for adding or editing a comment.
type CommentRequest struct {
	Comment string `json:"comment" validate:"required,max=5000"`
}

// CommentResponse is the public view of a ticket comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		CallID:       ticket.CallID,
		CreatedBy:    ticket.CreatedBy,
		AssignedTo:   ticket.AssignedTo,
		ClientName:   ticket.ClientName,
		ClientPhone:  ticket.ClientPhone,
		Subject:      ticket.Subject,
		Description:  ticket.Description,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		ResolvedAt:   ticket.ResolvedAt,
		ClosedAt:     ticket.ClosedAt,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

// NewTicketDetailResponse maps a ticket with its comments.
func NewTicketDetailResponse(ticket *domain.Ticket, comments []domain.TicketComment) TicketDetailResponse {
	return TicketDetailResponse{
		TicketResponse: NewTicketResponse(ticket),
		Comments:       Map(comments, NewCommentResponse),
	}
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		UserID:    comment.UserID,
		Comment:   comment.Comment,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
