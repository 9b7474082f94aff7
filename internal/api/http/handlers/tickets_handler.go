package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/api/validation"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// TicketsHandler manages ticket and comment endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	validator *validation.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validator *validation.Validator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validator: validator}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, total, err := h.service.ListTickets(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse[dto.TicketResponse]{
		Data: dto.Map(tickets, dto.NewTicketResponse),
		Meta: pageMeta(filter.Page, total),
	})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), user, service.TicketCreateInput{
		CallID:      req.CallID.Ptr(),
		AssignedTo:  req.AssignedTo.Ptr(),
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.TicketResponse]{Data: dto.NewTicketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, comments, err := h.service.GetTicket(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.TicketDetailResponse]{Data: dto.NewTicketDetailResponse(ticket, comments)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	patch := service.TicketPatch{
		CallID:      req.CallID,
		AssignedTo:  req.AssignedTo,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Subject:     req.Subject,
		Description: req.Description,
	}
	if req.Priority != nil {
		p := domain.TicketPriority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		s := domain.TicketStatus(*req.Status)
		patch.Status = &s
	}

	ticket, err := h.service.UpdateTicket(c.UserContext(), user, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.TicketResponse]{Data: dto.NewTicketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

// ListComments GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[[]dto.CommentResponse]{Data: dto.Map(comments, dto.NewCommentResponse)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), user, id, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.CommentResponse]{Data: dto.NewCommentResponse(comment)})
}

// EditComment PUT /tickets/:id/comments/:commentId.
func (h *TicketsHandler) EditComment(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	ticketID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	comment, err := h.service.EditComment(c.UserContext(), user, ticketID, commentID, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.CommentResponse]{Data: dto.NewCommentResponse(comment)})
}

// DeleteComment DELETE /tickets/:id/comments/:commentId.
func (h *TicketsHandler) DeleteComment(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	ticketID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.UserContext(), user, ticketID, commentID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": commentID, "deleted": true}})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{Page: pageRequest(c)}
	for _, s := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
	}
	for _, p := range splitList(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	var err error
	if filter.AssignedTo, err = parseOptionalID(c, "assigned_to"); err != nil {
		return filter, err
	}
	if filter.CallID, err = parseOptionalID(c, "call_id"); err != nil {
		return filter, err
	}
	return filter, nil
}
