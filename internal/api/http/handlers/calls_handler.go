package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/api/validation"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// CallsHandler manages call endpoints.
type CallsHandler struct {
	service   *service.CallService
	validator *validation.Validator
}

// NewCallsHandler constructs handler.
func NewCallsHandler(callService *service.CallService, validator *validation.Validator) *CallsHandler {
	return &CallsHandler{service: callService, validator: validator}
}

// ListCalls GET /calls.
func (h *CallsHandler) ListCalls(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	filter := service.CallListFilter{Page: pageRequest(c)}
	for _, s := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.CallStatus(s))
	}
	if filter.From, err = parseTime(c, "from"); err != nil {
		return err
	}
	if filter.To, err = parseTime(c, "to"); err != nil {
		return err
	}

	calls, total, err := h.service.ListCalls(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListResponse[dto.CallResponse]{
		Data: dto.Map(calls, dto.NewCallResponse),
		Meta: pageMeta(filter.Page, total),
	})
}

// CreateCall POST /calls.
func (h *CallsHandler) CreateCall(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCallRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	call, err := h.service.CreateCall(c.UserContext(), user, service.CallCreateInput{
		CallTime:           *req.CallTime,
		DurationSeconds:    req.Duration.Ptr(),
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		Subject:            req.Subject,
		Notes:              req.Notes.Ptr(),
		CallType:           domain.CallType(req.CallType),
		Status:             domain.CallStatus(req.Status),
		SatisfactionRating: req.SatisfactionRating.Ptr(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.CallResponse]{Data: dto.NewCallResponse(call)})
}

// GetCall GET /calls/:id.
func (h *CallsHandler) GetCall(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	call, err := h.service.GetCall(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.CallResponse]{Data: dto.NewCallResponse(call)})
}

// UpdateCall PUT /calls/:id.
func (h *CallsHandler) UpdateCall(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCallRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	patch := service.CallPatch{
		CallTime:           req.CallTime,
		DurationSeconds:    req.Duration,
		ClientName:         req.ClientName,
		ClientPhone:        req.ClientPhone,
		Subject:            req.Subject,
		Notes:              req.Notes,
		SatisfactionRating: req.SatisfactionRating,
	}
	if req.CallType != nil {
		t := domain.CallType(*req.CallType)
		patch.CallType = &t
	}
	if req.Status != nil {
		s := domain.CallStatus(*req.Status)
		patch.Status = &s
	}

	call, err := h.service.UpdateCall(c.UserContext(), user, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.CallResponse]{Data: dto.NewCallResponse(call)})
}

// DeleteCall DELETE /calls/:id.
func (h *CallsHandler) DeleteCall(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteCall(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}
