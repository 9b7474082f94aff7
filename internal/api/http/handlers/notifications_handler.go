package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// NotificationsHandler serves the recipient's notification inbox. Clients poll GET
// /notifications every poll_after_seconds and replace their list with the response.
type NotificationsHandler struct {
	service          *service.NotificationService
	pollAfterSeconds int
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService, pollAfterSeconds int) *NotificationsHandler {
	if pollAfterSeconds <= 0 {
		pollAfterSeconds = 30
	}
	return &NotificationsHandler{service: notificationService, pollAfterSeconds: pollAfterSeconds}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	page := pageRequest(c)
	result, err := h.service.List(c.UserContext(), user, c.QueryBool("unread", false), page)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(dto.NotificationListResponse{
		Data: dto.Map(result.Items, dto.NewNotificationResponse),
		Meta: dto.NotificationMeta{
			PageMeta:         pageMeta(page, result.Total),
			Unread:           result.Unread,
			PollAfterSeconds: h.pollAfterSeconds,
		},
	})
}

// UnreadCount GET /notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	count, err := h.service.UnreadCount(c.UserContext(), user)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": fiber.Map{"unread": count}})
}

// MarkRead PUT|POST /notifications/:id.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	notification, err := h.service.MarkRead(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.NotificationResponse]{Data: dto.NewNotificationResponse(notification)})
}

// MarkAllRead PUT /notifications.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	updated, err := h.service.MarkAllRead(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}

// Delete DELETE /notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

// DeleteAll DELETE /notifications, only read ones with ?read=true.
func (h *NotificationsHandler) DeleteAll(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.DeleteAll(c.UserContext(), user, c.QueryBool("read", false))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": deleted}})
}
