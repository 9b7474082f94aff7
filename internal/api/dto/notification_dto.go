package dto

import (
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// NotificationResponse is the recipient's view of a notification.
type NotificationResponse struct {
	ID          int64                   `json:"id"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	Type        domain.NotificationType `json:"type"`
	RelatedType *domain.RelatedKind     `json:"related_type"`
	RelatedID   *int64                  `json:"related_id"`
	Read        bool                    `json:"read"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NotificationMeta extends page metadata with the polling contract.
type NotificationMeta struct {
	PageMeta
	Unread           int `json:"unread"`
	PollAfterSeconds int `json:"poll_after_seconds"`
}

// NotificationListResponse is the body of GET /notifications.
type NotificationListResponse struct {
	Data []NotificationResponse `json:"data"`
	Meta NotificationMeta       `json:"meta"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if !n.Related.IsNone() {
		kind, id := n.Related.Kind, n.Related.ID
		resp.RelatedType = &kind
		resp.RelatedID = &id
	}
	return resp
}
