package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/access"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/mailer"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/realtime"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// MailQueue accepts messages for asynchronous delivery. Enqueue reports false when the
// message was dropped.
type MailQueue interface {
	Enqueue(msg mailer.Message) bool
}

// NotificationService turns domain events into per-user notifications and serves the
// recipient-facing notification operations.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	broadcaster   realtime.Broadcaster
	mails         MailQueue
	renderer      *mailer.Renderer
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Dispatcher       events.Dispatcher
	Broadcaster      realtime.Broadcaster
	Mails            MailQueue
	Renderer         *mailer.Renderer
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	broadcaster := deps.Broadcaster
	if broadcaster == nil {
		broadcaster = realtime.NopBroadcaster{}
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		broadcaster:   broadcaster,
		mails:         deps.Mails,
		renderer:      deps.Renderer,
		metrics:       deps.Metrics,
		logger:        logger,
	}
}

// NotificationPage is a page of notifications plus the recipient's unread total.
type NotificationPage struct {
	Items  []domain.Notification
	Total  int
	Unread int
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCallCreated, n.handleCallCreated)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleTicketCommented)
}

func (n *NotificationService) handleCallCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CallCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if !event.Actor.IsAgent() {
		return nil
	}
	supervisors, err := n.users.ListByRole(ctx, domain.RoleSupervisor)
	if err != nil {
		return err
	}
	call := payload.Call
	n.fanOut(ctx, NewCallRecipients(event.Actor, supervisors), domain.Notification{
		Title:   "New call logged",
		Message: fmt.Sprintf("A new call was logged by %s with client %s.", actorName(event.Actor), call.ClientName),
		Type:    domain.NotificationNewCall,
		Related: domain.RelatedToCall(call.ID),
	})
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	supervisors, err := n.users.ListByRole(ctx, domain.RoleSupervisor)
	if err != nil {
		return err
	}
	ticket := payload.Ticket
	n.fanOut(ctx, NewTicketRecipients(supervisors), domain.Notification{
		Title: "New ticket created",
		Message: fmt.Sprintf("Ticket #%s was created by %s about %s.",
			ticket.TicketNumber, actorName(event.Actor), ticket.Subject),
		Type:    domain.NotificationNewTicket,
		Related: domain.RelatedToTicket(ticket.ID),
	})
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	ticket := payload.Ticket
	n.fanOut(ctx, AssignedRecipients(&ticket), domain.Notification{
		Title:   "Ticket assigned",
		Message: fmt.Sprintf("Ticket #%s about %s has been assigned to you.", ticket.TicketNumber, ticket.Subject),
		Type:    domain.NotificationAssigned,
		Related: domain.RelatedToTicket(ticket.ID),
	})

	if ticket.AssignedTo != nil {
		assignee, err := n.users.GetByID(ctx, *ticket.AssignedTo)
		if err != nil {
			return fmt.Errorf("load assignee: %w", err)
		}
		n.email(func(r *mailer.Renderer) (mailer.Message, error) {
			return r.TicketAssigned(ticket, *assignee)
		})
	}
	return nil
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketResolvedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	ticket := payload.Ticket
	n.fanOut(ctx, ResolvedRecipients(&ticket, actorID(event.Actor)), domain.Notification{
		Title:   "Ticket resolved",
		Message: fmt.Sprintf("Ticket #%s about %s has been marked as resolved.", ticket.TicketNumber, ticket.Subject),
		Type:    domain.NotificationResolved,
		Related: domain.RelatedToTicket(ticket.ID),
	})

	// Resolution emails go to every stakeholder, the resolver included.
	stakeholders := make([]domain.User, 0, 2)
	for _, id := range ticket.Stakeholders() {
		user, err := n.users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load stakeholder %d: %w", id, err)
		}
		stakeholders = append(stakeholders, *user)
	}
	resolvedBy := actorName(event.Actor)
	for _, recipient := range stakeholders {
		recipient := recipient
		n.email(func(r *mailer.Renderer) (mailer.Message, error) {
			return r.TicketResolved(ticket, recipient, resolvedBy)
		})
	}
	return nil
}

func (n *NotificationService) handleTicketCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	ticket := payload.Ticket
	n.fanOut(ctx, CommentRecipients(&ticket, payload.Comment.UserID), domain.Notification{
		Title: "New comment on a ticket",
		Message: fmt.Sprintf("%s commented on ticket #%s about %s.",
			actorName(event.Actor), ticket.TicketNumber, ticket.Subject),
		Type:    domain.NotificationComment,
		Related: domain.RelatedToTicket(ticket.ID),
	})
	return nil
}

// fanOut writes one row per recipient. Each write stands alone; a failure is logged and
// counted without affecting the others.
func (n *NotificationService) fanOut(ctx context.Context, recipients []int64, template domain.Notification) {
	for _, userID := range recipients {
		notification := template
		notification.UserID = userID
		err := n.notifications.Create(ctx, &notification)
		n.metrics.RecordNotification(string(notification.Type), err)
		if err != nil {
			n.logger.Error("failed to write notification",
				zap.Int64("user_id", userID),
				zap.String("type", string(notification.Type)),
				zap.Error(err),
			)
			continue
		}
		if err := n.broadcaster.Broadcast(ctx, notification); err != nil {
			n.logger.Warn("failed to broadcast notification",
				zap.Int64("notification_id", notification.ID),
				zap.Error(err),
			)
		}
	}
}

func (n *NotificationService) email(build func(*mailer.Renderer) (mailer.Message, error)) {
	if n.mails == nil || n.renderer == nil {
		return
	}
	msg, err := build(n.renderer)
	if err != nil {
		n.logger.Error("failed to render email", zap.Error(err))
		return
	}
	if !n.mails.Enqueue(msg) {
		n.metrics.RecordEmail(errors.New("queue full"))
	}
}

// List returns the caller's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, user *domain.User, unreadOnly bool, page PageRequest) (*NotificationPage, error) {
	page = page.Normalize()
	items, total, err := n.notifications.List(ctx, repository.NotificationFilter{
		UserID:     user.ID,
		UnreadOnly: unreadOnly,
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	unread, err := n.notifications.CountUnread(ctx, user.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &NotificationPage{Items: items, Total: total, Unread: unread}, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (n *NotificationService) UnreadCount(ctx context.Context, user *domain.User) (int, error) {
	count, err := n.notifications.CountUnread(ctx, user.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead flips one of the caller's notifications to read.
func (n *NotificationService) MarkRead(ctx context.Context, user *domain.User, id int64) (*domain.Notification, error) {
	notification, err := n.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !notification.Read {
		if err := n.notifications.MarkRead(ctx, id); err != nil {
			return nil, notFoundOr(err, "notification", id)
		}
		notification.Read = true
	}
	return notification, nil
}

// MarkAllRead marks every unread notification of the caller and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, user *domain.User) (int64, error) {
	count, err := n.notifications.MarkAllRead(ctx, user.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// Delete removes one of the caller's notifications.
func (n *NotificationService) Delete(ctx context.Context, user *domain.User, id int64) error {
	if _, err := n.owned(ctx, user, id); err != nil {
		return err
	}
	if err := n.notifications.Delete(ctx, id); err != nil {
		return notFoundOr(err, "notification", id)
	}
	return nil
}

// DeleteAll removes the caller's notifications, only read ones when readOnly is set.
func (n *NotificationService) DeleteAll(ctx context.Context, user *domain.User, readOnly bool) (int64, error) {
	count, err := n.notifications.DeleteForUser(ctx, user.ID, readOnly)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// PurgeRead deletes read notifications last touched before now minus retention.
func (n *NotificationService) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-retention)
	count, err := n.notifications.PurgeReadBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	n.logger.Info("purged read notifications", zap.Int64("deleted", count), zap.Time("cutoff", cutoff))
	return count, nil
}

func (n *NotificationService) owned(ctx context.Context, user *domain.User, id int64) (*domain.Notification, error) {
	notification, err := n.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "notification", id)
	}
	if err := access.Check(access.CanAccessNotification(user, notification), "notification belongs to another user"); err != nil {
		return nil, err
	}
	return notification, nil
}

func actorName(u *domain.User) string {
	if u == nil {
		return "someone"
	}
	return u.Name
}

func actorID(u *domain.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
