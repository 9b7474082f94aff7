package service

import (
	"context"
	"strings"
	"time"

	"github.com/aarondl/opt/omitnull"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/access"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// activeCallConstraint is the partial unique index allowing one active call per user.
const activeCallConstraint = "calls_one_active_per_user"

// CallService coordinates call workflows.
type CallService struct {
	calls      repository.CallRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// CallDependencies bundles collaborators for the call service.
type CallDependencies struct {
	CallRepo   repository.CallRepository
	TxManager  repository.TxManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewCallService constructs the service.
func NewCallService(deps CallDependencies) *CallService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallService{
		calls:      deps.CallRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// CallCreateInput describes a new call. An empty Status defaults to incoming.
type CallCreateInput struct {
	CallTime           time.Time
	DurationSeconds    *int
	ClientName         string
	ClientPhone        string
	Subject            string
	Notes              *string
	CallType           domain.CallType
	Status             domain.CallStatus
	SatisfactionRating *int
}

// CallPatch carries a partial update. Nil pointers and unset fields are left alone;
// a null field clears the column.
type CallPatch struct {
	CallTime           *time.Time
	DurationSeconds    omitnull.Val[int]
	ClientName         *string
	ClientPhone        *string
	Subject            *string
	Notes              omitnull.Val[string]
	CallType           *domain.CallType
	Status             *domain.CallStatus
	SatisfactionRating omitnull.Val[int]
}

// CallListFilter narrows call listings.
type CallListFilter struct {
	Statuses []domain.CallStatus
	From     *time.Time
	To       *time.Time
	Page     PageRequest
}

// CreateCall logs a call owned by the actor. Creating an active call puts the actor's
// other active calls on hold in the same transaction.
func (s *CallService) CreateCall(ctx context.Context, actor *domain.User, input CallCreateInput) (*domain.Call, error) {
	call := &domain.Call{
		UserID:             actor.ID,
		CallTime:           input.CallTime,
		DurationSeconds:    input.DurationSeconds,
		ClientName:         strings.TrimSpace(input.ClientName),
		ClientPhone:        strings.TrimSpace(input.ClientPhone),
		Subject:            strings.TrimSpace(input.Subject),
		Notes:              trimmed(input.Notes),
		CallType:           input.CallType,
		Status:             input.Status,
		SatisfactionRating: input.SatisfactionRating,
	}
	if call.Status == "" {
		call.Status = domain.CallStatusIncoming
	}
	if err := validateCall(call); err != nil {
		return nil, err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if call.Status == domain.CallStatusActive {
			if err := s.holdOtherActiveCalls(ctx, call.UserID, 0); err != nil {
				return err
			}
		}
		return s.calls.Create(ctx, call)
	})
	if err != nil {
		return nil, mapCallWriteError(err)
	}

	publish(ctx, s.dispatcher, events.New(events.EventCallCreated, actor, events.CallCreatedPayload{Call: *call}))
	return call, nil
}

// UpdateCall applies patch. Moving a call to active puts the owner's other active calls
// on hold first; both writes share one transaction serialized on the owner's row.
func (s *CallService) UpdateCall(ctx context.Context, actor *domain.User, callID int64, patch CallPatch) (*domain.Call, error) {
	var updated *domain.Call
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		call, err := s.calls.GetByID(ctx, callID)
		if err != nil {
			return notFoundOr(err, "call", callID)
		}
		if err := access.Check(access.CanAccessCall(actor, call), "call belongs to another agent"); err != nil {
			return err
		}

		patch.apply(call)
		if err := validateCall(call); err != nil {
			return err
		}

		if patch.Status != nil && *patch.Status == domain.CallStatusActive {
			if err := s.holdOtherActiveCalls(ctx, call.UserID, call.ID); err != nil {
				return err
			}
		}
		if err := s.calls.Update(ctx, call); err != nil {
			return err
		}
		updated = call
		return nil
	})
	if err != nil {
		return nil, mapCallWriteError(err)
	}
	return updated, nil
}

// DeleteCall hard-deletes a call. Linked tickets keep existing with call_id cleared.
func (s *CallService) DeleteCall(ctx context.Context, actor *domain.User, callID int64) error {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return notFoundOr(err, "call", callID)
	}
	if err := access.Check(access.CanAccessCall(actor, call), "call belongs to another agent"); err != nil {
		return err
	}
	if err := s.calls.Delete(ctx, callID); err != nil {
		return notFoundOr(err, "call", callID)
	}
	return nil
}

// GetCall fetches a call the actor may see.
func (s *CallService) GetCall(ctx context.Context, actor *domain.User, callID int64) (*domain.Call, error) {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return nil, notFoundOr(err, "call", callID)
	}
	if err := access.Check(access.CanAccessCall(actor, call), "call belongs to another agent"); err != nil {
		return nil, err
	}
	return call, nil
}

// ListCalls returns the page of calls visible to the actor and the total match count.
func (s *CallService) ListCalls(ctx context.Context, actor *domain.User, filter CallListFilter) ([]domain.Call, int, error) {
	page := filter.Page.Normalize()
	calls, total, err := s.calls.List(ctx, repository.CallFilter{
		OwnerID:  access.CallOwnerScope(actor),
		Statuses: filter.Statuses,
		From:     filter.From,
		To:       filter.To,
		Limit:    page.PageSize,
		Offset:   page.Offset(),
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return calls, total, nil
}

func (s *CallService) holdOtherActiveCalls(ctx context.Context, userID, exceptID int64) error {
	if err := s.calls.LockOwner(ctx, userID); err != nil {
		return notFoundOr(err, "user", userID)
	}
	held, err := s.calls.HoldActive(ctx, userID, exceptID)
	if err != nil {
		return err
	}
	if len(held) > 0 {
		s.metrics.RecordCallsOnHold(len(held))
		s.logger.Info("calls put on hold",
			zap.Int64("user_id", userID),
			zap.Int64s("call_ids", held),
		)
	}
	return nil
}

func (p CallPatch) apply(call *domain.Call) {
	if p.CallTime != nil {
		call.CallTime = *p.CallTime
	}
	if !p.DurationSeconds.IsUnset() {
		call.DurationSeconds = optionalPtr(p.DurationSeconds)
	}
	if p.ClientName != nil {
		call.ClientName = strings.TrimSpace(*p.ClientName)
	}
	if p.ClientPhone != nil {
		call.ClientPhone = strings.TrimSpace(*p.ClientPhone)
	}
	if p.Subject != nil {
		call.Subject = strings.TrimSpace(*p.Subject)
	}
	if !p.Notes.IsUnset() {
		call.Notes = trimmed(optionalPtr(p.Notes))
	}
	if p.CallType != nil {
		call.CallType = *p.CallType
	}
	if p.Status != nil {
		call.Status = *p.Status
	}
	if !p.SatisfactionRating.IsUnset() {
		call.SatisfactionRating = optionalPtr(p.SatisfactionRating)
	}
}

func validateCall(call *domain.Call) error {
	fields := map[string]string{}
	if call.CallTime.IsZero() {
		fields["call_time"] = "is required"
	}
	if call.ClientName == "" {
		fields["client_name"] = "is required"
	}
	if call.ClientPhone == "" {
		fields["client_phone"] = "is required"
	}
	if call.Subject == "" {
		fields["subject"] = "is required"
	}
	switch call.CallType {
	case domain.CallTypeInbound, domain.CallTypeOutbound:
	default:
		fields["call_type"] = "must be one of inbound outbound"
	}
	switch call.Status {
	case domain.CallStatusIncoming, domain.CallStatusActive, domain.CallStatusOnHold, domain.CallStatusEnded:
	default:
		fields["status"] = "must be one of incoming active on-hold ended"
	}
	if call.DurationSeconds != nil && *call.DurationSeconds < 0 {
		fields["duration"] = "must be zero or greater"
	}
	if r := call.SatisfactionRating; r != nil && (*r < 1 || *r > 5) {
		fields["satisfaction_rating"] = "must be between 1 and 5"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid call", fields)
	}
	return nil
}

func mapCallWriteError(err error) error {
	if apperrors.IsUniqueViolation(err, activeCallConstraint) {
		return apperrors.NewConflict("another call is already active for this user", nil)
	}
	return apperrors.MapError(err)
}

// optionalPtr returns nil for a null or unset value.
func optionalPtr[T any](v omitnull.Val[T]) *T {
	val, ok := v.Get()
	if !ok {
		return nil
	}
	return &val
}
