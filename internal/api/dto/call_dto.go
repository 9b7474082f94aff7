package dto

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/opt/omitnull"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// CreateCallRequest payload for POST /calls.
type CreateCallRequest struct {
	CallTime           *time.Time  `json:"call_time" validate:"required"`
	Duration           null.Int    `json:"duration" validate:"omitempty,min=0"`
	ClientName         string      `json:"client_name" validate:"required,max=255"`
	ClientPhone        string      `json:"client_phone" validate:"required,max=20"`
	Subject            string      `json:"subject" validate:"required"`
	Notes              null.String `json:"notes"`
	CallType           string      `json:"call_type" validate:"required,call_type"`
	Status             string      `json:"status" validate:"omitempty,call_status"`
	SatisfactionRating null.Int    `json:"satisfaction_rating" validate:"omitempty,min=1,max=5"`
}

// UpdateCallRequest payload for PUT /calls/:id. Absent fields are left alone; nullable
// columns are cleared by sending null.
type UpdateCallRequest struct {
	CallTime           *time.Time           `json:"call_time"`
	Duration           omitnull.Val[int]    `json:"duration" validate:"omitempty,min=0"`
	ClientName         *string              `json:"client_name" validate:"omitempty,min=1,max=255"`
	ClientPhone        *string              `json:"client_phone" validate:"omitempty,min=1,max=20"`
	Subject            *string              `json:"subject" validate:"omitempty,min=1"`
	Notes              omitnull.Val[string] `json:"notes"`
	CallType           *string              `json:"call_type" validate:"omitempty,call_type"`
	Status             *string              `json:"status" validate:"omitempty,call_status"`
	SatisfactionRating omitnull.Val[int]    `json:"satisfaction_rating" validate:"omitempty,min=1,max=5"`
}

// CallResponse is the public view of a call.
type CallResponse struct {
	ID                 int64             `json:"id"`
	UserID             int64             `json:"user_id"`
	CallTime           time.Time         `json:"call_time"`
	Duration           *int              `json:"duration"`
	ClientName         string            `json:"client_name"`
	ClientPhone        string            `json:"client_phone"`
	Subject            string            `json:"subject"`
	Notes              *string           `json:"notes"`
	CallType           domain.CallType   `json:"call_type"`
	Status             domain.CallStatus `json:"status"`
	SatisfactionRating *int              `json:"satisfaction_rating"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewCallResponse maps a domain call.
func NewCallResponse(call *domain.Call) CallResponse {
	return CallResponse{
		ID:                 call.ID,
		UserID:             call.UserID,
		CallTime:           call.CallTime,
		Duration:           call.DurationSeconds,
		ClientName:         call.ClientName,
		ClientPhone:        call.ClientPhone,
		Subject:            call.Subject,
		Notes:              call.Notes,
		CallType:           call.CallType,
		Status:             call.Status,
		SatisfactionRating: call.SatisfactionRating,
		CreatedAt:          call.CreatedAt,
		UpdatedAt:          call.UpdatedAt,
	}
}
