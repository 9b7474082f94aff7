package domain

import "time"

// CallType tells inbound from outbound calls.
type CallType string

const (
	CallTypeInbound  CallType = "inbound"
	CallTypeOutbound CallType = "outbound"
)

// CallStatus enumerates the live state of a call.
type CallStatus string

const (
	CallStatusIncoming CallStatus = "incoming"
	CallStatusActive   CallStatus = "active"
	CallStatusOnHold   CallStatus = "on-hold"
	CallStatusEnded    CallStatus = "ended"
)

// Call is a phone call logged by an agent. At most one call per user may be active.
type Call struct {
	ID                 int64
	UserID             int64
	CallTime           time.Time
	DurationSeconds    *int
	ClientName         string
	ClientPhone        string
	Subject            string
	Notes              *string
	CallType           CallType
	Status             CallStatus
	SatisfactionRating *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
