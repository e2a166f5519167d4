package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CallStatus indicates the lifecycle state of a capital call.
type CallStatus string

const (
	CallDraft   CallStatus = "DRAFT"
	CallSent    CallStatus = "SENT"
	CallPartial CallStatus = "PARTIAL"
	CallFunded  CallStatus = "FUNDED"
	CallClosed  CallStatus = "CLOSED"
)

// CanTransitionTo reports whether the call status may move to the target status.
// Transitions only flow forward, except PARTIAL and FUNDED may alternate as money
// moves in. CLOSED is terminal and only ever set by an explicit manager action.
func (s CallStatus) CanTransitionTo(target CallStatus) bool {
	switch s {
	case CallDraft:
		return target == CallSent
	case CallSent:
		return target == CallPartial || target == CallFunded
	case CallPartial:
		return target == CallPartial || target == CallFunded || target == CallClosed
	case CallFunded:
		return target == CallPartial || target == CallClosed
	case CallClosed:
		return false
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s CallStatus) IsTerminal() bool {
	return s == CallClosed
}

// CapitalCall represents one fund-level cash request tied to a single deal,
// apportioned across participating investors as CapitalCallItems.
type CapitalCall struct {
	CallID      string          `json:"callID"` // Primary key (UUID)
	FundID      string          `json:"fundID"`
	DealID      string          `json:"dealID"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CurrencyCode string         `json:"currencyCode"`
	Deadline    time.Time       `json:"deadline"`
	Status      CallStatus      `json:"status"`
	SentAt      *time.Time      `json:"sentAt,omitempty"`
	AuditFields
	// Items are usually loaded separately; populated only by calls that ask for them.
	Items []CapitalCallItem `json:"items,omitempty"`
}
