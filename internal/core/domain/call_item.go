package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus indicates the payment state of a single investor's share of a call.
type ItemStatus string

const (
	ItemPending  ItemStatus = "PENDING"
	ItemPartial  ItemStatus = "PARTIAL"
	ItemComplete ItemStatus = "COMPLETE"
	// ItemDefaulted and ItemCancelled are reachable from the broader account
	// lifecycle (default notices, call cancellation), not from wire confirmation.
	ItemDefaulted ItemStatus = "DEFAULTED"
	ItemCancelled ItemStatus = "CANCELLED"
)

// CapitalCallItem is the investor-specific sub-obligation of a capital call.
// Its payment status advances independently of the parent call's aggregate status.
type CapitalCallItem struct {
	ItemID         string          `json:"itemID"` // Primary key (UUID)
	CallID         string          `json:"callID"`
	FundID         string          `json:"fundID"`
	InvestorID     string          `json:"investorID"`
	AmountDue      decimal.Decimal `json:"amountDue"`
	AmountReceived decimal.Decimal `json:"amountReceived"`
	Status         ItemStatus      `json:"status"`
	WireReceivedAt *time.Time      `json:"wireReceivedAt,omitempty"`
	ReminderCount  int             `json:"reminderCount"`
	LastReminderAt *time.Time      `json:"lastReminderAt,omitempty"`
	AuditFields
}

// StatusForReceived derives the item status implied by a cumulative received
// amount. Receiving at or above the amount due completes the item; anything
// above zero is a partial payment.
func (i CapitalCallItem) StatusForReceived(received decimal.Decimal) ItemStatus {
	if received.GreaterThanOrEqual(i.AmountDue) {
		return ItemComplete
	}
	if received.IsPositive() {
		return ItemPartial
	}
	return ItemPending
}
