package dto

import (
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCapitalCallRequest is the request body for creating a capital call.
type CreateCapitalCallRequest struct {
	FundID      string          `json:"fundID" binding:"required"`
	DealID      string          `json:"dealID" binding:"required"`
	TotalAmount decimal.Decimal `json:"totalAmount" binding:"required,positivedec"`
	CurrencyCode string         `json:"currencyCode" binding:"required,len=3"`
	Deadline    time.Time       `json:"deadline" binding:"required"`
}

// ConfirmWireRequest records a wire receipt against a call item.
type ConfirmWireRequest struct {
	AmountReceived decimal.Decimal `json:"amountReceived" binding:"required,positivedec"`
	ReceivedAt     *time.Time      `json:"receivedAt,omitempty"`
}

// CallItemResponse is the API representation of a capital call item.
type CallItemResponse struct {
	ItemID         string            `json:"itemID"`
	CallID         string            `json:"callID"`
	InvestorID     string            `json:"investorID"`
	AmountDue      decimal.Decimal   `json:"amountDue"`
	AmountReceived decimal.Decimal   `json:"amountReceived"`
	Status         domain.ItemStatus `json:"status"`
	WireReceivedAt *time.Time        `json:"wireReceivedAt,omitempty"`
	ReminderCount  int               `json:"reminderCount"`
	LastReminderAt *time.Time        `json:"lastReminderAt,omitempty"`
}

// CapitalCallResponse is the API representation of a capital call.
type CapitalCallResponse struct {
	CallID       string             `json:"callID"`
	FundID       string             `json:"fundID"`
	DealID       string             `json:"dealID"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	CurrencyCode string             `json:"currencyCode"`
	Deadline     time.Time          `json:"deadline"`
	Status       domain.CallStatus  `json:"status"`
	SentAt       *time.Time         `json:"sentAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	Items        []CallItemResponse `json:"items,omitempty"`
}

// ListCallsParams holds parameters for listing capital calls.
type ListCallsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListCallsResponse is the paginated list of capital calls.
type ListCallsResponse struct {
	Calls     []CapitalCallResponse `json:"calls"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ToCallItemResponse converts a domain call item to its API representation.
func ToCallItemResponse(item *domain.CapitalCallItem) CallItemResponse {
	return CallItemResponse{
		ItemID:         item.ItemID,
		CallID:         item.CallID,
		InvestorID:     item.InvestorID,
		AmountDue:      item.AmountDue,
		AmountReceived: item.AmountReceived,
		Status:         item.Status,
		WireReceivedAt: item.WireReceivedAt,
		ReminderCount:  item.ReminderCount,
		LastReminderAt: item.LastReminderAt,
	}
}

// ToCapitalCallResponse converts a domain capital call to its API representation.
func ToCapitalCallResponse(call *domain.CapitalCall) CapitalCallResponse {
	resp := CapitalCallResponse{
		CallID:       call.CallID,
		FundID:       call.FundID,
		DealID:       call.DealID,
		TotalAmount:  call.TotalAmount,
		CurrencyCode: call.CurrencyCode,
		Deadline:     call.Deadline,
		Status:       call.Status,
		SentAt:       call.SentAt,
		CreatedAt:    call.CreatedAt,
	}
	if len(call.Items) > 0 {
		resp.Items = make([]CallItemResponse, len(call.Items))
		for i := range call.Items {
			resp.Items[i] = ToCallItemResponse(&call.Items[i])
		}
	}
	return resp
}
