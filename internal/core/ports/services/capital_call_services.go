package services

import (
	"context"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	"github.com/meridianir/capcall_backend/internal/dto"
	"github.com/shopspring/decimal"
	"time"
)

// CapitalCallReaderSvc defines read operations on capital calls.
type CapitalCallReaderSvc interface {
	// GetCallByID retrieves a capital call with its items.
	GetCallByID(ctx context.Context, callID string) (*domain.CapitalCall, error)

	// ListCallsByFund retrieves a paginated list of calls for a fund.
	ListCallsByFund(ctx context.Context, fundID string, params dto.ListCallsParams) (*dto.ListCallsResponse, error)
}

// CapitalCallWriterSvc defines the lifecycle operations on capital calls.
type CapitalCallWriterSvc interface {
	// CreateCapitalCall allocates the total across the deal's investors,
	// persists the call and its items, dispatches the initial notices and
	// schedules the reminder cascade, as one logical unit. Notification
	// infrastructure failures never fail this operation.
	CreateCapitalCall(ctx context.Context, req dto.CreateCapitalCallRequest, creatorUserID string) (*domain.CapitalCall, error)

	// ConfirmWireReceived records a wire receipt against an item, advances the
	// item status, cancels the now-irrelevant notifications and recomputes the
	// call's aggregate status.
	ConfirmWireReceived(ctx context.Context, itemID string, amount decimal.Decimal, receivedAt time.Time, userID string) (*domain.CapitalCallItem, error)

	// CloseCall is the explicit manager action moving a PARTIAL or FUNDED call
	// to CLOSED. Closing is never automatic.
	CloseCall(ctx context.Context, callID string, userID string) (*domain.CapitalCall, error)
}

// CapitalCallSvcFacade combines all capital call service interfaces.
type CapitalCallSvcFacade interface {
	CapitalCallReaderSvc
	CapitalCallWriterSvc
}
