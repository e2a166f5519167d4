package repositories

import (
	"context"
	"time"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CapitalCallReader defines read operations for capital call data
type CapitalCallReader interface {
	// FindCallByID retrieves a specific capital call by its unique identifier.
	FindCallByID(ctx context.Context, callID string) (*domain.CapitalCall, error)

	// ListCallsByFund retrieves a paginated list of capital calls for a fund
	// using token-based pagination. It returns the calls, a token for the next
	// page, and an error.
	ListCallsByFund(ctx context.Context, fundID string, limit int, nextToken *string) ([]domain.CapitalCall, *string, error)
}

// CapitalCallWriter defines write operations for capital call data
type CapitalCallWriter interface {
	// SaveCall persists a new capital call header.
	SaveCall(ctx context.Context, call domain.CapitalCall) error

	// MarkCallSent sets the call status to SENT and records the sent-at time.
	MarkCallSent(ctx context.Context, callID string, sentAt time.Time, updatedBy string) error

	// UpdateCallStatus updates the call's aggregate status.
	UpdateCallStatus(ctx context.Context, callID string, status domain.CallStatus, updatedBy string, updatedAt time.Time) error
}

// CallItemReader defines read operations for capital call item data
type CallItemReader interface {
	// FindItemByID retrieves a specific call item by its unique identifier.
	FindItemByID(ctx context.Context, itemID string) (*domain.CapitalCallItem, error)

	// FindItemsByCallID retrieves every item belonging to a capital call.
	FindItemsByCallID(ctx context.Context, callID string) ([]domain.CapitalCallItem, error)
}

// CallItemWriter defines write operations for capital call item data
type CallItemWriter interface {
	// SaveItem persists a single call item. Items are inserted one at a time so
	// that one investor's failure does not void the others' obligations.
	SaveItem(ctx context.Context, item domain.CapitalCallItem) error

	// ApplyWireReceipt adds the received amount to the item under a row lock,
	// sets the derived status, and returns the updated item. Concurrent receipts
	// for the same item are serialized by the lock.
	ApplyWireReceipt(ctx context.Context, itemID string, amount decimal.Decimal, receivedAt time.Time, updatedBy string) (*domain.CapitalCallItem, error)

	// RecordReminderSent increments the item's reminder count and stamps the
	// last-reminder time. Called by the dispatch side after a reminder fires.
	RecordReminderSent(ctx context.Context, itemID string, sentAt time.Time) error
}

// CapitalCallRepositoryFacade combines all capital-call-related repository interfaces
// This is a facade for clients that need access to all operations
type CapitalCallRepositoryFacade interface {
	CapitalCallReader
	CapitalCallWriter
	CallItemReader
	CallItemWriter
}

// CapitalCallRepositoryWithTx extends CapitalCallRepositoryFacade with transaction capabilities
type CapitalCallRepositoryWithTx interface {
	CapitalCallRepositoryFacade
	TransactionManager
}
