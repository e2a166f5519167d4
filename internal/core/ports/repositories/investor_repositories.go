package repositories

import (
	"context"

	"github.com/meridianir/capcall_backend/internal/core/domain"
)

// InvestorReader defines read operations for investor data
type InvestorReader interface {
	// FindInvestorByID retrieves a specific investor by its unique identifier.
	FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error)

	// ListInvestors retrieves a paginated list of investors using token-based pagination.
	ListInvestors(ctx context.Context, limit int, nextToken *string) ([]domain.Investor, *string, error)
}

// InvestorWriter defines write operations for investor data
type InvestorWriter interface {
	// SaveInvestor persists a new investor record.
	SaveInvestor(ctx context.Context, investor domain.Investor) error

	// UpdateInvestor updates mutable investor fields (name, email, active flag).
	UpdateInvestor(ctx context.Context, investor domain.Investor) error
}

// OwnershipReader defines read access to deal-investor ownership fractions.
// Ownership is the allocation calculator's input and must be read fresh at
// call-creation time; it may change between calls and is never cached.
type OwnershipReader interface {
	// FindOwnershipByDeal retrieves every investor's ownership fraction for a deal.
	FindOwnershipByDeal(ctx context.Context, dealID string) ([]domain.DealOwnership, error)
}

// OwnershipWriter defines write operations for ownership records
type OwnershipWriter interface {
	// UpsertOwnership creates or replaces an investor's fraction for a deal.
	UpsertOwnership(ctx context.Context, ownership domain.DealOwnership) error
}

// InvestorRepositoryFacade combines all investor-related repository interfaces
type InvestorRepositoryFacade interface {
	InvestorReader
	InvestorWriter
	OwnershipReader
	OwnershipWriter
}
