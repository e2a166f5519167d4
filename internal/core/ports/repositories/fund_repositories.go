package repositories

import (
	"context"

	"github.com/meridianir/capcall_backend/internal/core/domain"
)

// FundReader defines read operations for fund and deal data
type FundReader interface {
	// FindFundByID retrieves a specific fund by its unique identifier.
	FindFundByID(ctx context.Context, fundID string) (*domain.Fund, error)

	// ListFunds retrieves a paginated list of funds using token-based pagination.
	ListFunds(ctx context.Context, limit int, nextToken *string) ([]domain.Fund, *string, error)

	// FindDealByID retrieves a specific deal by its unique identifier.
	FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error)
}

// FundWriter defines write operations for fund and deal data
type FundWriter interface {
	// SaveFund persists a new fund record.
	SaveFund(ctx context.Context, fund domain.Fund) error

	// SaveDeal persists a new deal record.
	SaveDeal(ctx context.Context, deal domain.Deal) error
}

// FundRepositoryFacade combines all fund-related repository interfaces
type FundRepositoryFacade interface {
	FundReader
	FundWriter
}
