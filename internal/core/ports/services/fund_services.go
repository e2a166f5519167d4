package services

import (
	"context"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	"github.com/meridianir/capcall_backend/internal/dto"
)

// FundSvcFacade defines fund and deal management operations.
type FundSvcFacade interface {
	CreateFund(ctx context.Context, req dto.CreateFundRequest, creatorUserID string) (*domain.Fund, error)
	GetFundByID(ctx context.Context, fundID string) (*domain.Fund, error)
	ListFunds(ctx context.Context, params dto.ListFundsParams) (*dto.ListFundsResponse, error)

	CreateDeal(ctx context.Context, fundID string, req dto.CreateDealRequest, creatorUserID string) (*domain.Deal, error)
	GetDealByID(ctx context.Context, dealID string) (*domain.Deal, error)
}
