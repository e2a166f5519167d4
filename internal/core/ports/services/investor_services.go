package services

import (
	"context"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	"github.com/meridianir/capcall_backend/internal/dto"
)

// InvestorSvcFacade defines investor onboarding and ownership operations.
type InvestorSvcFacade interface {
	CreateInvestor(ctx context.Context, req dto.CreateInvestorRequest, creatorUserID string) (*domain.Investor, error)
	GetInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error)
	ListInvestors(ctx context.Context, params dto.ListInvestorsParams) (*dto.ListInvestorsResponse, error)
	UpdateInvestor(ctx context.Context, investorID string, req dto.UpdateInvestorRequest, userID string) (*domain.Investor, error)

	// SetOwnership creates or replaces the investor's ownership fraction for a deal.
	SetOwnership(ctx context.Context, dealID string, req dto.SetOwnershipRequest, userID string) (*domain.DealOwnership, error)
}
