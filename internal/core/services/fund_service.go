package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/dto"
	"github.com/meridianir/capcall_backend/internal/middleware"
)

// fundService provides fund and deal management operations.
type fundService struct {
	fundRepo portsrepo.FundRepositoryFacade
}

// NewFundService creates a new FundService.
func NewFundService(fundRepo portsrepo.FundRepositoryFacade) portssvc.FundSvcFacade {
	return &fundService{fundRepo: fundRepo}
}

var _ portssvc.FundSvcFacade = (*fundService)(nil)

func (s *fundService) CreateFund(ctx context.Context, req dto.CreateFundRequest, creatorUserID string) (*domain.Fund, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	fund := domain.Fund{
		FundID:           uuid.NewString(),
		Name:             req.Name,
		CurrencyCode:     req.CurrencyCode,
		WireInstructions: req.WireInstructions,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.fundRepo.SaveFund(ctx, fund); err != nil {
		logger.Error("Failed to save fund", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save fund: %w", err)
	}

	logger.Info("Fund created", slog.String("fund_id", fund.FundID))
	return &fund, nil
}

func (s *fundService) GetFundByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	fund, err := s.fundRepo.FindFundByID(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find fund %s: %w", fundID, err)
	}
	return fund, nil
}

func (s *fundService) ListFunds(ctx context.Context, params dto.ListFundsParams) (*dto.ListFundsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	funds, nextToken, err := s.fundRepo.ListFunds(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list funds", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve funds: %w", err)
	}

	responses := make([]dto.FundResponse, len(funds))
	for i := range funds {
		responses[i] = dto.ToFundResponse(&funds[i])
	}
	return &dto.ListFundsResponse{Funds: responses, NextToken: nextToken}, nil
}

func (s *fundService) CreateDeal(ctx context.Context, fundID string, req dto.CreateDealRequest, creatorUserID string) (*domain.Deal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.fundRepo.FindFundByID(ctx, fundID); err != nil {
		return nil, fmt.Errorf("failed to find fund %s: %w", fundID, err)
	}

	now := time.Now().UTC()
	deal := domain.Deal{
		DealID: uuid.NewString(),
		FundID: fundID,
		Name:   req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.fundRepo.SaveDeal(ctx, deal); err != nil {
		logger.Error("Failed to save deal", slog.String("fund_id", fundID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save deal: %w", err)
	}

	logger.Info("Deal created", slog.String("deal_id", deal.DealID), slog.String("fund_id", fundID))
	return &deal, nil
}

func (s *fundService) GetDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	deal, err := s.fundRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}
	return deal, nil
}
