package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/dto"
	"github.com/meridianir/capcall_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

var ErrFractionOutOfRange = errors.New("ownership fraction must be in (0, 1]")

// investorService provides investor onboarding and deal ownership operations.
type investorService struct {
	investorRepo portsrepo.InvestorRepositoryFacade
	fundRepo     portsrepo.FundRepositoryFacade
}

// NewInvestorService creates a new InvestorService.
func NewInvestorService(investorRepo portsrepo.InvestorRepositoryFacade, fundRepo portsrepo.FundRepositoryFacade) portssvc.InvestorSvcFacade {
	return &investorService{investorRepo: investorRepo, fundRepo: fundRepo}
}

var _ portssvc.InvestorSvcFacade = (*investorService)(nil)

func (s *investorService) CreateInvestor(ctx context.Context, req dto.CreateInvestorRequest, creatorUserID string) (*domain.Investor, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	investor := domain.Investor{
		InvestorID: uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		IsActive:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.investorRepo.SaveInvestor(ctx, investor); err != nil {
		logger.Error("Failed to save investor", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save investor: %w", err)
	}

	logger.Info("Investor created", slog.String("investor_id", investor.InvestorID))
	return &investor, nil
}

func (s *investorService) GetInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	investor, err := s.investorRepo.FindInvestorByID(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find investor %s: %w", investorID, err)
	}
	return investor, nil
}

func (s *investorService) ListInvestors(ctx context.Context, params dto.ListInvestorsParams) (*dto.ListInvestorsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	investors, nextToken, err := s.investorRepo.ListInvestors(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list investors", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve investors: %w", err)
	}

	responses := make([]dto.InvestorResponse, len(investors))
	for i := range investors {
		responses[i] = dto.ToInvestorResponse(&investors[i])
	}
	return &dto.ListInvestorsResponse{Investors: responses, NextToken: nextToken}, nil
}

func (s *investorService) UpdateInvestor(ctx context.Context, investorID string, req dto.UpdateInvestorRequest, userID string) (*domain.Investor, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	investor, err := s.investorRepo.FindInvestorByID(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find investor %s: %w", investorID, err)
	}

	updated := false
	if req.Name != nil {
		investor.Name = *req.Name
		updated = true
	}
	if req.Email != nil {
		investor.Email = *req.Email
		updated = true
	}
	if req.IsActive != nil {
		investor.IsActive = *req.IsActive
		updated = true
	}

	if !updated {
		return investor, nil
	}

	investor.LastUpdatedAt = time.Now().UTC()
	investor.LastUpdatedBy = userID

	if err := s.investorRepo.UpdateInvestor(ctx, *investor); err != nil {
		logger.Error("Failed to update investor", slog.String("investor_id", investorID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update investor %s: %w", investorID, err)
	}

	logger.Info("Investor updated", slog.String("investor_id", investorID))
	return investor, nil
}

// SetOwnership creates or replaces an investor's ownership fraction for a
// deal. Fractions feed the allocation calculator at call-creation time, so the
// (0, 1] range is enforced on write as well.
func (s *investorService) SetOwnership(ctx context.Context, dealID string, req dto.SetOwnershipRequest, userID string) (*domain.DealOwnership, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Fraction.LessThanOrEqual(decimal.Zero) || req.Fraction.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: got %s", ErrFractionOutOfRange, req.Fraction.String())
	}

	if _, err := s.fundRepo.FindDealByID(ctx, dealID); err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}
	investor, err := s.investorRepo.FindInvestorByID(ctx, req.InvestorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find investor %s: %w", req.InvestorID, err)
	}
	if !investor.IsActive {
		return nil, fmt.Errorf("%w: investor %s is inactive", apperrors.ErrValidation, req.InvestorID)
	}

	now := time.Now().UTC()
	ownership := domain.DealOwnership{
		DealID:     dealID,
		InvestorID: req.InvestorID,
		Fraction:   req.Fraction,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.investorRepo.UpsertOwnership(ctx, ownership); err != nil {
		logger.Error("Failed to upsert ownership", slog.String("deal_id", dealID), slog.String("investor_id", req.InvestorID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to set ownership: %w", err)
	}

	logger.Info("Ownership set",
		slog.String("deal_id", dealID),
		slog.String("investor_id", req.InvestorID),
		slog.String("fraction", req.Fraction.String()),
	)
	return &ownership, nil
}
