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

var (
	// ErrAggregationUnavailable indicates the call's item set could not be read
	// for the aggregate status recompute. The call's prior status is preserved.
	ErrAggregationUnavailable = errors.New("aggregate status recompute unavailable")

	ErrCallNotClosable = errors.New("call must be partial or funded to close")
	ErrItemNotPayable  = errors.New("item no longer accepts wire receipts")
)

// capitalCallService owns the capital call lifecycle: allocation, persistence,
// notification scheduling and the call-level status aggregation rule.
type capitalCallService struct {
	callRepo     portsrepo.CapitalCallRepositoryWithTx
	investorRepo portsrepo.InvestorRepositoryFacade
	fundRepo     portsrepo.FundRepositoryFacade
	scheduler    portssvc.ReminderSchedulerSvc
}

// NewCapitalCallService creates a new CapitalCallService.
func NewCapitalCallService(
	callRepo portsrepo.CapitalCallRepositoryWithTx,
	investorRepo portsrepo.InvestorRepositoryFacade,
	fundRepo portsrepo.FundRepositoryFacade,
	scheduler portssvc.ReminderSchedulerSvc,
) portssvc.CapitalCallSvcFacade {
	return &capitalCallService{
		callRepo:     callRepo,
		investorRepo: investorRepo,
		fundRepo:     fundRepo,
		scheduler:    scheduler,
	}
}

var _ portssvc.CapitalCallSvcFacade = (*capitalCallService)(nil)

// CreateCapitalCall performs allocation, persistence and initial scheduling as
// one logical unit. Financial errors (allocation input, unknown fund/deal)
// fail the operation before anything is persisted; notification infrastructure
// failures never do.
//
// A deal with no ownership records yields a DRAFT call with no items: an empty
// participant set is fatal to allocation but not to call creation.
func (s *capitalCallService) CreateCapitalCall(ctx context.Context, req dto.CreateCapitalCallRequest, creatorUserID string) (*domain.CapitalCall, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: total amount %s must be positive", ErrInvalidAllocationInput, req.TotalAmount.String())
	}

	fund, err := s.fundRepo.FindFundByID(ctx, req.FundID)
	if err != nil {
		return nil, fmt.Errorf("failed to find fund %s: %w", req.FundID, err)
	}
	deal, err := s.fundRepo.FindDealByID(ctx, req.DealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", req.DealID, err)
	}
	if deal.FundID != fund.FundID {
		return nil, fmt.Errorf("%w: deal %s does not belong to fund %s", apperrors.ErrValidation, req.DealID, req.FundID)
	}

	// Ownership is read fresh for every call; fractions may have changed since
	// the previous one.
	ownerships, err := s.investorRepo.FindOwnershipByDeal(ctx, req.DealID)
	if err != nil {
		logger.Error("Failed to fetch ownership records", slog.String("deal_id", req.DealID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch ownership for deal %s: %w", req.DealID, err)
	}

	now := time.Now().UTC()
	call := domain.CapitalCall{
		CallID:       uuid.NewString(),
		FundID:       req.FundID,
		DealID:       req.DealID,
		TotalAmount:  req.TotalAmount,
		CurrencyCode: req.CurrencyCode,
		Deadline:     req.Deadline,
		Status:       domain.CallDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if len(ownerships) == 0 {
		logger.Warn("Deal has no ownership records, creating call without items", slog.String("deal_id", req.DealID))
		if err := s.callRepo.SaveCall(ctx, call); err != nil {
			logger.Error("Failed to save capital call", slog.String("call_id", call.CallID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to save capital call: %w", err)
		}
		return &call, nil
	}

	participants := make([]Participant, len(ownerships))
	for i, o := range ownerships {
		participants[i] = Participant{InvestorID: o.InvestorID, Fraction: o.Fraction}
	}

	allocations, err := Allocate(ctx, req.TotalAmount, participants)
	if err != nil {
		return nil, err
	}

	if err := s.callRepo.SaveCall(ctx, call); err != nil {
		logger.Error("Failed to save capital call", slog.String("call_id", call.CallID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save capital call: %w", err)
	}

	// Items are inserted individually. One investor's failed insert is logged
	// and skipped: the obligation of the successfully created investors must
	// not be voided by an unrelated failure. No rollback.
	items := make([]domain.CapitalCallItem, 0, len(allocations))
	for _, alloc := range allocations {
		item := domain.CapitalCallItem{
			ItemID:         uuid.NewString(),
			CallID:         call.CallID,
			FundID:         call.FundID,
			InvestorID:     alloc.InvestorID,
			AmountDue:      alloc.AmountDue,
			AmountReceived: decimal.Zero,
			Status:         domain.ItemPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if err := s.callRepo.SaveItem(ctx, item); err != nil {
			logger.Error("Failed to save call item, continuing with remaining investors",
				slog.String("call_id", call.CallID),
				slog.String("investor_id", alloc.InvestorID),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		logger.Error("No call items could be created, call remains in draft", slog.String("call_id", call.CallID))
		call.Items = nil
		return &call, nil
	}

	// Initial notices are fire-and-forget. The transition to SENT requires
	// every dispatch to have been attempted, not to have succeeded.
	for i := range items {
		s.scheduler.DispatchInitialNotice(ctx, items[i])
	}

	sentAt := time.Now().UTC()
	if err := s.callRepo.MarkCallSent(ctx, call.CallID, sentAt, creatorUserID); err != nil {
		logger.Error("Failed to mark call as sent", slog.String("call_id", call.CallID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to mark call %s as sent: %w", call.CallID, err)
	}
	call.Status = domain.CallSent
	call.SentAt = &sentAt

	schedulingNow := time.Now().UTC()
	for i := range items {
		s.scheduler.ScheduleAll(ctx, items[i], call.Deadline, schedulingNow)
	}

	logger.Info("Capital call created",
		slog.String("call_id", call.CallID),
		slog.String("fund_id", call.FundID),
		slog.String("deal_id", call.DealID),
		slog.Int("item_count", len(items)),
	)
	call.Items = items
	return &call, nil
}

// ConfirmWireReceived records a wire receipt against an item, cancels the
// notifications the new item status makes irrelevant, and recomputes the
// call's aggregate status.
//
// The receipt itself is persisted even when the aggregate recompute fails; in
// that case the updated item is returned together with an error wrapping
// ErrAggregationUnavailable and the call status is left unchanged.
func (s *capitalCallService) ConfirmWireReceived(ctx context.Context, itemID string, amount decimal.Decimal, receivedAt time.Time, userID string) (*domain.CapitalCallItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: received amount %s must be positive", apperrors.ErrValidation, amount.String())
	}

	existing, err := s.callRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to find call item %s: %w", itemID, err)
	}
	oldStatus := existing.Status
	if oldStatus == domain.ItemCancelled || oldStatus == domain.ItemDefaulted {
		return nil, fmt.Errorf("%w: item %s is %s", ErrItemNotPayable, itemID, oldStatus)
	}

	call, err := s.callRepo.FindCallByID(ctx, existing.CallID)
	if err != nil {
		return nil, fmt.Errorf("failed to find call %s: %w", existing.CallID, err)
	}
	if call.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: call %s is closed", apperrors.ErrConflict, call.CallID)
	}

	// The repository serializes concurrent receipts for the same item via a
	// row lock, adds the amount and derives the new status.
	item, err := s.callRepo.ApplyWireReceipt(ctx, itemID, amount, receivedAt, userID)
	if err != nil {
		logger.Error("Failed to apply wire receipt", slog.String("item_id", itemID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to apply wire receipt for item %s: %w", itemID, err)
	}

	if item.AmountReceived.GreaterThan(item.AmountDue) {
		// Stored as-is: values above amount due are a data-integrity anomaly,
		// never silently clamped.
		logger.Warn("Amount received exceeds amount due",
			slog.String("item_id", itemID),
			slog.String("amount_due", item.AmountDue.String()),
			slog.String("amount_received", item.AmountReceived.String()),
		)
	}

	if item.Status != oldStatus {
		s.scheduler.HandleStatusChange(ctx, item.ItemID, item.Status, oldStatus)
	}

	if err := s.recomputeCallStatus(ctx, call, userID); err != nil {
		return item, err
	}

	logger.Info("Wire receipt confirmed",
		slog.String("item_id", item.ItemID),
		slog.String("call_id", item.CallID),
		slog.String("status", string(item.Status)),
	)
	return item, nil
}

// recomputeCallStatus re-derives the call's aggregate status as a pure
// function of the current item set. It is never maintained incrementally, to
// avoid drift. A failed item read leaves the status untouched and surfaces
// ErrAggregationUnavailable.
func (s *capitalCallService) recomputeCallStatus(ctx context.Context, call *domain.CapitalCall, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	items, err := s.callRepo.FindItemsByCallID(ctx, call.CallID)
	if err != nil {
		logger.Error("Failed to read item set for aggregation",
			slog.String("call_id", call.CallID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: call %s: %v", ErrAggregationUnavailable, call.CallID, err)
	}

	received := decimal.Zero
	for _, it := range items {
		received = received.Add(it.AmountReceived)
	}

	target := domain.CallPartial
	if received.GreaterThanOrEqual(call.TotalAmount) {
		target = domain.CallFunded
	}

	if target == call.Status || !call.Status.CanTransitionTo(target) {
		return nil
	}

	now := time.Now().UTC()
	if err := s.callRepo.UpdateCallStatus(ctx, call.CallID, target, userID, now); err != nil {
		logger.Error("Failed to update aggregate call status",
			slog.String("call_id", call.CallID),
			slog.String("target_status", string(target)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update status for call %s: %w", call.CallID, err)
	}

	logger.Info("Call status recomputed",
		slog.String("call_id", call.CallID),
		slog.String("old_status", string(call.Status)),
		slog.String("new_status", string(target)),
		slog.String("received", received.String()),
	)
	call.Status = target
	return nil
}

// CloseCall moves a PARTIAL or FUNDED call to CLOSED. Closing is an explicit
// manager action and CLOSED is terminal.
func (s *capitalCallService) CloseCall(ctx context.Context, callID string, userID string) (*domain.CapitalCall, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	call, err := s.callRepo.FindCallByID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to find call %s: %w", callID, err)
	}

	if call.Status != domain.CallPartial && call.Status != domain.CallFunded {
		return nil, fmt.Errorf("%w: call %s is %s", ErrCallNotClosable, callID, call.Status)
	}

	now := time.Now().UTC()
	if err := s.callRepo.UpdateCallStatus(ctx, callID, domain.CallClosed, userID, now); err != nil {
		logger.Error("Failed to close call", slog.String("call_id", callID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to close call %s: %w", callID, err)
	}

	logger.Info("Capital call closed", slog.String("call_id", callID))
	call.Status = domain.CallClosed
	call.LastUpdatedAt = now
	call.LastUpdatedBy = userID
	return call, nil
}

// GetCallByID retrieves a capital call together with its items.
func (s *capitalCallService) GetCallByID(ctx context.Context, callID string) (*domain.CapitalCall, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	call, err := s.callRepo.FindCallByID(ctx, callID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find call by ID", slog.String("call_id", callID), slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find call %s: %w", callID, err)
	}

	items, err := s.callRepo.FindItemsByCallID(ctx, callID)
	if err != nil {
		logger.Error("Failed to fetch items for call", slog.String("call_id", callID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve items for call %s: %w", callID, apperrors.ErrInternal)
	}
	call.Items = items
	return call, nil
}

// ListCallsByFund retrieves a paginated list of calls for a fund.
func (s *capitalCallService) ListCallsByFund(ctx context.Context, fundID string, params dto.ListCallsParams) (*dto.ListCallsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	calls, nextToken, err := s.callRepo.ListCallsByFund(ctx, fundID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list calls from repository", slog.String("fund_id", fundID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve calls: %w", err)
	}

	responses := make([]dto.CapitalCallResponse, len(calls))
	for i := range calls {
		responses[i] = dto.ToCapitalCallResponse(&calls[i])
	}

	logger.Info("Capital calls listed", slog.String("fund_id", fundID), slog.Int("count", len(calls)))
	return &dto.ListCallsResponse{Calls: responses, NextToken: nextToken}, nil
}
