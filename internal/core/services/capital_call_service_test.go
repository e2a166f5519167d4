package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/meridianir/capcall_backend/internal/apperrors"
	"github.com/meridianir/capcall_backend/internal/core/domain"
	portsrepo "github.com/meridianir/capcall_backend/internal/core/ports/repositories"
	portssvc "github.com/meridianir/capcall_backend/internal/core/ports/services"
	"github.com/meridianir/capcall_backend/internal/core/services"
	"github.com/meridianir/capcall_backend/internal/dto"
)

// --- Mock CapitalCallRepository ---
type MockCapitalCallRepository struct {
	mock.Mock
}

var _ portsrepo.CapitalCallRepositoryWithTx = (*MockCapitalCallRepository)(nil)

func (m *MockCapitalCallRepository) FindCallByID(ctx context.Context, callID string) (*domain.CapitalCall, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapitalCall), args.Error(1)
}

func (m *MockCapitalCallRepository) ListCallsByFund(ctx context.Context, fundID string, limit int, nextToken *string) ([]domain.CapitalCall, *string, error) {
	args := m.Called(ctx, fundID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.CapitalCall), returnedNextToken, args.Error(2)
}

func (m *MockCapitalCallRepository) SaveCall(ctx context.Context, call domain.CapitalCall) error {
	args := m.Called(ctx, call)
	return args.Error(0)
}

func (m *MockCapitalCallRepository) MarkCallSent(ctx context.Context, callID string, sentAt time.Time, updatedBy string) error {
	args := m.Called(ctx, callID, sentAt, updatedBy)
	return args.Error(0)
}

func (m *MockCapitalCallRepository) UpdateCallStatus(ctx context.Context, callID string, status domain.CallStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, callID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockCapitalCallRepository) FindItemByID(ctx context.Context, itemID string) (*domain.CapitalCallItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapitalCallItem), args.Error(1)
}

func (m *MockCapitalCallRepository) FindItemsByCallID(ctx context.Context, callID string) ([]domain.CapitalCallItem, error) {
	args := m.Called(ctx, callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CapitalCallItem), args.Error(1)
}

func (m *MockCapitalCallRepository) SaveItem(ctx context.Context, item domain.CapitalCallItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCapitalCallRepository) ApplyWireReceipt(ctx context.Context, itemID string, amount decimal.Decimal, receivedAt time.Time, updatedBy string) (*domain.CapitalCallItem, error) {
	args := m.Called(ctx, itemID, amount, receivedAt, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CapitalCallItem), args.Error(1)
}

func (m *MockCapitalCallRepository) RecordReminderSent(ctx context.Context, itemID string, sentAt time.Time) error {
	args := m.Called(ctx, itemID, sentAt)
	return args.Error(0)
}

func (m *MockCapitalCallRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockCapitalCallRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCapitalCallRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock InvestorRepository ---
type MockInvestorRepository struct {
	mock.Mock
}

var _ portsrepo.InvestorRepositoryFacade = (*MockInvestorRepository)(nil)

func (m *MockInvestorRepository) FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	args := m.Called(ctx, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investor), args.Error(1)
}

func (m *MockInvestorRepository) ListInvestors(ctx context.Context, limit int, nextToken *string) ([]domain.Investor, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Investor), returnedNextToken, args.Error(2)
}

func (m *MockInvestorRepository) SaveInvestor(ctx context.Context, investor domain.Investor) error {
	args := m.Called(ctx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) UpdateInvestor(ctx context.Context, investor domain.Investor) error {
	args := m.Called(ctx, investor)
	return args.Error(0)
}

func (m *MockInvestorRepository) FindOwnershipByDeal(ctx context.Context, dealID string) ([]domain.DealOwnership, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DealOwnership), args.Error(1)
}

func (m *MockInvestorRepository) UpsertOwnership(ctx context.Context, ownership domain.DealOwnership) error {
	args := m.Called(ctx, ownership)
	return args.Error(0)
}

// --- Mock FundRepository ---
type MockFundRepository struct {
	mock.Mock
}

var _ portsrepo.FundRepositoryFacade = (*MockFundRepository)(nil)

func (m *MockFundRepository) FindFundByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	args := m.Called(ctx, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fund), args.Error(1)
}

func (m *MockFundRepository) ListFunds(ctx context.Context, limit int, nextToken *string) ([]domain.Fund, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Fund), returnedNextToken, args.Error(2)
}

func (m *MockFundRepository) FindDealByID(ctx context.Context, dealID string) (*domain.Deal, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockFundRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

func (m *MockFundRepository) SaveDeal(ctx context.Context, deal domain.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

// --- Mock ReminderScheduler ---
type MockReminderScheduler struct {
	mock.Mock
}

var _ portssvc.ReminderSchedulerSvc = (*MockReminderScheduler)(nil)

func (m *MockReminderScheduler) ScheduleAll(ctx context.Context, item domain.CapitalCallItem, deadline time.Time, now time.Time) int {
	args := m.Called(ctx, item, deadline, now)
	return args.Int(0)
}

func (m *MockReminderScheduler) CancelByTypes(ctx context.Context, itemID string, jobTypes []domain.JobType) int {
	args := m.Called(ctx, itemID, jobTypes)
	return args.Int(0)
}

func (m *MockReminderScheduler) HandleStatusChange(ctx context.Context, itemID string, newStatus, oldStatus domain.ItemStatus) int {
	args := m.Called(ctx, itemID, newStatus, oldStatus)
	return args.Int(0)
}

func (m *MockReminderScheduler) DispatchInitialNotice(ctx context.Context, item domain.CapitalCallItem) bool {
	args := m.Called(ctx, item)
	return args.Bool(0)
}

// --- Test Suite Setup ---
type CapitalCallServiceTestSuite struct {
	suite.Suite
	mockCallRepo     *MockCapitalCallRepository
	mockInvestorRepo *MockInvestorRepository
	mockFundRepo     *MockFundRepository
	mockScheduler    *MockReminderScheduler
	service          portssvc.CapitalCallSvcFacade
	fund             domain.Fund
	deal             domain.Deal
	userID           string
	deadline         time.Time
}

func (suite *CapitalCallServiceTestSuite) SetupTest() {
	suite.mockCallRepo = new(MockCapitalCallRepository)
	suite.mockInvestorRepo = new(MockInvestorRepository)
	suite.mockFundRepo = new(MockFundRepository)
	suite.mockScheduler = new(MockReminderScheduler)
	suite.service = services.NewCapitalCallService(suite.mockCallRepo, suite.mockInvestorRepo, suite.mockFundRepo, suite.mockScheduler)

	suite.userID = uuid.NewString()
	suite.deadline = time.Now().UTC().Add(14 * 24 * time.Hour)
	suite.fund = domain.Fund{
		FundID:       uuid.NewString(),
		Name:         "Meridian Growth Fund II",
		CurrencyCode: "USD",
	}
	suite.deal = domain.Deal{
		DealID: uuid.NewString(),
		FundID: suite.fund.FundID,
		Name:   "Project Harbor",
	}
}

func (suite *CapitalCallServiceTestSuite) createRequest(total int64) dto.CreateCapitalCallRequest {
	return dto.CreateCapitalCallRequest{
		FundID:       suite.fund.FundID,
		DealID:       suite.deal.DealID,
		TotalAmount:  decimal.NewFromInt(total),
		CurrencyCode: "USD",
		Deadline:     suite.deadline,
	}
}

// --- CreateCapitalCall ---

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_Success() {
	ctx := context.Background()
	req := suite.createRequest(1_000_000)
	investorA := uuid.NewString()
	investorB := uuid.NewString()
	ownerships := []domain.DealOwnership{
		{DealID: suite.deal.DealID, InvestorID: investorA, Fraction: decimal.RequireFromString("0.6")},
		{DealID: suite.deal.DealID, InvestorID: investorB, Fraction: decimal.RequireFromString("0.4")},
	}

	suite.mockFundRepo.On("FindFundByID", ctx, suite.fund.FundID).Return(&suite.fund, nil).Once()
	suite.mockFundRepo.On("FindDealByID", ctx, suite.deal.DealID).Return(&suite.deal, nil).Once()
	suite.mockInvestorRepo.On("FindOwnershipByDeal", ctx, suite.deal.DealID).Return(ownerships, nil).Once()
	suite.mockCallRepo.On("SaveCall", ctx, mock.AnythingOfType("domain.CapitalCall")).Return(nil).Once()
	suite.mockCallRepo.On("SaveItem", ctx, mock.AnythingOfType("domain.CapitalCallItem")).Return(nil).Twice()
	suite.mockScheduler.On("DispatchInitialNotice", ctx, mock.AnythingOfType("domain.CapitalCallItem")).Return(true).Twice()
	suite.mockCallRepo.On("MarkCallSent", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), suite.userID).Return(nil).Once()
	suite.mockScheduler.On("ScheduleAll", ctx, mock.AnythingOfType("domain.CapitalCallItem"), suite.deadline, mock.AnythingOfType("time.Time")).Return(5).Twice()

	call, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(call)
	suite.Equal(domain.CallSent, call.Status)
	suite.Require().NotNil(call.SentAt)
	suite.Require().Len(call.Items, 2)
	suite.Equal(investorA, call.Items[0].InvestorID)
	suite.True(call.Items[0].AmountDue.Equal(decimal.NewFromInt(600_000)), "got %s", call.Items[0].AmountDue)
	suite.Equal(investorB, call.Items[1].InvestorID)
	suite.True(call.Items[1].AmountDue.Equal(decimal.NewFromInt(400_000)), "got %s", call.Items[1].AmountDue)
	suite.Equal(domain.ItemPending, call.Items[0].Status)

	suite.mockCallRepo.AssertExpectations(suite.T())
	suite.mockScheduler.AssertExpectations(suite.T())
}

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_NonPositiveTotal() {
	ctx := context.Background()
	req := suite.createRequest(0)

	_, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidAllocationInput)
	suite.mockFundRepo.AssertNotCalled(suite.T(), "FindFundByID", mock.Anything, mock.Anything)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "SaveCall", mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_FundNotFound() {
	ctx := context.Background()
	req := suite.createRequest(100_000)

	suite.mockFundRepo.On("FindFundByID", ctx, suite.fund.FundID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "SaveCall", mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_DealFromOtherFund() {
	ctx := context.Background()
	req := suite.createRequest(100_000)
	foreignDeal := domain.Deal{DealID: suite.deal.DealID, FundID: uuid.NewString()}

	suite.mockFundRepo.On("FindFundByID", ctx, suite.fund.FundID).Return(&suite.fund, nil).Once()
	suite.mockFundRepo.On("FindDealByID", ctx, suite.deal.DealID).Return(&foreignDeal, nil).Once()

	_, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_NoOwnership_DraftWithoutItems() {
	ctx := context.Background()
	req := suite.createRequest(100_000)

	suite.mockFundRepo.On("FindFundByID", ctx, suite.fund.FundID).Return(&suite.fund, nil).Once()
	suite.mockFundRepo.On("FindDealByID", ctx, suite.deal.DealID).Return(&suite.deal, nil).Once()
	suite.mockInvestorRepo.On("FindOwnershipByDeal", ctx, suite.deal.DealID).Return([]domain.DealOwnership{}, nil).Once()
	suite.mockCallRepo.On("SaveCall", ctx, mock.AnythingOfType("domain.CapitalCall")).Return(nil).Once()

	call, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CallDraft, call.Status)
	suite.Empty(call.Items)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "SaveItem", mock.Anything, mock.Anything)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "MarkCallSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockScheduler.AssertNotCalled(suite.T(), "ScheduleAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_OneItemInsertFails_OthersSurvive() {
	ctx := context.Background()
	req := suite.createRequest(1_000_000)
	investorA := uuid.NewString()
	investorB := uuid.NewString()
	ownerships := []domain.DealOwnership{
		{DealID: suite.deal.DealID, InvestorID: investorA, Fraction: decimal.RequireFromString("0.6")},
		{DealID: suite.deal.DealID, InvestorID: investorB, Fraction: decimal.RequireFromString("0.4")},
	}

	suite.mockFundRepo.On("FindFundByID", ctx, suite.fund.FundID).Return(&suite.fund, nil).Once()
	suite.mockFundRepo.On("FindDealByID", ctx, suite.deal.DealID).Return(&suite.deal, nil).Once()
	suite.mockInvestorRepo.On("FindOwnershipByDeal", ctx, suite.deal.DealID).Return(ownerships, nil).Once()
	suite.mockCallRepo.On("SaveCall", ctx, mock.AnythingOfType("domain.CapitalCall")).Return(nil).Once()
	suite.mockCallRepo.On("SaveItem", ctx, mock.MatchedBy(func(item domain.CapitalCallItem) bool {
		return item.InvestorID == investorA
	})).Return(assert.AnError).Once()
	suite.mockCallRepo.On("SaveItem", ctx, mock.MatchedBy(func(item domain.CapitalCallItem) bool {
		return item.InvestorID == investorB
	})).Return(nil).Once()
	suite.mockScheduler.On("DispatchInitialNotice", ctx, mock.AnythingOfType("domain.CapitalCallItem")).Return(true).Once()
	suite.mockCallRepo.On("MarkCallSent", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), suite.userID).Return(nil).Once()
	suite.mockScheduler.On("ScheduleAll", ctx, mock.AnythingOfType("domain.CapitalCallItem"), suite.deadline, mock.AnythingOfType("time.Time")).Return(5).Once()

	call, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(call.Items, 1)
	suite.Equal(investorB, call.Items[0].InvestorID)
	suite.mockCallRepo.AssertExpectations(suite.T())
	suite.mockScheduler.AssertExpectations(suite.T())
}

func (suite *CapitalCallServiceTestSuite) TestCreateCapitalCall_SchedulingFailureDoesNotFailCall() {
	ctx := context.Background()
	req := suite.createRequest(100_000)
	ownerships := []domain.DealOwnership{
		{DealID: suite.deal.DealID, InvestorID: uuid.NewString(), Fraction: decimal.NewFromInt(1)},
	}

	suite.mockFundRepo.On("FindFundByID", ctx, suite.fund.FundID).Return(&suite.fund, nil).Once()
	suite.mockFundRepo.On("FindDealByID", ctx, suite.deal.DealID).Return(&suite.deal, nil).Once()
	suite.mockInvestorRepo.On("FindOwnershipByDeal", ctx, suite.deal.DealID).Return(ownerships, nil).Once()
	suite.mockCallRepo.On("SaveCall", ctx, mock.AnythingOfType("domain.CapitalCall")).Return(nil).Once()
	suite.mockCallRepo.On("SaveItem", ctx, mock.AnythingOfType("domain.CapitalCallItem")).Return(nil).Once()
	suite.mockScheduler.On("DispatchInitialNotice", ctx, mock.AnythingOfType("domain.CapitalCallItem")).Return(false).Once()
	suite.mockCallRepo.On("MarkCallSent", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"), suite.userID).Return(nil).Once()
	suite.mockScheduler.On("ScheduleAll", ctx, mock.AnythingOfType("domain.CapitalCallItem"), suite.deadline, mock.AnythingOfType("time.Time")).Return(0).Once()

	call, err := suite.service.CreateCapitalCall(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CallSent, call.Status)
	suite.mockScheduler.AssertExpectations(suite.T())
}

// --- ConfirmWireReceived ---

func (suite *CapitalCallServiceTestSuite) wiredItem(callID string, due, received int64, status domain.ItemStatus) *domain.CapitalCallItem {
	return &domain.CapitalCallItem{
		ItemID:         uuid.NewString(),
		CallID:         callID,
		FundID:         suite.fund.FundID,
		InvestorID:     uuid.NewString(),
		AmountDue:      decimal.NewFromInt(due),
		AmountReceived: decimal.NewFromInt(received),
		Status:         status,
	}
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_PartialPayment() {
	ctx := context.Background()
	receivedAt := time.Now().UTC()
	call := &domain.CapitalCall{
		CallID:      uuid.NewString(),
		FundID:      suite.fund.FundID,
		DealID:      suite.deal.DealID,
		TotalAmount: decimal.NewFromInt(1_000_000),
		Status:      domain.CallSent,
	}
	existing := suite.wiredItem(call.CallID, 600_000, 0, domain.ItemPending)
	updated := *existing
	updated.AmountReceived = decimal.NewFromInt(250_000)
	updated.Status = domain.ItemPartial

	suite.mockCallRepo.On("FindItemByID", ctx, existing.ItemID).Return(existing, nil).Once()
	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()
	suite.mockCallRepo.On("ApplyWireReceipt", ctx, existing.ItemID, decimal.NewFromInt(250_000), receivedAt, suite.userID).Return(&updated, nil).Once()
	suite.mockScheduler.On("HandleStatusChange", ctx, existing.ItemID, domain.ItemPartial, domain.ItemPending).Return(0).Once()
	suite.mockCallRepo.On("FindItemsByCallID", ctx, call.CallID).Return([]domain.CapitalCallItem{updated}, nil).Once()
	suite.mockCallRepo.On("UpdateCallStatus", ctx, call.CallID, domain.CallPartial, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	item, err := suite.service.ConfirmWireReceived(ctx, existing.ItemID, decimal.NewFromInt(250_000), receivedAt, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ItemPartial, item.Status)
	suite.mockCallRepo.AssertExpectations(suite.T())
	suite.mockScheduler.AssertExpectations(suite.T())
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_FullPayment_FundsCall() {
	ctx := context.Background()
	receivedAt := time.Now().UTC()
	call := &domain.CapitalCall{
		CallID:      uuid.NewString(),
		TotalAmount: decimal.NewFromInt(1_000_000),
		Status:      domain.CallPartial,
	}
	existing := suite.wiredItem(call.CallID, 600_000, 0, domain.ItemPending)
	updated := *existing
	updated.AmountReceived = decimal.NewFromInt(600_000)
	updated.Status = domain.ItemComplete
	sibling := suite.wiredItem(call.CallID, 400_000, 400_000, domain.ItemComplete)

	suite.mockCallRepo.On("FindItemByID", ctx, existing.ItemID).Return(existing, nil).Once()
	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()
	suite.mockCallRepo.On("ApplyWireReceipt", ctx, existing.ItemID, decimal.NewFromInt(600_000), receivedAt, suite.userID).Return(&updated, nil).Once()
	suite.mockScheduler.On("HandleStatusChange", ctx, existing.ItemID, domain.ItemComplete, domain.ItemPending).Return(5).Once()
	suite.mockCallRepo.On("FindItemsByCallID", ctx, call.CallID).Return([]domain.CapitalCallItem{updated, *sibling}, nil).Once()
	suite.mockCallRepo.On("UpdateCallStatus", ctx, call.CallID, domain.CallFunded, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	item, err := suite.service.ConfirmWireReceived(ctx, existing.ItemID, decimal.NewFromInt(600_000), receivedAt, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ItemComplete, item.Status)
	suite.mockCallRepo.AssertExpectations(suite.T())
	suite.mockScheduler.AssertExpectations(suite.T())
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_NonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.ConfirmWireReceived(ctx, uuid.NewString(), decimal.Zero, time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "FindItemByID", mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_CancelledItemRejected() {
	ctx := context.Background()
	existing := suite.wiredItem(uuid.NewString(), 100_000, 0, domain.ItemCancelled)

	suite.mockCallRepo.On("FindItemByID", ctx, existing.ItemID).Return(existing, nil).Once()

	_, err := suite.service.ConfirmWireReceived(ctx, existing.ItemID, decimal.NewFromInt(100), time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrItemNotPayable)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "ApplyWireReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_ClosedCallRejected() {
	ctx := context.Background()
	call := &domain.CapitalCall{CallID: uuid.NewString(), Status: domain.CallClosed}
	existing := suite.wiredItem(call.CallID, 100_000, 0, domain.ItemPending)

	suite.mockCallRepo.On("FindItemByID", ctx, existing.ItemID).Return(existing, nil).Once()
	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()

	_, err := suite.service.ConfirmWireReceived(ctx, existing.ItemID, decimal.NewFromInt(100), time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "ApplyWireReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_AggregationUnavailable_ItemStillReturned() {
	ctx := context.Background()
	receivedAt := time.Now().UTC()
	call := &domain.CapitalCall{
		CallID:      uuid.NewString(),
		TotalAmount: decimal.NewFromInt(1_000_000),
		Status:      domain.CallSent,
	}
	existing := suite.wiredItem(call.CallID, 600_000, 0, domain.ItemPending)
	updated := *existing
	updated.AmountReceived = decimal.NewFromInt(100_000)
	updated.Status = domain.ItemPartial

	suite.mockCallRepo.On("FindItemByID", ctx, existing.ItemID).Return(existing, nil).Once()
	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()
	suite.mockCallRepo.On("ApplyWireReceipt", ctx, existing.ItemID, decimal.NewFromInt(100_000), receivedAt, suite.userID).Return(&updated, nil).Once()
	suite.mockScheduler.On("HandleStatusChange", ctx, existing.ItemID, domain.ItemPartial, domain.ItemPending).Return(0).Once()
	suite.mockCallRepo.On("FindItemsByCallID", ctx, call.CallID).Return(nil, assert.AnError).Once()

	item, err := suite.service.ConfirmWireReceived(ctx, existing.ItemID, decimal.NewFromInt(100_000), receivedAt, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAggregationUnavailable)
	// The receipt itself is durable and the updated item is still handed back.
	suite.Require().NotNil(item)
	suite.Equal(domain.ItemPartial, item.Status)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "UpdateCallStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestConfirmWireReceived_NoStatusChange_NoCancellation() {
	ctx := context.Background()
	receivedAt := time.Now().UTC()
	call := &domain.CapitalCall{
		CallID:      uuid.NewString(),
		TotalAmount: decimal.NewFromInt(1_000_000),
		Status:      domain.CallPartial,
	}
	existing := suite.wiredItem(call.CallID, 600_000, 100_000, domain.ItemPartial)
	updated := *existing
	updated.AmountReceived = decimal.NewFromInt(200_000)

	suite.mockCallRepo.On("FindItemByID", ctx, existing.ItemID).Return(existing, nil).Once()
	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()
	suite.mockCallRepo.On("ApplyWireReceipt", ctx, existing.ItemID, decimal.NewFromInt(100_000), receivedAt, suite.userID).Return(&updated, nil).Once()
	suite.mockCallRepo.On("FindItemsByCallID", ctx, call.CallID).Return([]domain.CapitalCallItem{updated}, nil).Once()

	_, err := suite.service.ConfirmWireReceived(ctx, existing.ItemID, decimal.NewFromInt(100_000), receivedAt, suite.userID)

	suite.Require().NoError(err)
	suite.mockScheduler.AssertNotCalled(suite.T(), "HandleStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- CloseCall ---

func (suite *CapitalCallServiceTestSuite) TestCloseCall_FromPartial() {
	ctx := context.Background()
	call := &domain.CapitalCall{CallID: uuid.NewString(), Status: domain.CallPartial}

	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()
	suite.mockCallRepo.On("UpdateCallStatus", ctx, call.CallID, domain.CallClosed, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	closed, err := suite.service.CloseCall(ctx, call.CallID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.CallClosed, closed.Status)
	suite.mockCallRepo.AssertExpectations(suite.T())
}

func (suite *CapitalCallServiceTestSuite) TestCloseCall_SentCallNotClosable() {
	ctx := context.Background()
	call := &domain.CapitalCall{CallID: uuid.NewString(), Status: domain.CallSent}

	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()

	_, err := suite.service.CloseCall(ctx, call.CallID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCallNotClosable)
	suite.mockCallRepo.AssertNotCalled(suite.T(), "UpdateCallStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CapitalCallServiceTestSuite) TestCloseCall_AlreadyClosed() {
	ctx := context.Background()
	call := &domain.CapitalCall{CallID: uuid.NewString(), Status: domain.CallClosed}

	suite.mockCallRepo.On("FindCallByID", ctx, call.CallID).Return(call, nil).Once()

	_, err := suite.service.CloseCall(ctx, call.CallID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCallNotClosable)
}

// --- GetCallByID ---

func (suite *CapitalCallServiceTestSuite) TestGetCallByID_NotFound() {
	ctx := context.Background()
	callID := uuid.NewString()

	suite.mockCallRepo.On("FindCallByID", ctx, callID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetCallByID(ctx, callID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestCapitalCallServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CapitalCallServiceTestSuite))
}
