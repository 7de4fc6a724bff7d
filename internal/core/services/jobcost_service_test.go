package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/core/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

type JobCostServiceTestSuite struct {
	suite.Suite
	mockJobCostRepo *MockJobCostRepository
	mockBudgetRepo  *MockBudgetRepository
	service         portssvc.JobCostSvcFacade
}

func (suite *JobCostServiceTestSuite) SetupTest() {
	suite.mockJobCostRepo = new(MockJobCostRepository)
	suite.mockBudgetRepo = new(MockBudgetRepository)
	suite.service = services.NewJobCostService(suite.mockJobCostRepo, suite.mockBudgetRepo)
}

func (suite *JobCostServiceTestSuite) createRequest() dto.CreateJobCostRequest {
	return dto.CreateJobCostRequest{
		ProjectID:       "project-1",
		BudgetID:        "budget-1",
		CostCode:        "CO-100",
		Category:        "MATERIAL",
		TransactionType: "ACTUAL",
		Description:     "Rebar delivery",
		TransactionDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Planned:         usdInput(500),
		Committed:       usdInput(200),
		Actual:          usdInput(150),
		VendorID:        "vendor-1",
	}
}

func (suite *JobCostServiceTestSuite) TestCreateJobCost_Success() {
	ctx := context.Background()
	budget := budgetFixture(suite.T(), domain.BudgetBaseline)
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, "budget-1").Return(budget, nil).Once()
	suite.mockJobCostRepo.On("SaveJobCost", ctx, mock.MatchedBy(func(r *domain.JobCostRecord) bool {
		return r.ProjectID == "project-1" && r.CostCode.Value == "CO-100" &&
			r.TransactionType == domain.CostActual && !r.Approved && r.CreatedBy == "user-1"
	})).Return(nil).Once()

	record, err := suite.service.CreateJobCost(ctx, suite.createRequest(), "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(record)
	suite.NotEmpty(record.JobCostID)
	suite.mockJobCostRepo.AssertExpectations(suite.T())
}

func (suite *JobCostServiceTestSuite) TestCreateJobCost_BudgetMissing() {
	ctx := context.Background()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, "budget-1").Return(nil, apperrors.ErrNotFound).Once()

	record, err := suite.service.CreateJobCost(ctx, suite.createRequest(), "user-1")

	suite.Require().Error(err)
	suite.Nil(record)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockJobCostRepo.AssertNotCalled(suite.T(), "SaveJobCost")
}

func (suite *JobCostServiceTestSuite) TestCreateJobCost_BudgetCurrencyMismatch() {
	ctx := context.Background()
	budget := budgetFixture(suite.T(), domain.BudgetBaseline)
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, "budget-1").Return(budget, nil).Once()

	req := suite.createRequest()
	req.Planned.Currency = "EUR"
	req.Committed.Currency = "EUR"
	req.Actual.Currency = "EUR"

	_, err := suite.service.CreateJobCost(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
	suite.mockJobCostRepo.AssertNotCalled(suite.T(), "SaveJobCost")
}

func (suite *JobCostServiceTestSuite) TestApproveJobCost_Success() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), false)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()
	suite.mockJobCostRepo.On("UpdateJobCost", ctx, mock.MatchedBy(func(r *domain.JobCostRecord) bool {
		return r.Approved && r.ApprovedBy == "approver-2" && r.ApprovedAt != nil
	})).Return(nil).Once()

	approved, err := suite.service.ApproveJobCost(ctx, "jobcost-1", "approver-2")

	suite.Require().NoError(err)
	suite.True(approved.Approved)
	suite.mockJobCostRepo.AssertExpectations(suite.T())
}

func (suite *JobCostServiceTestSuite) TestApproveJobCost_AlreadyApproved() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), true)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()

	_, err := suite.service.ApproveJobCost(ctx, "jobcost-1", "approver-2")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockJobCostRepo.AssertNotCalled(suite.T(), "UpdateJobCost")
}

func (suite *JobCostServiceTestSuite) TestUpdateActualAmount_Success() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), false)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()
	suite.mockJobCostRepo.On("UpdateJobCost", ctx, mock.MatchedBy(func(r *domain.JobCostRecord) bool {
		return r.ActualAmount.Equal(usd(600))
	})).Return(nil).Once()

	updated, err := suite.service.UpdateActualAmount(ctx, "jobcost-1", dto.UpdateJobCostAmountRequest{Amount: usdInput(600)}, "user-1")

	suite.Require().NoError(err)
	suite.True(updated.IsOverBudget(), "actual above planned flags the record")
	suite.mockJobCostRepo.AssertExpectations(suite.T())
}

func (suite *JobCostServiceTestSuite) TestUpdateCommittedAmount_CurrencyMismatch() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), false)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()

	_, err := suite.service.UpdateCommittedAmount(ctx, "jobcost-1",
		dto.UpdateJobCostAmountRequest{Amount: dto.MoneyInput{Amount: usd(10).Amount(), Currency: "EUR"}}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)
	suite.mockJobCostRepo.AssertNotCalled(suite.T(), "UpdateJobCost")
}

func (suite *JobCostServiceTestSuite) TestApplyToBudget_Success() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), true)
	budget := budgetFixture(suite.T(), domain.BudgetBaseline)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, "budget-1").Return(budget, nil).Once()
	suite.mockJobCostRepo.On("SaveJobCostWithBudget", ctx, record, mock.MatchedBy(func(b *domain.ProjectBudget) bool {
		return b.CommittedTotal().Equal(usd(600)) && b.ActualTotal().Equal(usd(400))
	})).Return(nil).Once()

	updated, err := suite.service.ApplyToBudget(ctx, "jobcost-1", "user-1")

	suite.Require().NoError(err)
	suite.True(updated.ActualTotal().Equal(usd(400)))
	suite.mockJobCostRepo.AssertExpectations(suite.T())
}

func (suite *JobCostServiceTestSuite) TestApplyToBudget_RequiresApproval() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), false)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()

	_, err := suite.service.ApplyToBudget(ctx, "jobcost-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	suite.mockBudgetRepo.AssertNotCalled(suite.T(), "FindBudgetByID")
}

func (suite *JobCostServiceTestSuite) TestApplyToBudget_NoMatchingLine() {
	ctx := context.Background()
	record := jobCostFixture(suite.T(), true)
	record.Category = domain.CategoryLabor // budget line is MATERIAL
	budget := budgetFixture(suite.T(), domain.BudgetBaseline)
	suite.mockJobCostRepo.On("FindJobCostByID", ctx, "jobcost-1").Return(record, nil).Once()
	suite.mockBudgetRepo.On("FindBudgetByID", ctx, "budget-1").Return(budget, nil).Once()

	_, err := suite.service.ApplyToBudget(ctx, "jobcost-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockJobCostRepo.AssertNotCalled(suite.T(), "SaveJobCostWithBudget")
}

func (suite *JobCostServiceTestSuite) TestListPendingApproval_Error() {
	ctx := context.Background()
	suite.mockJobCostRepo.On("ListPendingApproval", ctx, "project-1").Return(nil, assert.AnError).Once()

	_, err := suite.service.ListPendingApproval(ctx, "project-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

func TestJobCostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JobCostServiceTestSuite))
}
