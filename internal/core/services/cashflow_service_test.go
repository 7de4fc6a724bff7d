package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/core/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

type CashFlowServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCashFlowRepository
	service  portssvc.CashFlowSvcFacade
}

func (suite *CashFlowServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCashFlowRepository)
	suite.service = services.NewCashFlowService(suite.mockRepo)
}

func (suite *CashFlowServiceTestSuite) createRequest() dto.CreateProjectionRequest {
	return dto.CreateProjectionRequest{
		ProjectID:      "project-1",
		Scenario:       "EXPECTED",
		CurrencyCode:   "USD",
		StartDate:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		OpeningBalance: usdInput(5000),
		Weeks:          weekInputsFixture(),
	}
}

func (suite *CashFlowServiceTestSuite) TestCreateProjection_RecomputesBalances() {
	ctx := context.Background()
	suite.mockRepo.On("SaveProjection", ctx, mock.Anything).Return(nil).Once()

	projection, err := suite.service.CreateProjection(ctx, suite.createRequest(), "user-1")

	suite.Require().NoError(err)
	weeks := projection.Weeks()
	suite.Require().Len(weeks, domain.ProjectionWeeks)
	// Each week nets 1000 in, 900 out.
	suite.True(weeks[0].NetCashFlow.Equal(usd(100)), "net recomputed from buckets, not taken from input")
	suite.True(weeks[0].EndingBalance.Equal(usd(5100)))
	suite.True(projection.FinalBalance().Equal(usd(6300)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CashFlowServiceTestSuite) TestCreateProjection_RejectsDuplicateWeekNumbers() {
	ctx := context.Background()
	req := suite.createRequest()
	req.Weeks[1].WeekNumber = 1

	projection, err := suite.service.CreateProjection(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(projection)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveProjection")
}

func (suite *CashFlowServiceTestSuite) TestCreateProjection_ChainsShuffledWeeksInOrder() {
	ctx := context.Background()
	req := suite.createRequest()
	for i, j := 0, len(req.Weeks)-1; i < j; i, j = i+1, j-1 {
		req.Weeks[i], req.Weeks[j] = req.Weeks[j], req.Weeks[i]
	}
	suite.mockRepo.On("SaveProjection", ctx, mock.Anything).Return(nil).Once()

	projection, err := suite.service.CreateProjection(ctx, req, "user-1")

	suite.Require().NoError(err)
	weeks := projection.Weeks()
	for i, w := range weeks {
		suite.Equal(i+1, w.WeekNumber)
	}
	suite.True(weeks[0].EndingBalance.Equal(usd(5100)), "balances chain from week 1 regardless of input order")
	suite.True(projection.FinalBalance().Equal(usd(6300)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CashFlowServiceTestSuite) TestCreateProjection_ShortHorizon() {
	ctx := context.Background()
	req := suite.createRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, 80)

	projection, err := suite.service.CreateProjection(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.Nil(projection)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveProjection")
}

func (suite *CashFlowServiceTestSuite) TestCreateProjection_CompanyWide() {
	ctx := context.Background()
	req := suite.createRequest()
	req.ProjectID = ""
	suite.mockRepo.On("SaveProjection", ctx, mock.MatchedBy(func(p *domain.CashFlowProjection) bool {
		return p.IsCompanyWide()
	})).Return(nil).Once()

	projection, err := suite.service.CreateProjection(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.True(projection.IsCompanyWide())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CashFlowServiceTestSuite) TestGetProjectionByScenario_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindProjectionByScenario", ctx, "project-1", domain.ScenarioWorstCase).Return(nil, nil).Once()

	projection, err := suite.service.GetProjectionByScenario(ctx, "project-1", domain.ScenarioWorstCase)

	suite.Require().Error(err)
	suite.Nil(projection)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CashFlowServiceTestSuite) TestGetProjectionByScenario_RejectsUnknownScenario() {
	ctx := context.Background()

	_, err := suite.service.GetProjectionByScenario(ctx, "project-1", domain.CashFlowScenario("LIKELY"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindProjectionByScenario")
}

func (suite *CashFlowServiceTestSuite) TestUpdateWeekData_RechainsDownstreamBalances() {
	ctx := context.Background()
	projection := projectionFixture(suite.T())
	suite.mockRepo.On("FindProjectionByID", ctx, "projection-1").Return(projection, nil).Once()
	suite.mockRepo.On("UpdateProjection", ctx, mock.Anything).Return(nil).Once()

	in := weekInputsFixture()[6]
	in.PayrollOutflows = usdInput(2600) // week 7 now nets -1600

	updated, err := suite.service.UpdateWeekData(ctx, "projection-1", 7, in, "user-1")

	suite.Require().NoError(err)
	weeks := updated.Weeks()
	suite.True(weeks[6].NetCashFlow.Equal(usd(-1600)))
	suite.True(weeks[6].EndingBalance.Equal(usd(4000)), "opening 5000 plus six weeks of +100 minus 1600")
	suite.True(weeks[7].EndingBalance.Equal(usd(4100)), "downstream weeks rechain from the new balance")
	suite.True(updated.FinalBalance().Equal(usd(4600)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CashFlowServiceTestSuite) TestUpdateWeekData_UnknownWeek() {
	ctx := context.Background()
	projection := projectionFixture(suite.T())
	suite.mockRepo.On("FindProjectionByID", ctx, "projection-1").Return(projection, nil).Once()

	_, err := suite.service.UpdateWeekData(ctx, "projection-1", 14, weekInputsFixture()[0], "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateProjection")
}

func TestCashFlowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CashFlowServiceTestSuite))
}
