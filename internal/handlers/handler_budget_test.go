package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
	"github.com/BuildrFin/construction_finance_app/internal/middleware"
)

// --- Mock BudgetService ---
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) GetBudgetByID(ctx context.Context, budgetID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) ListBudgetsByProject(ctx context.Context, projectID string, params dto.ListBudgetsParams) ([]domain.ProjectBudget, *string, error) {
	args := m.Called(ctx, projectID, params)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.ProjectBudget), next, args.Error(2)
}
func (m *MockBudgetService) ListBudgetsByStatus(ctx context.Context, status domain.BudgetStatus) ([]domain.ProjectBudget, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) AddBudgetLine(ctx context.Context, budgetID string, line dto.BudgetLineInput, userID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID, line, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) RemoveBudgetLine(ctx context.Context, budgetID string, lineID string, userID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID, lineID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) ReplaceBudgetLine(ctx context.Context, budgetID string, lineID string, line dto.BudgetLineInput, userID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID, lineID, line, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) UpdateBudgetStatus(ctx context.Context, budgetID string, req dto.UpdateBudgetStatusRequest, userID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}
func (m *MockBudgetService) ApproveBaseline(ctx context.Context, budgetID string, req dto.ApproveBaselineRequest, userID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.BudgetSvcFacade = (*MockBudgetService)(nil)

// --- Test Suite ---
type BudgetHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockBudgetService *MockBudgetService
}

func (suite *BudgetHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockBudgetService = new(MockBudgetService)

	v1 := suite.router.Group("/api/v1", middleware.ActorMiddleware())
	registerBudgetRoutes(v1, suite.mockBudgetService)
}

func (suite *BudgetHandlerTestSuite) budgetFixture() *domain.ProjectBudget {
	code, err := domain.NewCostCode("03-100", "")
	suite.Require().NoError(err)
	money := func(f float64) domain.Money {
		m, merr := domain.NewMoney(decimal.NewFromFloat(f), "USD")
		suite.Require().NoError(merr)
		return m
	}
	line, err := domain.NewBudgetLine("line-1", code, domain.CategoryMaterial, "Concrete supply", money(1000), money(400), money(250))
	suite.Require().NoError(err)
	budget, err := domain.NewProjectBudget("budget-1", "project-1", "GMP Budget", 1, domain.BudgetDraft, "USD", []domain.BudgetLine{line})
	suite.Require().NoError(err)
	return budget
}

func (suite *BudgetHandlerTestSuite) doRequest(method, url string, body any, userID string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *BudgetHandlerTestSuite) TestCreateBudget_Success() {
	budget := suite.budgetFixture()

	req := dto.CreateBudgetRequest{
		ProjectID:    "project-1",
		Name:         "GMP Budget",
		CurrencyCode: "USD",
	}

	suite.mockBudgetService.On("CreateBudget",
		mock.Anything,
		mock.MatchedBy(func(r dto.CreateBudgetRequest) bool {
			return r.ProjectID == "project-1" && r.Name == "GMP Budget"
		}),
		"user-1",
	).Return(budget, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/budgets", req, "user-1")

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.BudgetResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("budget-1", resp.BudgetID)
	suite.Equal("DRAFT", resp.Status)
	suite.Len(resp.Lines, 1)

	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestCreateBudget_MissingActorHeader() {
	w := suite.doRequest(http.MethodPost, "/api/v1/budgets", dto.CreateBudgetRequest{}, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockBudgetService.AssertNotCalled(suite.T(), "CreateBudget")
}

func (suite *BudgetHandlerTestSuite) TestGetBudget_NotFound() {
	suite.mockBudgetService.On("GetBudgetByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: budget missing not found", apperrors.ErrNotFound)).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/budgets/missing", nil, "user-1")

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestUpdateBudgetStatus_InvalidTransition() {
	suite.mockBudgetService.On("UpdateBudgetStatus",
		mock.Anything, "budget-1",
		mock.MatchedBy(func(r dto.UpdateBudgetStatusRequest) bool { return r.Status == "CLOSED" }),
		"user-1",
	).Return(nil, fmt.Errorf("%w: cannot move from DRAFT to CLOSED", apperrors.ErrInvalidTransition)).Once()

	w := suite.doRequest(http.MethodPatch, "/api/v1/budgets/budget-1/status", dto.UpdateBudgetStatusRequest{Status: "CLOSED"}, "user-1")

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestListBudgetsByProject_Success() {
	budget := suite.budgetFixture()
	nextToken := "next-page"

	suite.mockBudgetService.On("ListBudgetsByProject",
		mock.Anything, "project-1",
		mock.MatchedBy(func(p dto.ListBudgetsParams) bool { return p.Limit == 10 }),
	).Return([]domain.ProjectBudget{*budget}, &nextToken, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/projects/project-1/budgets?limit=10", nil, "user-1")

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListBudgetsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Budgets, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(nextToken, *resp.NextToken)

	suite.mockBudgetService.AssertExpectations(suite.T())
}

func (suite *BudgetHandlerTestSuite) TestListBudgetsByStatus_InvalidStatus() {
	w := suite.doRequest(http.MethodGet, "/api/v1/budgets?status=BOGUS", nil, "user-1")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBudgetService.AssertNotCalled(suite.T(), "ListBudgetsByStatus")
}

// --- Run Test Suite ---
func TestBudgetHandler(t *testing.T) {
	suite.Run(t, new(BudgetHandlerTestSuite))
}
