package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
)

// --- Mock BudgetRepository ---

type MockBudgetRepository struct {
	mock.Mock
}

var _ portsrepo.BudgetRepositoryFacade = (*MockBudgetRepository)(nil)

func (m *MockBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.ProjectBudget, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectBudget), args.Error(1)
}

func (m *MockBudgetRepository) ListBudgetsByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.ProjectBudget, *string, error) {
	args := m.Called(ctx, projectID, limit, nextToken)
	var budgets []domain.ProjectBudget
	if args.Get(0) != nil {
		budgets = args.Get(0).([]domain.ProjectBudget)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return budgets, token, args.Error(2)
}

func (m *MockBudgetRepository) ListBudgetsByStatus(ctx context.Context, status domain.BudgetStatus) ([]domain.ProjectBudget, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProjectBudget), args.Error(1)
}

func (m *MockBudgetRepository) SaveBudget(ctx context.Context, budget *domain.ProjectBudget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateBudget(ctx context.Context, budget *domain.ProjectBudget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

// --- Mock CostCodeRepository ---

type MockCostCodeRepository struct {
	mock.Mock
}

var _ portsrepo.CostCodeRepositoryFacade = (*MockCostCodeRepository)(nil)

func (m *MockCostCodeRepository) FindHierarchyByCode(ctx context.Context, code string) (*domain.CostCodeHierarchy, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CostCodeHierarchy), args.Error(1)
}

func (m *MockCostCodeRepository) ListHierarchyByLevel(ctx context.Context, level domain.HierarchyLevel, includeInactive bool) ([]domain.CostCodeHierarchy, error) {
	args := m.Called(ctx, level, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostCodeHierarchy), args.Error(1)
}

func (m *MockCostCodeRepository) ListHierarchyChildren(ctx context.Context, parentCode string) ([]domain.CostCodeHierarchy, error) {
	args := m.Called(ctx, parentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostCodeHierarchy), args.Error(1)
}

func (m *MockCostCodeRepository) SaveHierarchy(ctx context.Context, node *domain.CostCodeHierarchy) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockCostCodeRepository) UpdateHierarchy(ctx context.Context, node *domain.CostCodeHierarchy) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

// --- Mock JobCostRepository ---

type MockJobCostRepository struct {
	mock.Mock
}

var _ portsrepo.JobCostRepositoryFacade = (*MockJobCostRepository)(nil)

func (m *MockJobCostRepository) FindJobCostByID(ctx context.Context, jobCostID string) (*domain.JobCostRecord, error) {
	args := m.Called(ctx, jobCostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobCostRecord), args.Error(1)
}

func (m *MockJobCostRepository) ListJobCostsByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.JobCostRecord, *string, error) {
	args := m.Called(ctx, projectID, limit, nextToken)
	var records []domain.JobCostRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]domain.JobCostRecord)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return records, token, args.Error(2)
}

func (m *MockJobCostRepository) ListJobCostsByBudget(ctx context.Context, budgetID string) ([]domain.JobCostRecord, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobCostRecord), args.Error(1)
}

func (m *MockJobCostRepository) ListPendingApproval(ctx context.Context, projectID string) ([]domain.JobCostRecord, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobCostRecord), args.Error(1)
}

func (m *MockJobCostRepository) ListOverBudget(ctx context.Context, projectID string) ([]domain.JobCostRecord, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobCostRecord), args.Error(1)
}

func (m *MockJobCostRepository) SaveJobCost(ctx context.Context, record *domain.JobCostRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockJobCostRepository) UpdateJobCost(ctx context.Context, record *domain.JobCostRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockJobCostRepository) SaveJobCostWithBudget(ctx context.Context, record *domain.JobCostRecord, budget *domain.ProjectBudget) error {
	args := m.Called(ctx, record, budget)
	return args.Error(0)
}

// --- Mock BillingRepository ---

type MockBillingRepository struct {
	mock.Mock
}

var _ portsrepo.BillingRepositoryFacade = (*MockBillingRepository)(nil)

func (m *MockBillingRepository) FindBillingByID(ctx context.Context, billingID string) (*domain.ProgressBilling, error) {
	args := m.Called(ctx, billingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProgressBilling), args.Error(1)
}

func (m *MockBillingRepository) ListBillingsByProject(ctx context.Context, projectID string) ([]domain.ProgressBilling, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressBilling), args.Error(1)
}

func (m *MockBillingRepository) ListBillingsByStatus(ctx context.Context, status domain.BillingStatus) ([]domain.ProgressBilling, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressBilling), args.Error(1)
}

func (m *MockBillingRepository) SaveBilling(ctx context.Context, billing *domain.ProgressBilling) error {
	args := m.Called(ctx, billing)
	return args.Error(0)
}

func (m *MockBillingRepository) UpdateBilling(ctx context.Context, billing *domain.ProgressBilling) error {
	args := m.Called(ctx, billing)
	return args.Error(0)
}

// --- Mock CashFlowRepository ---

type MockCashFlowRepository struct {
	mock.Mock
}

var _ portsrepo.CashFlowRepositoryFacade = (*MockCashFlowRepository)(nil)

func (m *MockCashFlowRepository) FindProjectionByID(ctx context.Context, projectionID string) (*domain.CashFlowProjection, error) {
	args := m.Called(ctx, projectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlowProjection), args.Error(1)
}

func (m *MockCashFlowRepository) ListProjectionsByProject(ctx context.Context, projectID string) ([]domain.CashFlowProjection, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashFlowProjection), args.Error(1)
}

func (m *MockCashFlowRepository) FindProjectionByScenario(ctx context.Context, projectID string, scenario domain.CashFlowScenario) (*domain.CashFlowProjection, error) {
	args := m.Called(ctx, projectID, scenario)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlowProjection), args.Error(1)
}

func (m *MockCashFlowRepository) SaveProjection(ctx context.Context, projection *domain.CashFlowProjection) error {
	args := m.Called(ctx, projection)
	return args.Error(0)
}

func (m *MockCashFlowRepository) UpdateProjection(ctx context.Context, projection *domain.CashFlowProjection) error {
	args := m.Called(ctx, projection)
	return args.Error(0)
}

// --- Mock WIPRepository ---

type MockWIPRepository struct {
	mock.Mock
}

var _ portsrepo.WIPRepositoryFacade = (*MockWIPRepository)(nil)

func (m *MockWIPRepository) FindLatestReportByProject(ctx context.Context, projectID string) (*domain.WIPReport, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WIPReport), args.Error(1)
}

func (m *MockWIPRepository) ListReportsByProject(ctx context.Context, projectID string) ([]domain.WIPReport, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WIPReport), args.Error(1)
}

func (m *MockWIPRepository) ListReportsByDate(ctx context.Context, reportDate time.Time) ([]domain.WIPReport, error) {
	args := m.Called(ctx, reportDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WIPReport), args.Error(1)
}

func (m *MockWIPRepository) SaveReport(ctx context.Context, report *domain.WIPReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
