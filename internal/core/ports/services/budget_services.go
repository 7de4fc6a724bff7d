package services

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// BudgetReaderSvc defines read operations for project budget data
type BudgetReaderSvc interface {
	// GetBudgetByID retrieves a specific budget by its unique identifier.
	GetBudgetByID(ctx context.Context, budgetID string) (*domain.ProjectBudget, error)

	// ListBudgetsByProject retrieves a paginated list of budgets for a project.
	ListBudgetsByProject(ctx context.Context, projectID string, params dto.ListBudgetsParams) ([]domain.ProjectBudget, *string, error)

	// ListBudgetsByStatus retrieves budgets in a given lifecycle status.
	ListBudgetsByStatus(ctx context.Context, status domain.BudgetStatus) ([]domain.ProjectBudget, error)
}

// BudgetWriterSvc defines write operations for project budget data
type BudgetWriterSvc interface {
	// CreateBudget persists a new budget in draft status.
	CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.ProjectBudget, error)

	// AddBudgetLine appends a line to a mutable budget.
	AddBudgetLine(ctx context.Context, budgetID string, line dto.BudgetLineInput, userID string) (*domain.ProjectBudget, error)

	// RemoveBudgetLine removes a line from a mutable budget.
	RemoveBudgetLine(ctx context.Context, budgetID string, lineID string, userID string) (*domain.ProjectBudget, error)

	// ReplaceBudgetLine swaps the content of an existing line on a mutable budget.
	ReplaceBudgetLine(ctx context.Context, budgetID string, lineID string, line dto.BudgetLineInput, userID string) (*domain.ProjectBudget, error)

	// UpdateBudgetStatus transitions the budget between lifecycle states.
	UpdateBudgetStatus(ctx context.Context, budgetID string, req dto.UpdateBudgetStatusRequest, userID string) (*domain.ProjectBudget, error)

	// ApproveBaseline freezes the budget at its approved total.
	ApproveBaseline(ctx context.Context, budgetID string, req dto.ApproveBaselineRequest, userID string) (*domain.ProjectBudget, error)
}

// BudgetSvcFacade combines all budget-related service interfaces
type BudgetSvcFacade interface {
	BudgetReaderSvc
	BudgetWriterSvc
}
