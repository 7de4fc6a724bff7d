package repositories

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// BudgetReader defines read operations for project budget data.
type BudgetReader interface {
	// FindBudgetByID retrieves a specific budget by its unique identifier.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.ProjectBudget, error)

	// ListBudgetsByProject retrieves a paginated list of budgets for a project
	// using token-based pagination. It returns the budgets, a token for the
	// next page, and an error.
	ListBudgetsByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.ProjectBudget, *string, error)

	// ListBudgetsByStatus retrieves all budgets in the given status.
	ListBudgetsByStatus(ctx context.Context, status domain.BudgetStatus) ([]domain.ProjectBudget, error)
}

// BudgetWriter defines write operations for project budget data.
type BudgetWriter interface {
	// SaveBudget inserts a new budget with its lines.
	SaveBudget(ctx context.Context, budget *domain.ProjectBudget) error

	// UpdateBudget persists a mutated budget. The update is guarded by the
	// budget's version: a stale version yields apperrors.ErrVersionConflict
	// and the stored version is incremented on success.
	UpdateBudget(ctx context.Context, budget *domain.ProjectBudget) error
}

// BudgetRepositoryFacade combines all budget repository interfaces.
type BudgetRepositoryFacade interface {
	BudgetReader
	BudgetWriter
}
