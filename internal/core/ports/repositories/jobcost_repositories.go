package repositories

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// JobCostReader defines read operations for job cost data.
type JobCostReader interface {
	// FindJobCostByID retrieves a specific record by its unique identifier.
	FindJobCostByID(ctx context.Context, jobCostID string) (*domain.JobCostRecord, error)

	// ListJobCostsByProject retrieves a paginated list of records for a
	// project using token-based pagination.
	ListJobCostsByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.JobCostRecord, *string, error)

	// ListJobCostsByBudget retrieves all records charged against a budget.
	ListJobCostsByBudget(ctx context.Context, budgetID string) ([]domain.JobCostRecord, error)

	// ListPendingApproval retrieves all unapproved records for a project.
	ListPendingApproval(ctx context.Context, projectID string) ([]domain.JobCostRecord, error)

	// ListOverBudget retrieves all records whose actual exceeds planned.
	ListOverBudget(ctx context.Context, projectID string) ([]domain.JobCostRecord, error)
}

// JobCostWriter defines write operations for job cost data.
type JobCostWriter interface {
	// SaveJobCost inserts a new record.
	SaveJobCost(ctx context.Context, record *domain.JobCostRecord) error

	// UpdateJobCost persists changes to an existing record.
	UpdateJobCost(ctx context.Context, record *domain.JobCostRecord) error

	// SaveJobCostWithBudget persists a job cost record and its adjusted
	// budget inside one database transaction, so applying a cost to a budget
	// cannot leave the two aggregates inconsistent.
	SaveJobCostWithBudget(ctx context.Context, record *domain.JobCostRecord, budget *domain.ProjectBudget) error
}

// JobCostRepositoryFacade combines all job cost repository interfaces.
type JobCostRepositoryFacade interface {
	JobCostReader
	JobCostWriter
}

// JobCostRepositoryWithTx extends the facade with transaction capabilities.
type JobCostRepositoryWithTx interface {
	JobCostRepositoryFacade
	TransactionManager
}
