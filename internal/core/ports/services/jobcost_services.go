package services

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// JobCostReaderSvc defines read operations for job cost records
type JobCostReaderSvc interface {
	// GetJobCostByID retrieves a specific job cost record by its identifier.
	GetJobCostByID(ctx context.Context, jobCostID string) (*domain.JobCostRecord, error)

	// ListJobCostsByProject retrieves a paginated list of records for a project.
	ListJobCostsByProject(ctx context.Context, projectID string, params dto.ListJobCostsParams) ([]domain.JobCostRecord, *string, error)

	// ListJobCostsByBudget retrieves all records charged against a budget.
	ListJobCostsByBudget(ctx context.Context, budgetID string) ([]domain.JobCostRecord, error)

	// ListPendingApproval retrieves unapproved records for a project.
	ListPendingApproval(ctx context.Context, projectID string) ([]domain.JobCostRecord, error)

	// ListOverBudget retrieves records whose actual cost exceeds plan.
	ListOverBudget(ctx context.Context, projectID string) ([]domain.JobCostRecord, error)
}

// JobCostWriterSvc defines write operations for job cost records
type JobCostWriterSvc interface {
	// CreateJobCost persists a new job cost record.
	CreateJobCost(ctx context.Context, req dto.CreateJobCostRequest, creatorUserID string) (*domain.JobCostRecord, error)

	// ApproveJobCost marks a record approved; approval is one-way.
	ApproveJobCost(ctx context.Context, jobCostID string, approverUserID string) (*domain.JobCostRecord, error)

	// UpdateActualAmount replaces the actual cost on a record.
	UpdateActualAmount(ctx context.Context, jobCostID string, req dto.UpdateJobCostAmountRequest, userID string) (*domain.JobCostRecord, error)

	// UpdateCommittedAmount replaces the committed cost on a record.
	UpdateCommittedAmount(ctx context.Context, jobCostID string, req dto.UpdateJobCostAmountRequest, userID string) (*domain.JobCostRecord, error)

	// ApplyToBudget folds an approved record into its budget line totals,
	// persisting the record and the budget atomically.
	ApplyToBudget(ctx context.Context, jobCostID string, userID string) (*domain.ProjectBudget, error)
}

// JobCostSvcFacade combines all job-cost-related service interfaces
type JobCostSvcFacade interface {
	JobCostReaderSvc
	JobCostWriterSvc
}
