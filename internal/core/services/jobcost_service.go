package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// jobCostService records cost transactions and folds them into budgets.
type jobCostService struct {
	BaseService
	jobCostRepo portsrepo.JobCostRepositoryFacade
	budgetRepo  portsrepo.BudgetRepositoryFacade
}

// NewJobCostService creates a new JobCostService.
func NewJobCostService(jobCostRepo portsrepo.JobCostRepositoryFacade, budgetRepo portsrepo.BudgetRepositoryFacade) portssvc.JobCostSvcFacade {
	return &jobCostService{jobCostRepo: jobCostRepo, budgetRepo: budgetRepo}
}

var _ portssvc.JobCostSvcFacade = (*jobCostService)(nil)

// CreateJobCost records a new cost transaction after verifying the target
// budget exists, carries the same currency and has a line for the cost code.
func (s *jobCostService) CreateJobCost(ctx context.Context, req dto.CreateJobCostRequest, creatorUserID string) (*domain.JobCostRecord, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, req.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", req.BudgetID, err)
	}

	costCode, err := domain.NewCostCode(req.CostCode, "")
	if err != nil {
		return nil, err
	}
	planned, err := req.Planned.ToDomain()
	if err != nil {
		return nil, err
	}
	committed, err := req.Committed.ToDomain()
	if err != nil {
		return nil, err
	}
	actual, err := req.Actual.ToDomain()
	if err != nil {
		return nil, err
	}

	if planned.Currency() != budget.CurrencyCode {
		return nil, fmt.Errorf("%w: record currency %s does not match budget currency %s",
			apperrors.ErrCurrencyMismatch, planned.Currency(), budget.CurrencyCode)
	}

	record, err := domain.NewJobCostRecord(uuid.NewString(), req.ProjectID, req.BudgetID, costCode,
		domain.BudgetCategory(req.Category), domain.CostTransactionType(req.TransactionType),
		req.Description, req.TransactionDate, planned, committed, actual, req.VendorID, req.PurchaseOrderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record.CreatedAt = now
	record.CreatedBy = creatorUserID
	record.LastUpdatedAt = now
	record.LastUpdatedBy = creatorUserID

	if err := s.jobCostRepo.SaveJobCost(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to save job cost record", slog.String("project_id", req.ProjectID))
		return nil, fmt.Errorf("failed to save job cost record: %w", err)
	}

	s.LogInfo(ctx, "Job cost recorded",
		slog.String("job_cost_id", record.JobCostID),
		slog.String("cost_code", record.CostCode.Value),
		slog.String("transaction_type", string(record.TransactionType)))
	return record, nil
}

// GetJobCostByID retrieves a record by its identifier.
func (s *jobCostService) GetJobCostByID(ctx context.Context, jobCostID string) (*domain.JobCostRecord, error) {
	record, err := s.jobCostRepo.FindJobCostByID(ctx, jobCostID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job cost record %s: %w", jobCostID, err)
	}
	return record, nil
}

// ListJobCostsByProject retrieves a paginated list of records for a project.
func (s *jobCostService) ListJobCostsByProject(ctx context.Context, projectID string, params dto.ListJobCostsParams) ([]domain.JobCostRecord, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	records, nextToken, err := s.jobCostRepo.ListJobCostsByProject(ctx, projectID, limit, params.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list job costs for project %s: %w", projectID, err)
	}
	return records, nextToken, nil
}

// ListJobCostsByBudget retrieves all records charged against a budget.
func (s *jobCostService) ListJobCostsByBudget(ctx context.Context, budgetID string) ([]domain.JobCostRecord, error) {
	records, err := s.jobCostRepo.ListJobCostsByBudget(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job costs for budget %s: %w", budgetID, err)
	}
	return records, nil
}

// ListPendingApproval retrieves unapproved records for a project.
func (s *jobCostService) ListPendingApproval(ctx context.Context, projectID string) ([]domain.JobCostRecord, error) {
	records, err := s.jobCostRepo.ListPendingApproval(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending job costs for project %s: %w", projectID, err)
	}
	return records, nil
}

// ListOverBudget retrieves records whose actual cost exceeds plan.
func (s *jobCostService) ListOverBudget(ctx context.Context, projectID string) ([]domain.JobCostRecord, error) {
	records, err := s.jobCostRepo.ListOverBudget(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list over-budget job costs for project %s: %w", projectID, err)
	}
	return records, nil
}

// ApproveJobCost marks a record approved. Approval is one-way.
func (s *jobCostService) ApproveJobCost(ctx context.Context, jobCostID string, approverUserID string) (*domain.JobCostRecord, error) {
	record, err := s.jobCostRepo.FindJobCostByID(ctx, jobCostID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job cost record %s: %w", jobCostID, err)
	}

	now := time.Now()
	if err := record.Approve(approverUserID, now); err != nil {
		return nil, err
	}
	record.LastUpdatedAt = now
	record.LastUpdatedBy = approverUserID

	if err := s.jobCostRepo.UpdateJobCost(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to persist job cost approval", slog.String("job_cost_id", jobCostID))
		return nil, fmt.Errorf("failed to update job cost record %s: %w", jobCostID, err)
	}

	s.LogInfo(ctx, "Job cost approved", slog.String("job_cost_id", jobCostID), slog.String("approved_by", approverUserID))
	return record, nil
}

// UpdateActualAmount replaces the actual cost on a record.
func (s *jobCostService) UpdateActualAmount(ctx context.Context, jobCostID string, req dto.UpdateJobCostAmountRequest, userID string) (*domain.JobCostRecord, error) {
	return s.updateAmount(ctx, jobCostID, req, userID, (*domain.JobCostRecord).UpdateActualAmount)
}

// UpdateCommittedAmount replaces the committed cost on a record.
func (s *jobCostService) UpdateCommittedAmount(ctx context.Context, jobCostID string, req dto.UpdateJobCostAmountRequest, userID string) (*domain.JobCostRecord, error) {
	return s.updateAmount(ctx, jobCostID, req, userID, (*domain.JobCostRecord).UpdateCommittedAmount)
}

func (s *jobCostService) updateAmount(ctx context.Context, jobCostID string, req dto.UpdateJobCostAmountRequest, userID string, apply func(*domain.JobCostRecord, domain.Money) error) (*domain.JobCostRecord, error) {
	record, err := s.jobCostRepo.FindJobCostByID(ctx, jobCostID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job cost record %s: %w", jobCostID, err)
	}

	amount, err := req.Amount.ToDomain()
	if err != nil {
		return nil, err
	}
	if err := apply(record, amount); err != nil {
		return nil, err
	}

	record.LastUpdatedAt = time.Now()
	record.LastUpdatedBy = userID

	if err := s.jobCostRepo.UpdateJobCost(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to update job cost amount", slog.String("job_cost_id", jobCostID))
		return nil, fmt.Errorf("failed to update job cost record %s: %w", jobCostID, err)
	}
	return record, nil
}

// ApplyToBudget folds an approved record's committed and actual amounts into
// the matching budget line, persisting record and budget in one database
// transaction so the two aggregates stay consistent.
func (s *jobCostService) ApplyToBudget(ctx context.Context, jobCostID string, userID string) (*domain.ProjectBudget, error) {
	record, err := s.jobCostRepo.FindJobCostByID(ctx, jobCostID)
	if err != nil {
		return nil, fmt.Errorf("failed to find job cost record %s: %w", jobCostID, err)
	}
	if !record.Approved {
		return nil, fmt.Errorf("%w: job cost record %s must be approved before it is applied", apperrors.ErrInvalidTransition, jobCostID)
	}

	budget, err := s.budgetRepo.FindBudgetByID(ctx, record.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", record.BudgetID, err)
	}

	if err := budget.ApplyCost(record.CostCode, record.Category, record.CommittedAmount, record.ActualAmount); err != nil {
		return nil, err
	}

	now := time.Now()
	record.LastUpdatedAt = now
	record.LastUpdatedBy = userID
	budget.LastUpdatedAt = now
	budget.LastUpdatedBy = userID

	if err := s.jobCostRepo.SaveJobCostWithBudget(ctx, record, budget); err != nil {
		s.LogError(ctx, err, "Failed to apply job cost to budget",
			slog.String("job_cost_id", jobCostID), slog.String("budget_id", budget.BudgetID))
		return nil, fmt.Errorf("failed to apply job cost %s to budget %s: %w", jobCostID, budget.BudgetID, err)
	}

	s.LogInfo(ctx, "Job cost applied to budget",
		slog.String("job_cost_id", jobCostID),
		slog.String("budget_id", budget.BudgetID),
		slog.String("actual_total", budget.ActualTotal().String()))
	return budget, nil
}
