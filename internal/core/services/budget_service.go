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

// budgetService provides project budget lifecycle operations.
type budgetService struct {
	BaseService
	budgetRepo portsrepo.BudgetRepositoryFacade
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgetRepo portsrepo.BudgetRepositoryFacade) portssvc.BudgetSvcFacade {
	return &budgetService{budgetRepo: budgetRepo}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// CreateBudget creates a new project budget with its lines.
func (s *budgetService) CreateBudget(ctx context.Context, req dto.CreateBudgetRequest, creatorUserID string) (*domain.ProjectBudget, error) {
	status := domain.BudgetStatus(req.Status)
	if req.Status == "" {
		status = domain.BudgetDraft
	}

	lines := make([]domain.BudgetLine, 0, len(req.Lines))
	for _, in := range req.Lines {
		lineID := in.LineID
		if lineID == "" {
			lineID = uuid.NewString()
		}
		line, err := in.ToDomain(lineID)
		if err != nil {
			s.LogError(ctx, err, "Invalid budget line in create request", slog.String("project_id", req.ProjectID))
			return nil, err
		}
		lines = append(lines, line)
	}

	budget, err := domain.NewProjectBudget(uuid.NewString(), req.ProjectID, req.Name, req.Version, status, req.CurrencyCode, lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	budget.CreatedAt = now
	budget.CreatedBy = creatorUserID
	budget.LastUpdatedAt = now
	budget.LastUpdatedBy = creatorUserID

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget", slog.String("project_id", req.ProjectID))
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	s.LogInfo(ctx, "Budget created", slog.String("budget_id", budget.BudgetID), slog.String("project_id", budget.ProjectID))
	return budget, nil
}

// GetBudgetByID retrieves a budget by its identifier.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID string) (*domain.ProjectBudget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}
	return budget, nil
}

// ListBudgetsByProject retrieves a paginated list of budgets for a project.
func (s *budgetService) ListBudgetsByProject(ctx context.Context, projectID string, params dto.ListBudgetsParams) ([]domain.ProjectBudget, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	budgets, nextToken, err := s.budgetRepo.ListBudgetsByProject(ctx, projectID, limit, params.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list budgets for project %s: %w", projectID, err)
	}
	return budgets, nextToken, nil
}

// ListBudgetsByStatus retrieves budgets in the given lifecycle status.
func (s *budgetService) ListBudgetsByStatus(ctx context.Context, status domain.BudgetStatus) ([]domain.ProjectBudget, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown budget status %q", apperrors.ErrValidation, status)
	}
	budgets, err := s.budgetRepo.ListBudgetsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets by status %s: %w", status, err)
	}
	return budgets, nil
}

// mutateBudget loads a budget, applies the mutation and persists the result
// under the budget's optimistic-concurrency version.
func (s *budgetService) mutateBudget(ctx context.Context, budgetID, userID string, mutate func(*domain.ProjectBudget) error) (*domain.ProjectBudget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}

	if err := mutate(budget); err != nil {
		return nil, err
	}

	budget.LastUpdatedAt = time.Now()
	budget.LastUpdatedBy = userID

	if err := s.budgetRepo.UpdateBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to update budget", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to update budget %s: %w", budgetID, err)
	}
	return budget, nil
}

// AddBudgetLine appends a new line to a mutable budget.
func (s *budgetService) AddBudgetLine(ctx context.Context, budgetID string, in dto.BudgetLineInput, userID string) (*domain.ProjectBudget, error) {
	lineID := in.LineID
	if lineID == "" {
		lineID = uuid.NewString()
	}
	line, err := in.ToDomain(lineID)
	if err != nil {
		return nil, err
	}
	return s.mutateBudget(ctx, budgetID, userID, func(b *domain.ProjectBudget) error {
		return b.AddLine(line)
	})
}

// RemoveBudgetLine removes a line from a mutable budget.
func (s *budgetService) RemoveBudgetLine(ctx context.Context, budgetID string, lineID string, userID string) (*domain.ProjectBudget, error) {
	return s.mutateBudget(ctx, budgetID, userID, func(b *domain.ProjectBudget) error {
		return b.RemoveLine(lineID)
	})
}

// ReplaceBudgetLine swaps the content of an existing line.
func (s *budgetService) ReplaceBudgetLine(ctx context.Context, budgetID string, lineID string, in dto.BudgetLineInput, userID string) (*domain.ProjectBudget, error) {
	line, err := in.ToDomain(lineID)
	if err != nil {
		return nil, err
	}
	return s.mutateBudget(ctx, budgetID, userID, func(b *domain.ProjectBudget) error {
		return b.ReplaceLine(line)
	})
}

// UpdateBudgetStatus transitions a budget between lifecycle states.
func (s *budgetService) UpdateBudgetStatus(ctx context.Context, budgetID string, req dto.UpdateBudgetStatusRequest, userID string) (*domain.ProjectBudget, error) {
	budget, err := s.mutateBudget(ctx, budgetID, userID, func(b *domain.ProjectBudget) error {
		return b.UpdateStatus(domain.BudgetStatus(req.Status))
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Budget status updated", slog.String("budget_id", budgetID), slog.String("status", req.Status))
	return budget, nil
}

// ApproveBaseline freezes the budget at its approved total.
func (s *budgetService) ApproveBaseline(ctx context.Context, budgetID string, req dto.ApproveBaselineRequest, userID string) (*domain.ProjectBudget, error) {
	total, err := req.Total.ToDomain()
	if err != nil {
		return nil, err
	}
	budget, err := s.mutateBudget(ctx, budgetID, userID, func(b *domain.ProjectBudget) error {
		return b.ApproveBaseline(total)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Budget baseline approved",
		slog.String("budget_id", budgetID),
		slog.String("baseline_total", total.String()))
	return budget, nil
}
