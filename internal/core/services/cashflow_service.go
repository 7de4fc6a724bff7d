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

// cashFlowService manages 13-week cash flow projections.
type cashFlowService struct {
	BaseService
	cashFlowRepo portsrepo.CashFlowRepositoryFacade
}

// NewCashFlowService creates a new CashFlowService.
func NewCashFlowService(cashFlowRepo portsrepo.CashFlowRepositoryFacade) portssvc.CashFlowSvcFacade {
	return &cashFlowService{cashFlowRepo: cashFlowRepo}
}

var _ portssvc.CashFlowSvcFacade = (*cashFlowService)(nil)

// CreateProjection creates a new projection with all 13 weeks. Net and
// ending balances are recomputed from the weekly buckets so stored balances
// always chain from the opening balance.
func (s *cashFlowService) CreateProjection(ctx context.Context, req dto.CreateProjectionRequest, creatorUserID string) (*domain.CashFlowProjection, error) {
	weeks := make([]domain.CashFlowWeek, 0, len(req.Weeks))
	for _, in := range req.Weeks {
		week, err := in.ToDomain()
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, week)
	}

	opening, err := req.OpeningBalance.ToDomain()
	if err != nil {
		return nil, err
	}

	projection, err := domain.NewCashFlowProjection(uuid.NewString(), req.ProjectID,
		domain.CashFlowScenario(req.Scenario), req.CurrencyCode, req.StartDate, req.EndDate, opening, weeks)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeBalances(projection); err != nil {
		return nil, err
	}

	now := time.Now()
	projection.CreatedAt = now
	projection.CreatedBy = creatorUserID
	projection.LastUpdatedAt = now
	projection.LastUpdatedBy = creatorUserID

	if err := s.cashFlowRepo.SaveProjection(ctx, projection); err != nil {
		s.LogError(ctx, err, "Failed to save projection", slog.String("project_id", req.ProjectID))
		return nil, fmt.Errorf("failed to save projection: %w", err)
	}

	s.LogInfo(ctx, "Cash flow projection created",
		slog.String("projection_id", projection.ProjectionID),
		slog.String("scenario", string(projection.Scenario)),
		slog.Bool("company_wide", projection.IsCompanyWide()))
	return projection, nil
}

// GetProjectionByID retrieves a projection by its identifier.
func (s *cashFlowService) GetProjectionByID(ctx context.Context, projectionID string) (*domain.CashFlowProjection, error) {
	projection, err := s.cashFlowRepo.FindProjectionByID(ctx, projectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find projection %s: %w", projectionID, err)
	}
	return projection, nil
}

// ListProjectionsByProject retrieves projections for a project. An empty
// projectID lists the company-wide projections.
func (s *cashFlowService) ListProjectionsByProject(ctx context.Context, projectID string) ([]domain.CashFlowProjection, error) {
	projections, err := s.cashFlowRepo.ListProjectionsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projections for project %q: %w", projectID, err)
	}
	return projections, nil
}

// GetProjectionByScenario retrieves the latest projection for a scenario.
func (s *cashFlowService) GetProjectionByScenario(ctx context.Context, projectID string, scenario domain.CashFlowScenario) (*domain.CashFlowProjection, error) {
	if !scenario.IsValid() {
		return nil, fmt.Errorf("%w: unknown cash flow scenario %q", apperrors.ErrValidation, scenario)
	}
	projection, err := s.cashFlowRepo.FindProjectionByScenario(ctx, projectID, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s projection for project %q: %w", scenario, projectID, err)
	}
	if projection == nil {
		return nil, fmt.Errorf("%w: no %s projection for project %q", apperrors.ErrNotFound, scenario, projectID)
	}
	return projection, nil
}

// UpdateWeekData replaces one weekly bucket and rechains the net and ending
// balances of every week from the opening balance.
func (s *cashFlowService) UpdateWeekData(ctx context.Context, projectionID string, weekNumber int, in dto.CashFlowWeekInput, userID string) (*domain.CashFlowProjection, error) {
	projection, err := s.cashFlowRepo.FindProjectionByID(ctx, projectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find projection %s: %w", projectionID, err)
	}

	week, err := in.ToDomain()
	if err != nil {
		return nil, err
	}
	week.WeekNumber = weekNumber
	if err := projection.UpdateWeekData(weekNumber, week); err != nil {
		return nil, err
	}
	if err := s.recomputeBalances(projection); err != nil {
		return nil, err
	}

	projection.LastUpdatedAt = time.Now()
	projection.LastUpdatedBy = userID

	if err := s.cashFlowRepo.UpdateProjection(ctx, projection); err != nil {
		s.LogError(ctx, err, "Failed to update projection", slog.String("projection_id", projectionID))
		return nil, fmt.Errorf("failed to update projection %s: %w", projectionID, err)
	}

	s.LogInfo(ctx, "Projection week updated",
		slog.String("projection_id", projectionID),
		slog.Int("week_number", weekNumber),
		slog.String("final_balance", projection.FinalBalance().String()))
	return projection, nil
}

// recomputeBalances derives each week's net from its buckets and chains the
// ending balances starting at the opening balance.
func (s *cashFlowService) recomputeBalances(p *domain.CashFlowProjection) error {
	running := p.OpeningBalance
	for _, week := range p.Weeks() {
		net, err := week.TotalInflows().Sub(week.TotalOutflows())
		if err != nil {
			return err
		}
		running, err = running.Add(net)
		if err != nil {
			return err
		}
		week.NetCashFlow = net
		week.EndingBalance = running
		if err := p.UpdateWeekData(week.WeekNumber, week); err != nil {
			return err
		}
	}
	return nil
}
