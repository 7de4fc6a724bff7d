package services

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// CashFlowReaderSvc defines read operations for cash flow projections
type CashFlowReaderSvc interface {
	// GetProjectionByID retrieves a specific projection by its identifier.
	GetProjectionByID(ctx context.Context, projectionID string) (*domain.CashFlowProjection, error)

	// ListProjectionsByProject retrieves projections for a project; an empty
	// projectID lists company-wide projections.
	ListProjectionsByProject(ctx context.Context, projectID string) ([]domain.CashFlowProjection, error)

	// GetProjectionByScenario retrieves the latest projection for a scenario.
	GetProjectionByScenario(ctx context.Context, projectID string, scenario domain.CashFlowScenario) (*domain.CashFlowProjection, error)
}

// CashFlowWriterSvc defines write operations for cash flow projections
type CashFlowWriterSvc interface {
	// CreateProjection persists a new thirteen-week projection.
	CreateProjection(ctx context.Context, req dto.CreateProjectionRequest, creatorUserID string) (*domain.CashFlowProjection, error)

	// UpdateWeekData replaces one week of an existing projection and
	// recomputes the running balances.
	UpdateWeekData(ctx context.Context, projectionID string, weekNumber int, week dto.CashFlowWeekInput, userID string) (*domain.CashFlowProjection, error)
}

// CashFlowSvcFacade combines all cash-flow-related service interfaces
type CashFlowSvcFacade interface {
	CashFlowReaderSvc
	CashFlowWriterSvc
}
