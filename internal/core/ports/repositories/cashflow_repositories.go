package repositories

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// CashFlowReader defines read operations for cash flow projection data.
type CashFlowReader interface {
	// FindProjectionByID retrieves a specific projection.
	FindProjectionByID(ctx context.Context, projectionID string) (*domain.CashFlowProjection, error)

	// ListProjectionsByProject retrieves all projections for a project.
	ListProjectionsByProject(ctx context.Context, projectID string) ([]domain.CashFlowProjection, error)

	// FindProjectionByScenario retrieves the projection for a project and
	// scenario, nil when none exists. An empty projectID selects the
	// company-wide projection.
	FindProjectionByScenario(ctx context.Context, projectID string, scenario domain.CashFlowScenario) (*domain.CashFlowProjection, error)
}

// CashFlowWriter defines write operations for cash flow projection data.
type CashFlowWriter interface {
	// SaveProjection inserts a new projection with its 13 weeks.
	SaveProjection(ctx context.Context, projection *domain.CashFlowProjection) error

	// UpdateProjection persists a mutated projection.
	UpdateProjection(ctx context.Context, projection *domain.CashFlowProjection) error
}

// CashFlowRepositoryFacade combines all cash flow repository interfaces.
type CashFlowRepositoryFacade interface {
	CashFlowReader
	CashFlowWriter
}
