package repositories

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// BillingReader defines read operations for progress billing data.
type BillingReader interface {
	// FindBillingByID retrieves a specific payment application.
	FindBillingByID(ctx context.Context, billingID string) (*domain.ProgressBilling, error)

	// ListBillingsByProject retrieves all applications for a project,
	// ordered by application number.
	ListBillingsByProject(ctx context.Context, projectID string) ([]domain.ProgressBilling, error)

	// ListBillingsByStatus retrieves all applications in the given status.
	ListBillingsByStatus(ctx context.Context, status domain.BillingStatus) ([]domain.ProgressBilling, error)
}

// BillingWriter defines write operations for progress billing data.
type BillingWriter interface {
	// SaveBilling inserts a new payment application.
	SaveBilling(ctx context.Context, billing *domain.ProgressBilling) error

	// UpdateBilling persists a mutated payment application.
	UpdateBilling(ctx context.Context, billing *domain.ProgressBilling) error
}

// BillingRepositoryFacade combines all billing repository interfaces.
type BillingRepositoryFacade interface {
	BillingReader
	BillingWriter
}
