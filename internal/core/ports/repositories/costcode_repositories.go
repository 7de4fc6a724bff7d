package repositories

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// CostCodeReader defines read operations for cost code hierarchy data.
type CostCodeReader interface {
	// FindHierarchyByCode retrieves a hierarchy node by its dotted code.
	FindHierarchyByCode(ctx context.Context, code string) (*domain.CostCodeHierarchy, error)

	// ListHierarchyByLevel retrieves all nodes at a given level, ordered by
	// sort order then code. Inactive nodes are included when includeInactive
	// is set.
	ListHierarchyByLevel(ctx context.Context, level domain.HierarchyLevel, includeInactive bool) ([]domain.CostCodeHierarchy, error)

	// ListHierarchyChildren retrieves the direct children of a node.
	ListHierarchyChildren(ctx context.Context, parentCode string) ([]domain.CostCodeHierarchy, error)
}

// CostCodeWriter defines write operations for cost code hierarchy data.
type CostCodeWriter interface {
	// SaveHierarchy inserts a new hierarchy node.
	SaveHierarchy(ctx context.Context, node *domain.CostCodeHierarchy) error

	// UpdateHierarchy persists changes to an existing node.
	UpdateHierarchy(ctx context.Context, node *domain.CostCodeHierarchy) error
}

// CostCodeRepositoryFacade combines all cost code repository interfaces.
type CostCodeRepositoryFacade interface {
	CostCodeReader
	CostCodeWriter
}
