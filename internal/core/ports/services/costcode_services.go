package services

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// CostCodeReaderSvc defines read operations for the cost code hierarchy
type CostCodeReaderSvc interface {
	// GetHierarchyNode retrieves a single hierarchy node by its code.
	GetHierarchyNode(ctx context.Context, code string) (*domain.CostCodeHierarchy, error)

	// ListHierarchyByLevel retrieves all nodes at a given hierarchy level.
	ListHierarchyByLevel(ctx context.Context, level domain.HierarchyLevel, includeInactive bool) ([]domain.CostCodeHierarchy, error)

	// ListHierarchyChildren retrieves the direct children of a node.
	ListHierarchyChildren(ctx context.Context, parentCode string) ([]domain.CostCodeHierarchy, error)
}

// CostCodeWriterSvc defines write operations for the cost code hierarchy
type CostCodeWriterSvc interface {
	// CreateHierarchyNode persists a new node in the hierarchy.
	CreateHierarchyNode(ctx context.Context, req dto.CreateHierarchyNodeRequest, creatorUserID string) (*domain.CostCodeHierarchy, error)

	// UpdateHierarchyNode updates the mutable attributes of a node.
	UpdateHierarchyNode(ctx context.Context, code string, req dto.UpdateHierarchyNodeRequest, userID string) (*domain.CostCodeHierarchy, error)

	// ActivateHierarchyNode restores a deactivated node.
	ActivateHierarchyNode(ctx context.Context, code string, userID string) (*domain.CostCodeHierarchy, error)

	// DeactivateHierarchyNode marks a node as inactive.
	DeactivateHierarchyNode(ctx context.Context, code string, userID string) (*domain.CostCodeHierarchy, error)
}

// CostCodeSvcFacade combines all cost-code-related service interfaces
type CostCodeSvcFacade interface {
	CostCodeReaderSvc
	CostCodeWriterSvc
}
