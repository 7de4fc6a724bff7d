package dto

import (
	"time"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// CreateHierarchyNodeRequest defines the data needed to create a cost code
// hierarchy node.
type CreateHierarchyNodeRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required,min=2"`
	Level       int    `json:"level" binding:"required,min=1,max=4"`
	ParentCode  string `json:"parentCode"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

// UpdateHierarchyNodeRequest updates the mutable fields of a node. Pointers
// distinguish zero-value updates from fields not provided.
type UpdateHierarchyNodeRequest struct {
	Description *string `json:"description"`
	SortOrder   *int    `json:"sortOrder"`
}

// HierarchyNodeResponse defines the data returned for a hierarchy node.
type HierarchyNodeResponse struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Level         int       `json:"level"`
	ParentCode    string    `json:"parentCode,omitempty"`
	SortOrder     int       `json:"sortOrder"`
	IsActive      bool      `json:"isActive"`
	IsDivision    bool      `json:"isDivision"`
	IsSubdivision bool      `json:"isSubdivision"`
	IsCostType    bool      `json:"isCostType"`
	IsDetail      bool      `json:"isDetail"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToHierarchyNodeResponse converts a domain node to its response shape.
func ToHierarchyNodeResponse(n *domain.CostCodeHierarchy) HierarchyNodeResponse {
	return HierarchyNodeResponse{
		Code:          n.Code,
		Name:          n.Name,
		Description:   n.Description,
		Level:         int(n.Level),
		ParentCode:    n.ParentCode,
		SortOrder:     n.SortOrder,
		IsActive:      n.IsActive,
		IsDivision:    n.IsDivision(),
		IsSubdivision: n.IsSubdivision(),
		IsCostType:    n.IsCostType(),
		IsDetail:      n.IsDetail(),
		CreatedAt:     n.CreatedAt,
		LastUpdatedAt: n.LastUpdatedAt,
	}
}

// ToListHierarchyNodeResponse converts a slice of nodes.
func ToListHierarchyNodeResponse(nodes []domain.CostCodeHierarchy) []HierarchyNodeResponse {
	res := make([]HierarchyNodeResponse, len(nodes))
	for i := range nodes {
		res[i] = ToHierarchyNodeResponse(&nodes[i])
	}
	return res
}
