package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

var (
	costCodePattern      = regexp.MustCompile(`^[A-Z]{2,5}-[0-9]{2,4}$`)
	hierarchyCodePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
)

// HierarchyLevel positions a node within the four-level cost classification tree.
type HierarchyLevel int

const (
	LevelDivision    HierarchyLevel = 1
	LevelSubdivision HierarchyLevel = 2
	LevelCostType    HierarchyLevel = 3
	LevelDetail      HierarchyLevel = 4
)

// CostCode is a validated code identifier such as "CONC-0300", paired with an
// optional free-text description. Immutable once created.
type CostCode struct {
	Value       string `json:"value"`
	Description string `json:"description"` // Nullable
}

// NewCostCode validates and case-normalizes a cost code.
func NewCostCode(value, description string) (CostCode, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if !costCodePattern.MatchString(v) {
		return CostCode{}, fmt.Errorf("%w: cost code %q does not match AA-#### format", apperrors.ErrValidation, value)
	}
	return CostCode{Value: v, Description: strings.TrimSpace(description)}, nil
}

// CostCodeHierarchy is a node in the Division/Subdivision/Cost-Type/Detail
// classification tree. Nodes are soft-deleted via IsActive, never removed.
type CostCodeHierarchy struct {
	Code        string         `json:"code"` // Dotted numeric, e.g. "01.02.03"
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Level       HierarchyLevel `json:"level"`
	ParentCode  string         `json:"parentCode"` // Required for level > 1
	SortOrder   int            `json:"sortOrder"`
	IsActive    bool           `json:"isActive"`
	AuditFields
}

// NewCostCodeHierarchy validates the dotted code format, that the segment
// count equals the declared level, and that non-division nodes name a parent.
func NewCostCodeHierarchy(code, name string, level HierarchyLevel, parentCode, description string, sortOrder int) (*CostCodeHierarchy, error) {
	code = strings.TrimSpace(code)
	if !hierarchyCodePattern.MatchString(code) {
		return nil, fmt.Errorf("%w: hierarchy code %q must be dotted numeric segments", apperrors.ErrValidation, code)
	}
	if level < LevelDivision || level > LevelDetail {
		return nil, fmt.Errorf("%w: level must be between 1 and 4, got %d", apperrors.ErrValidation, level)
	}
	if segments := len(strings.Split(code, ".")); segments != int(level) {
		return nil, fmt.Errorf("%w: code %q has %d segments but level is %d", apperrors.ErrValidation, code, segments, level)
	}
	if level > LevelDivision && strings.TrimSpace(parentCode) == "" {
		return nil, fmt.Errorf("%w: parent code is required for levels below division", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", apperrors.ErrValidation)
	}
	return &CostCodeHierarchy{
		Code:        code,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Level:       level,
		ParentCode:  strings.TrimSpace(parentCode),
		SortOrder:   sortOrder,
		IsActive:    true,
	}, nil
}

// Activate re-enables a soft-deleted node.
func (h *CostCodeHierarchy) Activate() { h.IsActive = true }

// Deactivate soft-deletes the node.
func (h *CostCodeHierarchy) Deactivate() { h.IsActive = false }

// UpdateDescription replaces the free-text description.
func (h *CostCodeHierarchy) UpdateDescription(description string) {
	h.Description = strings.TrimSpace(description)
}

// UpdateSortOrder replaces the ordering hint used by presentation.
func (h *CostCodeHierarchy) UpdateSortOrder(sortOrder int) { h.SortOrder = sortOrder }

// IsDivision reports whether the node is a top-level division.
func (h *CostCodeHierarchy) IsDivision() bool { return h.Level == LevelDivision }

// IsSubdivision reports whether the node is a second-level subdivision.
func (h *CostCodeHierarchy) IsSubdivision() bool { return h.Level == LevelSubdivision }

// IsCostType reports whether the node is a third-level cost type.
func (h *CostCodeHierarchy) IsCostType() bool { return h.Level == LevelCostType }

// IsDetail reports whether the node is a leaf detail code.
func (h *CostCodeHierarchy) IsDetail() bool { return h.Level == LevelDetail }
