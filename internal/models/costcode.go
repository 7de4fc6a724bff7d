package models

// CostCodeHierarchy is the row shape of the cost_code_hierarchy table.
// Nodes are soft-deleted via is_active, never removed.
type CostCodeHierarchy struct {
	Code        string `db:"code"` // Dotted numeric, e.g. "01.02.03"
	Name        string `db:"name"`
	Description string `db:"description"`
	Level       int    `db:"level"`
	ParentCode  string `db:"parent_code"` // Nullable for divisions
	SortOrder   int    `db:"sort_order"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}
