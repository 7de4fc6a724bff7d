package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	"github.com/BuildrFin/construction_finance_app/internal/models"
)

type PgxCostCodeRepository struct {
	pool *pgxpool.Pool
}

// newPgxCostCodeRepository creates a new repository for cost code hierarchy data.
func newPgxCostCodeRepository(pool *pgxpool.Pool) *PgxCostCodeRepository {
	return &PgxCostCodeRepository{pool: pool}
}

// Ensure PgxCostCodeRepository implements portsrepo.CostCodeRepositoryFacade
var _ portsrepo.CostCodeRepositoryFacade = (*PgxCostCodeRepository)(nil)

// Helper to convert domain.CostCodeHierarchy to models.CostCodeHierarchy for DB storage
func toModelCostCodeHierarchy(d *domain.CostCodeHierarchy) models.CostCodeHierarchy {
	return models.CostCodeHierarchy{
		Code:        d.Code,
		Name:        d.Name,
		Description: d.Description,
		Level:       int(d.Level),
		ParentCode:  d.ParentCode,
		SortOrder:   d.SortOrder,
		IsActive:    d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// Helper to convert models.CostCodeHierarchy from DB to domain.CostCodeHierarchy
func toDomainCostCodeHierarchy(m models.CostCodeHierarchy) domain.CostCodeHierarchy {
	return domain.CostCodeHierarchy{
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Level:       domain.HierarchyLevel(m.Level),
		ParentCode:  m.ParentCode,
		SortOrder:   m.SortOrder,
		IsActive:    m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// SaveHierarchy inserts a new hierarchy node.
func (r *PgxCostCodeRepository) SaveHierarchy(ctx context.Context, node *domain.CostCodeHierarchy) error {
	m := toModelCostCodeHierarchy(node)
	query := `
		INSERT INTO cost_code_hierarchy (code, name, description, level, parent_code, sort_order, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	// Divisions carry no parent; store NULL instead of an empty string.
	var parentCode sql.NullString
	if m.ParentCode != "" {
		parentCode = sql.NullString{String: m.ParentCode, Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		m.Code,
		m.Name,
		m.Description,
		m.Level,
		parentCode,
		m.SortOrder,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: hierarchy node %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to save hierarchy node %s: %w", m.Code, err)
	}
	return nil
}

// UpdateHierarchy persists changes to an existing node.
func (r *PgxCostCodeRepository) UpdateHierarchy(ctx context.Context, node *domain.CostCodeHierarchy) error {
	m := toModelCostCodeHierarchy(node)
	query := `
		UPDATE cost_code_hierarchy
		SET name = $1, description = $2, sort_order = $3, is_active = $4, last_updated_at = $5, last_updated_by = $6
		WHERE code = $7;
	`
	tag, err := r.pool.Exec(ctx, query,
		m.Name,
		m.Description,
		m.SortOrder,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to update hierarchy node %s: %w", m.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: hierarchy node %s", apperrors.ErrNotFound, m.Code)
	}
	return nil
}

const costCodeSelectColumns = `code, name, description, level, parent_code, sort_order, is_active, created_at, created_by, last_updated_at, last_updated_by`

// scanCostCodeRow scans one cost_code_hierarchy row.
func scanCostCodeRow(row pgx.Row) (models.CostCodeHierarchy, error) {
	var m models.CostCodeHierarchy
	var parentCode sql.NullString
	err := row.Scan(
		&m.Code,
		&m.Name,
		&m.Description,
		&m.Level,
		&parentCode,
		&m.SortOrder,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if parentCode.Valid {
		m.ParentCode = parentCode.String
	}
	return m, err
}

// FindHierarchyByCode retrieves a hierarchy node by its dotted code.
func (r *PgxCostCodeRepository) FindHierarchyByCode(ctx context.Context, code string) (*domain.CostCodeHierarchy, error) {
	query := `SELECT ` + costCodeSelectColumns + ` FROM cost_code_hierarchy WHERE code = $1;`
	m, err := scanCostCodeRow(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: hierarchy node %s", apperrors.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to find hierarchy node %s: %w", code, err)
	}
	node := toDomainCostCodeHierarchy(m)
	return &node, nil
}

// ListHierarchyByLevel retrieves all nodes at a given level ordered by sort
// order then code. Inactive nodes are included only when requested.
func (r *PgxCostCodeRepository) ListHierarchyByLevel(ctx context.Context, level domain.HierarchyLevel, includeInactive bool) ([]domain.CostCodeHierarchy, error) {
	query := `SELECT ` + costCodeSelectColumns + ` FROM cost_code_hierarchy WHERE level = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY sort_order, code;`

	rows, err := r.pool.Query(ctx, query, int(level))
	if err != nil {
		return nil, fmt.Errorf("failed to query hierarchy nodes at level %d: %w", level, err)
	}
	defer rows.Close()

	return collectCostCodeRows(rows)
}

// ListHierarchyChildren retrieves the direct children of a node.
func (r *PgxCostCodeRepository) ListHierarchyChildren(ctx context.Context, parentCode string) ([]domain.CostCodeHierarchy, error) {
	query := `SELECT ` + costCodeSelectColumns + ` FROM cost_code_hierarchy WHERE parent_code = $1 ORDER BY sort_order, code;`
	rows, err := r.pool.Query(ctx, query, parentCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query children of hierarchy node %s: %w", parentCode, err)
	}
	defer rows.Close()

	return collectCostCodeRows(rows)
}

// collectCostCodeRows scans and maps a result set of hierarchy rows.
func collectCostCodeRows(rows pgx.Rows) ([]domain.CostCodeHierarchy, error) {
	nodes := []domain.CostCodeHierarchy{}
	for rows.Next() {
		m, err := scanCostCodeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hierarchy node row: %w", err)
		}
		nodes = append(nodes, toDomainCostCodeHierarchy(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hierarchy node rows: %w", err)
	}
	return nodes, nil
}
