package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	"github.com/BuildrFin/construction_finance_app/internal/models"
	"github.com/BuildrFin/construction_finance_app/internal/utils/pagination"
)

type PgxJobCostRepository struct {
	BaseRepository
}

// newPgxJobCostRepository creates a new repository for job cost data.
func newPgxJobCostRepository(pool *pgxpool.Pool) *PgxJobCostRepository {
	return &PgxJobCostRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJobCostRepository implements portsrepo.JobCostRepositoryWithTx
var _ portsrepo.JobCostRepositoryWithTx = (*PgxJobCostRepository)(nil)

// Helper to convert domain.JobCostRecord to models.JobCostRecord for DB storage
func toModelJobCost(d *domain.JobCostRecord) models.JobCostRecord {
	return models.JobCostRecord{
		JobCostID:           d.JobCostID,
		ProjectID:           d.ProjectID,
		BudgetID:            d.BudgetID,
		CostCode:            d.CostCode.Value,
		CostCodeDescription: d.CostCode.Description,
		Category:            string(d.Category),
		TransactionType:     string(d.TransactionType),
		Description:         d.Description,
		TransactionDate:     d.TransactionDate,
		CurrencyCode:        d.PlannedAmount.Currency(),
		PlannedAmount:       d.PlannedAmount.Amount(),
		CommittedAmount:     d.CommittedAmount.Amount(),
		ActualAmount:        d.ActualAmount.Amount(),
		VendorID:            d.VendorID,
		PurchaseOrderID:     d.PurchaseOrderID,
		Approved:            d.Approved,
		ApprovedBy:          d.ApprovedBy,
		ApprovedAt:          d.ApprovedAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// Helper to convert models.JobCostRecord from DB to domain.JobCostRecord
func toDomainJobCost(m models.JobCostRecord) (*domain.JobCostRecord, error) {
	planned, err := domain.NewMoney(m.PlannedAmount, m.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid stored planned amount on record %s: %w", m.JobCostID, err)
	}
	committed, err := domain.NewMoney(m.CommittedAmount, m.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid stored committed amount on record %s: %w", m.JobCostID, err)
	}
	actual, err := domain.NewMoney(m.ActualAmount, m.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid stored actual amount on record %s: %w", m.JobCostID, err)
	}
	return &domain.JobCostRecord{
		JobCostID:       m.JobCostID,
		ProjectID:       m.ProjectID,
		BudgetID:        m.BudgetID,
		CostCode:        domain.CostCode{Value: m.CostCode, Description: m.CostCodeDescription},
		Category:        domain.BudgetCategory(m.Category),
		TransactionType: domain.CostTransactionType(m.TransactionType),
		Description:     m.Description,
		TransactionDate: m.TransactionDate,
		PlannedAmount:   planned,
		CommittedAmount: committed,
		ActualAmount:    actual,
		VendorID:        m.VendorID,
		PurchaseOrderID: m.PurchaseOrderID,
		Approved:        m.Approved,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}

// SaveJobCost inserts a new record.
func (r *PgxJobCostRepository) SaveJobCost(ctx context.Context, record *domain.JobCostRecord) error {
	m := toModelJobCost(record)
	query := `
		INSERT INTO job_cost_records (job_cost_id, project_id, budget_id, cost_code, cost_code_description, category, transaction_type, description, transaction_date, currency_code, planned_amount, committed_amount, actual_amount, vendor_id, purchase_order_id, approved, approved_by, approved_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.Pool.Exec(ctx, query, jobCostArgs(m)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: job cost record %s already exists", apperrors.ErrDuplicate, m.JobCostID)
		}
		return fmt.Errorf("failed to save job cost record %s: %w", m.JobCostID, err)
	}
	return nil
}

// jobCostArgs lists the insert placeholders in column order.
func jobCostArgs(m models.JobCostRecord) []any {
	var vendorID, poID sql.NullString
	if m.VendorID != "" {
		vendorID = sql.NullString{String: m.VendorID, Valid: true}
	}
	if m.PurchaseOrderID != "" {
		poID = sql.NullString{String: m.PurchaseOrderID, Valid: true}
	}
	return []any{
		m.JobCostID,
		m.ProjectID,
		m.BudgetID,
		m.CostCode,
		m.CostCodeDescription,
		m.Category,
		m.TransactionType,
		m.Description,
		m.TransactionDate,
		m.CurrencyCode,
		m.PlannedAmount,
		m.CommittedAmount,
		m.ActualAmount,
		vendorID,
		poID,
		m.Approved,
		m.ApprovedBy,
		m.ApprovedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// UpdateJobCost persists changes to an existing record.
func (r *PgxJobCostRepository) UpdateJobCost(ctx context.Context, record *domain.JobCostRecord) error {
	return updateJobCostOn(ctx, r.Pool, record)
}

// updateJobCostOn runs the record update on a pool or an open transaction.
func updateJobCostOn(ctx context.Context, q querier, record *domain.JobCostRecord) error {
	m := toModelJobCost(record)
	query := `
		UPDATE job_cost_records
		SET description = $1, committed_amount = $2, actual_amount = $3, approved = $4, approved_by = $5, approved_at = $6, last_updated_at = $7, last_updated_by = $8
		WHERE job_cost_id = $9;
	`
	tag, err := q.Exec(ctx, query,
		m.Description,
		m.CommittedAmount,
		m.ActualAmount,
		m.Approved,
		m.ApprovedBy,
		m.ApprovedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.JobCostID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job cost record %s: %w", m.JobCostID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job cost record %s", apperrors.ErrNotFound, m.JobCostID)
	}
	return nil
}

// SaveJobCostWithBudget persists a mutated record and its adjusted budget in
// one transaction, so a cost applied to a budget cannot land on only one side.
// The budget update keeps its optimistic version guard.
func (r *PgxJobCostRepository) SaveJobCostWithBudget(ctx context.Context, record *domain.JobCostRecord, budget *domain.ProjectBudget) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updateJobCostOn(ctx, tx, record); err != nil {
		return err
	}
	if err := updateBudgetInTx(ctx, tx, budget); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

const jobCostSelectColumns = `job_cost_id, project_id, budget_id, cost_code, cost_code_description, category, transaction_type, description, transaction_date, currency_code, planned_amount, committed_amount, actual_amount, vendor_id, purchase_order_id, approved, approved_by, approved_at, created_at, created_by, last_updated_at, last_updated_by`

// scanJobCostRow scans one job_cost_records row.
func scanJobCostRow(row pgx.Row) (models.JobCostRecord, error) {
	var m models.JobCostRecord
	var vendorID, poID sql.NullString
	err := row.Scan(
		&m.JobCostID,
		&m.ProjectID,
		&m.BudgetID,
		&m.CostCode,
		&m.CostCodeDescription,
		&m.Category,
		&m.TransactionType,
		&m.Description,
		&m.TransactionDate,
		&m.CurrencyCode,
		&m.PlannedAmount,
		&m.CommittedAmount,
		&m.ActualAmount,
		&vendorID,
		&poID,
		&m.Approved,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if vendorID.Valid {
		m.VendorID = vendorID.String
	}
	if poID.Valid {
		m.PurchaseOrderID = poID.String
	}
	return m, err
}

// FindJobCostByID retrieves a record by its id.
func (r *PgxJobCostRepository) FindJobCostByID(ctx context.Context, jobCostID string) (*domain.JobCostRecord, error) {
	query := `SELECT ` + jobCostSelectColumns + ` FROM job_cost_records WHERE job_cost_id = $1;`
	m, err := scanJobCostRow(r.Pool.QueryRow(ctx, query, jobCostID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: job cost record %s", apperrors.ErrNotFound, jobCostID)
		}
		return nil, fmt.Errorf("failed to find job cost record %s: %w", jobCostID, err)
	}
	return toDomainJobCost(m)
}

// ListJobCostsByProject retrieves a page of records for a project ordered by
// creation time, newest first, using token-based keyset pagination.
func (r *PgxJobCostRepository) ListJobCostsByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.JobCostRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + jobCostSelectColumns + ` FROM job_cost_records WHERE project_id = $1`
	orderByClause := `ORDER BY created_at DESC, job_cost_id DESC`

	args := []any{projectID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND (created_at, job_cost_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query job cost records for project %s: %w", projectID, err)
	}
	defer rows.Close()

	rowModels := make([]models.JobCostRecord, 0, fetchLimit)
	for rows.Next() {
		m, err := scanJobCostRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan job cost row for project %s: %w", projectID, err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating job cost rows for project %s: %w", projectID, err)
	}

	var outToken *string
	if len(rowModels) > limit {
		rowModels = rowModels[:limit]
		last := rowModels[len(rowModels)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.JobCostID)
		outToken = &token
	}

	records, err := toDomainJobCostSlice(rowModels)
	if err != nil {
		return nil, nil, err
	}
	return records, outToken, nil
}

// ListJobCostsByBudget retrieves all records charged against a budget.
func (r *PgxJobCostRepository) ListJobCostsByBudget(ctx context.Context, budgetID string) ([]domain.JobCostRecord, error) {
	query := `SELECT ` + jobCostSelectColumns + ` FROM job_cost_records WHERE budget_id = $1 ORDER BY transaction_date, job_cost_id;`
	return r.collectJobCosts(ctx, query, budgetID)
}

// ListPendingApproval retrieves all unapproved records for a project.
func (r *PgxJobCostRepository) ListPendingApproval(ctx context.Context, projectID string) ([]domain.JobCostRecord, error) {
	query := `SELECT ` + jobCostSelectColumns + ` FROM job_cost_records WHERE project_id = $1 AND NOT approved ORDER BY transaction_date, job_cost_id;`
	return r.collectJobCosts(ctx, query, projectID)
}

// ListOverBudget retrieves all records whose actual exceeds planned.
func (r *PgxJobCostRepository) ListOverBudget(ctx context.Context, projectID string) ([]domain.JobCostRecord, error) {
	query := `SELECT ` + jobCostSelectColumns + ` FROM job_cost_records WHERE project_id = $1 AND actual_amount > planned_amount ORDER BY transaction_date, job_cost_id;`
	return r.collectJobCosts(ctx, query, projectID)
}

// collectJobCosts runs a single-argument list query and maps the rows.
func (r *PgxJobCostRepository) collectJobCosts(ctx context.Context, query string, arg any) ([]domain.JobCostRecord, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query job cost records: %w", err)
	}
	defer rows.Close()

	rowModels := []models.JobCostRecord{}
	for rows.Next() {
		m, err := scanJobCostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job cost row: %w", err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job cost rows: %w", err)
	}
	return toDomainJobCostSlice(rowModels)
}

// toDomainJobCostSlice maps row models to domain records.
func toDomainJobCostSlice(rowModels []models.JobCostRecord) ([]domain.JobCostRecord, error) {
	records := make([]domain.JobCostRecord, 0, len(rowModels))
	for _, m := range rowModels {
		record, err := toDomainJobCost(m)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}
