package pgsql

import (
	"context"
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

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for project budget data.
func newPgxBudgetRepository(pool *pgxpool.Pool) *PgxBudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxBudgetRepository implements portsrepo.BudgetRepositoryFacade
var _ portsrepo.BudgetRepositoryFacade = (*PgxBudgetRepository)(nil)

// Helper to convert domain.ProjectBudget to models.ProjectBudget for DB storage
func toModelBudget(d *domain.ProjectBudget) models.ProjectBudget {
	m := models.ProjectBudget{
		BudgetID:     d.BudgetID,
		ProjectID:    d.ProjectID,
		Name:         d.Name,
		Version:      d.Version,
		Status:       string(d.Status),
		CurrencyCode: d.CurrencyCode,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.BaselineTotal != nil {
		amount := d.BaselineTotal.Amount()
		m.BaselineTotal = &amount
	}
	return m
}

// Helper to convert a models.BudgetLine row into a domain.BudgetLine
func toDomainBudgetLine(m models.BudgetLine, currency string) (domain.BudgetLine, error) {
	planned, err := domain.NewMoney(m.PlannedAmount, currency)
	if err != nil {
		return domain.BudgetLine{}, fmt.Errorf("invalid stored planned amount on line %s: %w", m.LineID, err)
	}
	committed, err := domain.NewMoney(m.CommittedAmount, currency)
	if err != nil {
		return domain.BudgetLine{}, fmt.Errorf("invalid stored committed amount on line %s: %w", m.LineID, err)
	}
	actual, err := domain.NewMoney(m.ActualAmount, currency)
	if err != nil {
		return domain.BudgetLine{}, fmt.Errorf("invalid stored actual amount on line %s: %w", m.LineID, err)
	}
	return domain.BudgetLine{
		LineID:          m.LineID,
		CostCode:        domain.CostCode{Value: m.CostCode, Description: m.CostCodeDescription},
		Category:        domain.BudgetCategory(m.Category),
		Description:     m.Description,
		PlannedAmount:   planned,
		CommittedAmount: committed,
		ActualAmount:    actual,
	}, nil
}

// Helper to rehydrate a domain.ProjectBudget from its row and line rows
func toDomainBudget(m models.ProjectBudget, lineRows []models.BudgetLine) (*domain.ProjectBudget, error) {
	lines := make([]domain.BudgetLine, 0, len(lineRows))
	for _, row := range lineRows {
		line, err := toDomainBudgetLine(row, m.CurrencyCode)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	budget := domain.ProjectBudget{
		BudgetID:     m.BudgetID,
		ProjectID:    m.ProjectID,
		Name:         m.Name,
		Version:      m.Version,
		Status:       domain.BudgetStatus(m.Status),
		CurrencyCode: m.CurrencyCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.BaselineTotal != nil {
		baseline, err := domain.NewMoney(*m.BaselineTotal, m.CurrencyCode)
		if err != nil {
			return nil, fmt.Errorf("invalid stored baseline total on budget %s: %w", m.BudgetID, err)
		}
		budget.BaselineTotal = &baseline
	}
	return domain.RehydrateProjectBudget(budget, lines), nil
}

// insertBudgetLines batch-inserts the line rows for a budget.
func insertBudgetLines(ctx context.Context, q querier, budgetID string, lines []domain.BudgetLine) error {
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO budget_lines (line_id, budget_id, cost_code, cost_code_description, category, description, planned_amount, committed_amount, actual_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.LineID,
			budgetID,
			line.CostCode.Value,
			line.CostCode.Description,
			string(line.Category),
			line.Description,
			line.PlannedAmount.Amount(),
			line.CommittedAmount.Amount(),
			line.ActualAmount.Amount(),
		)
	}
	br := q.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate budget line for budget %s", apperrors.ErrDuplicate, budgetID)
		}
		return fmt.Errorf("failed to insert budget lines for budget %s: %w", budgetID, err)
	}
	return nil
}

// SaveBudget inserts a new budget and its lines in one transaction.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, budget *domain.ProjectBudget) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelBudget(budget)
	budgetQuery := `
		INSERT INTO project_budgets (budget_id, project_id, name, version, status, currency_code, baseline_total, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, budgetQuery,
		m.BudgetID,
		m.ProjectID,
		m.Name,
		m.Version,
		m.Status,
		m.CurrencyCode,
		m.BaselineTotal,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: budget with ID %s already exists", apperrors.ErrDuplicate, m.BudgetID)
		}
		return fmt.Errorf("failed to save budget %s: %w", m.BudgetID, err)
	}

	if err := insertBudgetLines(ctx, tx, budget.BudgetID, budget.Lines()); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateBudget persists a mutated budget inside one transaction. The budget
// row update is guarded by the version the caller loaded: a concurrent writer
// that already bumped it makes the guarded update match zero rows, which
// surfaces as ErrVersionConflict. Lines are replaced wholesale.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, budget *domain.ProjectBudget) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updateBudgetInTx(ctx, tx, budget); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// updateBudgetInTx runs the version-guarded budget update on an open
// transaction. Shared with the job cost repository so applying a cost can
// adjust the budget atomically with the record. On success the in-memory
// version is bumped to match the stored row.
func updateBudgetInTx(ctx context.Context, tx pgx.Tx, budget *domain.ProjectBudget) error {
	m := toModelBudget(budget)
	budgetQuery := `
		UPDATE project_budgets
		SET name = $1, version = version + 1, status = $2, baseline_total = $3, last_updated_at = $4, last_updated_by = $5
		WHERE budget_id = $6 AND version = $7;
	`
	tag, err := tx.Exec(ctx, budgetQuery,
		m.Name,
		m.Status,
		m.BaselineTotal,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.BudgetID,
		m.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", m.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		var storedVersion int
		err := tx.QueryRow(ctx, `SELECT version FROM project_budgets WHERE budget_id = $1;`, m.BudgetID).Scan(&storedVersion)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, m.BudgetID)
		}
		if err != nil {
			return fmt.Errorf("failed to check budget %s version: %w", m.BudgetID, err)
		}
		return fmt.Errorf("%w: budget %s was saved at version %d but version %d is stored",
			apperrors.ErrVersionConflict, m.BudgetID, m.Version, storedVersion)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM budget_lines WHERE budget_id = $1;`, m.BudgetID); err != nil {
		return fmt.Errorf("failed to clear budget lines for budget %s: %w", m.BudgetID, err)
	}
	if err := insertBudgetLines(ctx, tx, budget.BudgetID, budget.Lines()); err != nil {
		return err
	}

	budget.Version++
	return nil
}

const budgetSelectColumns = `budget_id, project_id, name, version, status, currency_code, baseline_total, created_at, created_by, last_updated_at, last_updated_by`

// scanBudgetRow scans one project_budgets row.
func scanBudgetRow(row pgx.Row) (models.ProjectBudget, error) {
	var m models.ProjectBudget
	err := row.Scan(
		&m.BudgetID,
		&m.ProjectID,
		&m.Name,
		&m.Version,
		&m.Status,
		&m.CurrencyCode,
		&m.BaselineTotal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// findBudgetLines loads all line rows for the given budgets, grouped by budget id.
func (r *PgxBudgetRepository) findBudgetLines(ctx context.Context, budgetIDs []string) (map[string][]models.BudgetLine, error) {
	if len(budgetIDs) == 0 {
		return map[string][]models.BudgetLine{}, nil
	}
	query := `
		SELECT line_id, budget_id, cost_code, cost_code_description, category, description, planned_amount, committed_amount, actual_amount
		FROM budget_lines
		WHERE budget_id = ANY($1)
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, budgetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget lines: %w", err)
	}
	defer rows.Close()

	byBudget := make(map[string][]models.BudgetLine, len(budgetIDs))
	for rows.Next() {
		var l models.BudgetLine
		err := rows.Scan(
			&l.LineID,
			&l.BudgetID,
			&l.CostCode,
			&l.CostCodeDescription,
			&l.Category,
			&l.Description,
			&l.PlannedAmount,
			&l.CommittedAmount,
			&l.ActualAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget line row: %w", err)
		}
		byBudget[l.BudgetID] = append(byBudget[l.BudgetID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget line rows: %w", err)
	}
	return byBudget, nil
}

// FindBudgetByID retrieves a budget and its lines by id.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.ProjectBudget, error) {
	query := `SELECT ` + budgetSelectColumns + ` FROM project_budgets WHERE budget_id = $1;`
	m, err := scanBudgetRow(r.Pool.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: budget %s", apperrors.ErrNotFound, budgetID)
		}
		return nil, fmt.Errorf("failed to find budget %s: %w", budgetID, err)
	}

	lines, err := r.findBudgetLines(ctx, []string{budgetID})
	if err != nil {
		return nil, err
	}
	return toDomainBudget(m, lines[budgetID])
}

// ListBudgetsByProject retrieves a page of budgets for a project ordered by
// creation time, newest first, using token-based keyset pagination.
func (r *PgxBudgetRepository) ListBudgetsByProject(ctx context.Context, projectID string, limit int, nextToken *string) ([]domain.ProjectBudget, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to detect whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + budgetSelectColumns + ` FROM project_budgets WHERE project_id = $1`
	orderByClause := `ORDER BY created_at DESC, budget_id DESC`

	args := []any{projectID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND (created_at, budget_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query budgets for project %s: %w", projectID, err)
	}
	defer rows.Close()

	rowModels := make([]models.ProjectBudget, 0, fetchLimit)
	for rows.Next() {
		m, err := scanBudgetRow(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan budget row for project %s: %w", projectID, err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating budget rows for project %s: %w", projectID, err)
	}

	var outToken *string
	if len(rowModels) > limit {
		rowModels = rowModels[:limit]
		last := rowModels[len(rowModels)-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.BudgetID)
		outToken = &token
	}

	budgets, err := r.assembleBudgets(ctx, rowModels)
	if err != nil {
		return nil, nil, err
	}
	return budgets, outToken, nil
}

// ListBudgetsByStatus retrieves all budgets in the given status.
func (r *PgxBudgetRepository) ListBudgetsByStatus(ctx context.Context, status domain.BudgetStatus) ([]domain.ProjectBudget, error) {
	query := `SELECT ` + budgetSelectColumns + ` FROM project_budgets WHERE status = $1 ORDER BY created_at DESC, budget_id DESC;`
	rows, err := r.Pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets with status %s: %w", status, err)
	}
	defer rows.Close()

	rowModels := []models.ProjectBudget{}
	for rows.Next() {
		m, err := scanBudgetRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row with status %s: %w", status, err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows with status %s: %w", status, err)
	}

	return r.assembleBudgets(ctx, rowModels)
}

// assembleBudgets attaches line rows to budget rows and maps them to domain.
func (r *PgxBudgetRepository) assembleBudgets(ctx context.Context, rowModels []models.ProjectBudget) ([]domain.ProjectBudget, error) {
	budgetIDs := make([]string, 0, len(rowModels))
	for _, m := range rowModels {
		budgetIDs = append(budgetIDs, m.BudgetID)
	}
	linesByBudget, err := r.findBudgetLines(ctx, budgetIDs)
	if err != nil {
		return nil, err
	}

	budgets := make([]domain.ProjectBudget, 0, len(rowModels))
	for _, m := range rowModels {
		budget, err := toDomainBudget(m, linesByBudget[m.BudgetID])
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *budget)
	}
	return budgets, nil
}
