package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	"github.com/BuildrFin/construction_finance_app/internal/models"
)

type PgxCashFlowRepository struct {
	BaseRepository
}

// newPgxCashFlowRepository creates a new repository for cash flow projection data.
func newPgxCashFlowRepository(pool *pgxpool.Pool) *PgxCashFlowRepository {
	return &PgxCashFlowRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxCashFlowRepository implements portsrepo.CashFlowRepositoryFacade
var _ portsrepo.CashFlowRepositoryFacade = (*PgxCashFlowRepository)(nil)

// Helper to convert domain.CashFlowProjection to models.CashFlowProjection for DB storage
func toModelProjection(d *domain.CashFlowProjection) models.CashFlowProjection {
	return models.CashFlowProjection{
		ProjectionID:   d.ProjectionID,
		ProjectID:      d.ProjectID,
		Scenario:       string(d.Scenario),
		CurrencyCode:   d.CurrencyCode,
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		OpeningBalance: d.OpeningBalance.Amount(),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// Helper to convert a models.CashFlowWeek row into a domain.CashFlowWeek
func toDomainWeek(m models.CashFlowWeek, currency string) (domain.CashFlowWeek, error) {
	receivable, err := domain.NewMoney(m.ReceivableInflows, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored receivable inflows on week %d: %w", m.WeekNumber, err)
	}
	other, err := domain.NewMoney(m.OtherInflows, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored other inflows on week %d: %w", m.WeekNumber, err)
	}
	payroll, err := domain.NewMoney(m.PayrollOutflows, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored payroll outflows on week %d: %w", m.WeekNumber, err)
	}
	material, err := domain.NewMoney(m.MaterialOutflows, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored material outflows on week %d: %w", m.WeekNumber, err)
	}
	overhead, err := domain.NewMoney(m.OverheadOutflows, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored overhead outflows on week %d: %w", m.WeekNumber, err)
	}
	net, err := domain.NewMoney(m.NetCashFlow, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored net cash flow on week %d: %w", m.WeekNumber, err)
	}
	ending, err := domain.NewMoney(m.EndingBalance, currency)
	if err != nil {
		return domain.CashFlowWeek{}, fmt.Errorf("invalid stored ending balance on week %d: %w", m.WeekNumber, err)
	}

	return domain.CashFlowWeek{
		WeekNumber:        m.WeekNumber,
		WeekStart:         m.WeekStart,
		ReceivableInflows: receivable,
		OtherInflows:      other,
		PayrollOutflows:   payroll,
		MaterialOutflows:  material,
		OverheadOutflows:  overhead,
		NetCashFlow:       net,
		EndingBalance:     ending,
	}, nil
}

// insertProjectionWeeks batch-inserts the 13 week rows for a projection.
func insertProjectionWeeks(ctx context.Context, q querier, projectionID string, weeks []domain.CashFlowWeek) error {
	batch := &pgx.Batch{}
	weekQuery := `
		INSERT INTO cash_flow_weeks (projection_id, week_number, week_start, receivable_inflows, other_inflows, payroll_outflows, material_outflows, overhead_outflows, net_cash_flow, ending_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, week := range weeks {
		batch.Queue(weekQuery,
			projectionID,
			week.WeekNumber,
			week.WeekStart,
			week.ReceivableInflows.Amount(),
			week.OtherInflows.Amount(),
			week.PayrollOutflows.Amount(),
			week.MaterialOutflows.Amount(),
			week.OverheadOutflows.Amount(),
			week.NetCashFlow.Amount(),
			week.EndingBalance.Amount(),
		)
	}
	br := q.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert projection weeks for projection %s: %w", projectionID, err)
	}
	return nil
}

// SaveProjection inserts a new projection and its 13 weeks in one transaction.
func (r *PgxCashFlowRepository) SaveProjection(ctx context.Context, projection *domain.CashFlowProjection) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelProjection(projection)
	query := `
		INSERT INTO cash_flow_projections (projection_id, project_id, scenario, currency_code, start_date, end_date, opening_balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		m.ProjectionID,
		m.ProjectID,
		m.Scenario,
		m.CurrencyCode,
		m.StartDate,
		m.EndDate,
		m.OpeningBalance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: projection %s or scenario %s already exists for project %q",
				apperrors.ErrDuplicate, m.ProjectionID, m.Scenario, m.ProjectID)
		}
		return fmt.Errorf("failed to save projection %s: %w", m.ProjectionID, err)
	}

	if err := insertProjectionWeeks(ctx, tx, projection.ProjectionID, projection.Weeks()); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateProjection persists a mutated projection. The week rows are replaced
// wholesale since week edits rechain every later ending balance anyway.
func (r *PgxCashFlowRepository) UpdateProjection(ctx context.Context, projection *domain.CashFlowProjection) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := toModelProjection(projection)
	query := `
		UPDATE cash_flow_projections
		SET start_date = $1, end_date = $2, opening_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE projection_id = $6;
	`
	tag, err := tx.Exec(ctx, query,
		m.StartDate,
		m.EndDate,
		m.OpeningBalance,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.ProjectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update projection %s: %w", m.ProjectionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: projection %s", apperrors.ErrNotFound, m.ProjectionID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cash_flow_weeks WHERE projection_id = $1;`, m.ProjectionID); err != nil {
		return fmt.Errorf("failed to clear projection weeks for projection %s: %w", m.ProjectionID, err)
	}
	if err := insertProjectionWeeks(ctx, tx, projection.ProjectionID, projection.Weeks()); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

const projectionSelectColumns = `projection_id, project_id, scenario, currency_code, start_date, end_date, opening_balance, created_at, created_by, last_updated_at, last_updated_by`

// scanProjectionRow scans one cash_flow_projections row.
func scanProjectionRow(row pgx.Row) (models.CashFlowProjection, error) {
	var m models.CashFlowProjection
	err := row.Scan(
		&m.ProjectionID,
		&m.ProjectID,
		&m.Scenario,
		&m.CurrencyCode,
		&m.StartDate,
		&m.EndDate,
		&m.OpeningBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// findProjectionWeeks loads the week rows for one projection, in week order.
func (r *PgxCashFlowRepository) findProjectionWeeks(ctx context.Context, projectionID, currency string) ([]domain.CashFlowWeek, error) {
	query := `
		SELECT projection_id, week_number, week_start, receivable_inflows, other_inflows, payroll_outflows, material_outflows, overhead_outflows, net_cash_flow, ending_balance
		FROM cash_flow_weeks
		WHERE projection_id = $1
		ORDER BY week_number;
	`
	rows, err := r.Pool.Query(ctx, query, projectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weeks for projection %s: %w", projectionID, err)
	}
	defer rows.Close()

	weeks := make([]domain.CashFlowWeek, 0, domain.ProjectionWeeks)
	for rows.Next() {
		var m models.CashFlowWeek
		err := rows.Scan(
			&m.ProjectionID,
			&m.WeekNumber,
			&m.WeekStart,
			&m.ReceivableInflows,
			&m.OtherInflows,
			&m.PayrollOutflows,
			&m.MaterialOutflows,
			&m.OverheadOutflows,
			&m.NetCashFlow,
			&m.EndingBalance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan week row for projection %s: %w", projectionID, err)
		}
		week, err := toDomainWeek(m, currency)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, week)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating week rows for projection %s: %w", projectionID, err)
	}
	return weeks, nil
}

// assembleProjection attaches weeks to a projection row and maps it to domain.
func (r *PgxCashFlowRepository) assembleProjection(ctx context.Context, m models.CashFlowProjection) (*domain.CashFlowProjection, error) {
	weeks, err := r.findProjectionWeeks(ctx, m.ProjectionID, m.CurrencyCode)
	if err != nil {
		return nil, err
	}
	opening, err := domain.NewMoney(m.OpeningBalance, m.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid stored opening balance on projection %s: %w", m.ProjectionID, err)
	}
	projection := domain.CashFlowProjection{
		ProjectionID:   m.ProjectionID,
		ProjectID:      m.ProjectID,
		Scenario:       domain.CashFlowScenario(m.Scenario),
		CurrencyCode:   m.CurrencyCode,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		OpeningBalance: opening,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	return domain.RehydrateCashFlowProjection(projection, weeks), nil
}

// FindProjectionByID retrieves a projection and its weeks by id.
func (r *PgxCashFlowRepository) FindProjectionByID(ctx context.Context, projectionID string) (*domain.CashFlowProjection, error) {
	query := `SELECT ` + projectionSelectColumns + ` FROM cash_flow_projections WHERE projection_id = $1;`
	m, err := scanProjectionRow(r.Pool.QueryRow(ctx, query, projectionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: projection %s", apperrors.ErrNotFound, projectionID)
		}
		return nil, fmt.Errorf("failed to find projection %s: %w", projectionID, err)
	}
	return r.assembleProjection(ctx, m)
}

// ListProjectionsByProject retrieves all projections for a project.
func (r *PgxCashFlowRepository) ListProjectionsByProject(ctx context.Context, projectID string) ([]domain.CashFlowProjection, error) {
	query := `SELECT ` + projectionSelectColumns + ` FROM cash_flow_projections WHERE project_id = $1 ORDER BY scenario, created_at DESC;`
	rows, err := r.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projections for project %s: %w", projectID, err)
	}
	defer rows.Close()

	rowModels := []models.CashFlowProjection{}
	for rows.Next() {
		m, err := scanProjectionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan projection row for project %s: %w", projectID, err)
		}
		rowModels = append(rowModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projection rows for project %s: %w", projectID, err)
	}

	projections := make([]domain.CashFlowProjection, 0, len(rowModels))
	for _, m := range rowModels {
		projection, err := r.assembleProjection(ctx, m)
		if err != nil {
			return nil, err
		}
		projections = append(projections, *projection)
	}
	return projections, nil
}

// FindProjectionByScenario retrieves the newest projection for a project and
// scenario, nil when none exists. An empty projectID selects the company-wide
// projection.
func (r *PgxCashFlowRepository) FindProjectionByScenario(ctx context.Context, projectID string, scenario domain.CashFlowScenario) (*domain.CashFlowProjection, error) {
	query := `SELECT ` + projectionSelectColumns + ` FROM cash_flow_projections WHERE project_id = $1 AND scenario = $2 ORDER BY created_at DESC LIMIT 1;`
	m, err := scanProjectionRow(r.Pool.QueryRow(ctx, query, projectID, string(scenario)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find %s projection for project %q: %w", scenario, projectID, err)
	}
	return r.assembleProjection(ctx, m)
}
