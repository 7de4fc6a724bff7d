package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	"github.com/BuildrFin/construction_finance_app/internal/models"
)

type PgxWIPRepository struct {
	pool *pgxpool.Pool
}

// newPgxWIPRepository creates a new repository for WIP report snapshots.
func newPgxWIPRepository(pool *pgxpool.Pool) *PgxWIPRepository {
	return &PgxWIPRepository{pool: pool}
}

// Ensure PgxWIPRepository implements portsrepo.WIPRepositoryFacade
var _ portsrepo.WIPRepositoryFacade = (*PgxWIPRepository)(nil)

// Helper to convert domain.WIPReport to models.WIPReport for DB storage
func toModelWIPReport(d *domain.WIPReport) models.WIPReport {
	return models.WIPReport{
		ProjectID:               d.ProjectID,
		ReportDate:              d.ReportDate,
		CurrencyCode:            d.Currency(),
		PercentComplete:         d.PercentComplete,
		ContractAmount:          d.ContractAmount.Amount(),
		EstimatedTotalCost:      d.EstimatedTotalCost.Amount(),
		CostsToDate:             d.CostsToDate.Amount(),
		EstimatedCostToComplete: d.EstimatedCostToComplete.Amount(),
		EarnedRevenue:           d.EarnedRevenue.Amount(),
		BilledToDate:            d.BilledToDate.Amount(),
		CashReceived:            d.CashReceived.Amount(),
		RetainageHeld:           d.RetainageHeld.Amount(),
		OverUnderBillings:       d.OverUnderBillings.Amount(),
		GrossProfitToDate:       d.GrossProfitToDate.Amount(),
		EstimatedGrossProfit:    d.EstimatedGrossProfit.Amount(),
	}
}

// Helper to convert models.WIPReport from DB to domain.WIPReport
func toDomainWIPReport(m models.WIPReport) (*domain.WIPReport, error) {
	currency := m.CurrencyCode
	report := domain.WIPReport{
		ProjectID:       m.ProjectID,
		ReportDate:      m.ReportDate,
		PercentComplete: m.PercentComplete,
	}
	fields := []struct {
		dst    *domain.Money
		amount decimal.Decimal
		name   string
	}{
		{&report.ContractAmount, m.ContractAmount, "contract amount"},
		{&report.EstimatedTotalCost, m.EstimatedTotalCost, "estimated total cost"},
		{&report.CostsToDate, m.CostsToDate, "costs to date"},
		{&report.EstimatedCostToComplete, m.EstimatedCostToComplete, "estimated cost to complete"},
		{&report.EarnedRevenue, m.EarnedRevenue, "earned revenue"},
		{&report.BilledToDate, m.BilledToDate, "billed to date"},
		{&report.CashReceived, m.CashReceived, "cash received"},
		{&report.RetainageHeld, m.RetainageHeld, "retainage held"},
		{&report.OverUnderBillings, m.OverUnderBillings, "over/under billings"},
		{&report.GrossProfitToDate, m.GrossProfitToDate, "gross profit to date"},
		{&report.EstimatedGrossProfit, m.EstimatedGrossProfit, "estimated gross profit"},
	}
	for _, f := range fields {
		money, err := domain.NewMoney(f.amount, currency)
		if err != nil {
			return nil, fmt.Errorf("invalid stored %s on report for project %s: %w", f.name, m.ProjectID, err)
		}
		*f.dst = money
	}
	return &report, nil
}

// SaveReport inserts a computed snapshot.
func (r *PgxWIPRepository) SaveReport(ctx context.Context, report *domain.WIPReport) error {
	m := toModelWIPReport(report)
	query := `
		INSERT INTO wip_reports (project_id, report_date, currency_code, percent_complete, contract_amount, estimated_total_cost, costs_to_date, estimated_cost_to_complete, earned_revenue, billed_to_date, cash_received, retainage_held, over_under_billings, gross_profit_to_date, estimated_gross_profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ProjectID,
		m.ReportDate,
		m.CurrencyCode,
		m.PercentComplete,
		m.ContractAmount,
		m.EstimatedTotalCost,
		m.CostsToDate,
		m.EstimatedCostToComplete,
		m.EarnedRevenue,
		m.BilledToDate,
		m.CashReceived,
		m.RetainageHeld,
		m.OverUnderBillings,
		m.GrossProfitToDate,
		m.EstimatedGrossProfit,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: report for project %s on %s already exists",
				apperrors.ErrDuplicate, m.ProjectID, m.ReportDate.Format("2006-01-02"))
		}
		return fmt.Errorf("failed to save report for project %s: %w", m.ProjectID, err)
	}
	return nil
}

const wipSelectColumns = `project_id, report_date, currency_code, percent_complete, contract_amount, estimated_total_cost, costs_to_date, estimated_cost_to_complete, earned_revenue, billed_to_date, cash_received, retainage_held, over_under_billings, gross_profit_to_date, estimated_gross_profit`

// scanWIPRow scans one wip_reports row.
func scanWIPRow(row pgx.Row) (models.WIPReport, error) {
	var m models.WIPReport
	err := row.Scan(
		&m.ProjectID,
		&m.ReportDate,
		&m.CurrencyCode,
		&m.PercentComplete,
		&m.ContractAmount,
		&m.EstimatedTotalCost,
		&m.CostsToDate,
		&m.EstimatedCostToComplete,
		&m.EarnedRevenue,
		&m.BilledToDate,
		&m.CashReceived,
		&m.RetainageHeld,
		&m.OverUnderBillings,
		&m.GrossProfitToDate,
		&m.EstimatedGrossProfit,
	)
	return m, err
}

// FindLatestReportByProject retrieves the most recent snapshot for a project,
// nil when none exists.
func (r *PgxWIPRepository) FindLatestReportByProject(ctx context.Context, projectID string) (*domain.WIPReport, error) {
	query := `SELECT ` + wipSelectColumns + ` FROM wip_reports WHERE project_id = $1 ORDER BY report_date DESC LIMIT 1;`
	m, err := scanWIPRow(r.pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest report for project %s: %w", projectID, err)
	}
	return toDomainWIPReport(m)
}

// ListReportsByProject retrieves all snapshots for a project, newest first.
func (r *PgxWIPRepository) ListReportsByProject(ctx context.Context, projectID string) ([]domain.WIPReport, error) {
	query := `SELECT ` + wipSelectColumns + ` FROM wip_reports WHERE project_id = $1 ORDER BY report_date DESC;`
	return r.collectReports(ctx, query, projectID)
}

// ListReportsByDate retrieves the snapshots of all projects taken on the
// given report date.
func (r *PgxWIPRepository) ListReportsByDate(ctx context.Context, reportDate time.Time) ([]domain.WIPReport, error) {
	query := `SELECT ` + wipSelectColumns + ` FROM wip_reports WHERE report_date = $1 ORDER BY project_id;`
	return r.collectReports(ctx, query, reportDate)
}

// collectReports runs a single-argument list query and maps the rows.
func (r *PgxWIPRepository) collectReports(ctx context.Context, query string, arg any) ([]domain.WIPReport, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.WIPReport{}
	for rows.Next() {
		m, err := scanWIPRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		report, err := toDomainWIPReport(m)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return reports, nil
}
