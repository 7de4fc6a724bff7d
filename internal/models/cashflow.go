package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowProjection is the row shape of the cash_flow_projections table.
// Company-wide projections store an empty project_id.
type CashFlowProjection struct {
	ProjectionID   string          `db:"projection_id"`
	ProjectID      string          `db:"project_id"`
	Scenario       string          `db:"scenario"`
	CurrencyCode   string          `db:"currency_code"`
	StartDate      time.Time       `db:"start_date"`
	EndDate        time.Time       `db:"end_date"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	AuditFields
}

// CashFlowWeek is the row shape of the cash_flow_weeks table, 13 rows per
// projection keyed by (projection_id, week_number).
type CashFlowWeek struct {
	ProjectionID      string          `db:"projection_id"`
	WeekNumber        int             `db:"week_number"`
	WeekStart         time.Time       `db:"week_start"`
	ReceivableInflows decimal.Decimal `db:"receivable_inflows"`
	OtherInflows      decimal.Decimal `db:"other_inflows"`
	PayrollOutflows   decimal.Decimal `db:"payroll_outflows"`
	MaterialOutflows  decimal.Decimal `db:"material_outflows"`
	OverheadOutflows  decimal.Decimal `db:"overhead_outflows"`
	NetCashFlow       decimal.Decimal `db:"net_cash_flow"`
	EndingBalance     decimal.Decimal `db:"ending_balance"`
}
