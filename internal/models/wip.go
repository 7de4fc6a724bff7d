package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WIPReport is the row shape of the wip_reports table. Snapshots are
// insert-only, keyed by (project_id, report_date).
type WIPReport struct {
	ProjectID               string          `db:"project_id"`
	ReportDate              time.Time       `db:"report_date"`
	CurrencyCode            string          `db:"currency_code"`
	PercentComplete         decimal.Decimal `db:"percent_complete"`
	ContractAmount          decimal.Decimal `db:"contract_amount"`
	EstimatedTotalCost      decimal.Decimal `db:"estimated_total_cost"`
	CostsToDate             decimal.Decimal `db:"costs_to_date"`
	EstimatedCostToComplete decimal.Decimal `db:"estimated_cost_to_complete"`
	EarnedRevenue           decimal.Decimal `db:"earned_revenue"`
	BilledToDate            decimal.Decimal `db:"billed_to_date"`
	CashReceived            decimal.Decimal `db:"cash_received"`
	RetainageHeld           decimal.Decimal `db:"retainage_held"`
	OverUnderBillings       decimal.Decimal `db:"over_under_billings"`
	GrossProfitToDate       decimal.Decimal `db:"gross_profit_to_date"`
	EstimatedGrossProfit    decimal.Decimal `db:"estimated_gross_profit"`
}
