package models

import (
	"github.com/shopspring/decimal"
)

// ProjectBudget is the row shape of the project_budgets table. Amount columns
// are plain decimals; the currency lives once on the budget row since every
// line shares it.
type ProjectBudget struct {
	BudgetID      string           `db:"budget_id"`
	ProjectID     string           `db:"project_id"`
	Name          string           `db:"name"`
	Version       int              `db:"version"`
	Status        string           `db:"status"`
	CurrencyCode  string           `db:"currency_code"`
	BaselineTotal *decimal.Decimal `db:"baseline_total"` // Nullable until baselined
	AuditFields
}

// BudgetLine is the row shape of the budget_lines table.
type BudgetLine struct {
	LineID              string          `db:"line_id"`
	BudgetID            string          `db:"budget_id"`
	CostCode            string          `db:"cost_code"`
	CostCodeDescription string          `db:"cost_code_description"`
	Category            string          `db:"category"`
	Description         string          `db:"description"`
	PlannedAmount       decimal.Decimal `db:"planned_amount"`
	CommittedAmount     decimal.Decimal `db:"committed_amount"`
	ActualAmount        decimal.Decimal `db:"actual_amount"`
}
