package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobCostRecord is the row shape of the job_cost_records table. The three
// amount columns share the row's currency_code.
type JobCostRecord struct {
	JobCostID           string          `db:"job_cost_id"`
	ProjectID           string          `db:"project_id"`
	BudgetID            string          `db:"budget_id"`
	CostCode            string          `db:"cost_code"`
	CostCodeDescription string          `db:"cost_code_description"`
	Category            string          `db:"category"`
	TransactionType     string          `db:"transaction_type"`
	Description         string          `db:"description"`
	TransactionDate     time.Time       `db:"transaction_date"`
	CurrencyCode        string          `db:"currency_code"`
	PlannedAmount       decimal.Decimal `db:"planned_amount"`
	CommittedAmount     decimal.Decimal `db:"committed_amount"`
	ActualAmount        decimal.Decimal `db:"actual_amount"`
	VendorID            string          `db:"vendor_id"`          // Nullable
	PurchaseOrderID     string          `db:"purchase_order_id"`  // Nullable
	Approved            bool            `db:"approved"`
	ApprovedBy          string          `db:"approved_by"`
	ApprovedAt          *time.Time      `db:"approved_at"`
	AuditFields
}
