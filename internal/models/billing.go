package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProgressBilling is the row shape of the progress_billings table. The
// continuation sheet, lien waivers and document references are document-style
// collections that are always read and replaced wholesale with their
// application, so they live in jsonb columns instead of child tables.
type ProgressBilling struct {
	BillingID            string           `db:"billing_id"`
	ProjectID            string           `db:"project_id"`
	ContractID           string           `db:"contract_id"`
	ApplicationNumber    int              `db:"application_number"`
	PeriodTo             time.Time        `db:"period_to"`
	Status               string           `db:"status"`
	CurrencyCode         string           `db:"currency_code"`
	OriginalContractSum  decimal.Decimal  `db:"original_contract_sum"`
	ChangeOrdersTotal    decimal.Decimal  `db:"change_orders_total"`
	PreviousPayments     decimal.Decimal  `db:"previous_payments"`
	RetainagePercent     decimal.Decimal  `db:"retainage_percent"`
	RetainageAmount      decimal.Decimal  `db:"retainage_amount"`
	RetainageReleased    *decimal.Decimal `db:"retainage_released"`     // Nullable
	RetainageReleaseType string           `db:"retainage_release_type"` // Empty until released
	SubmittedBy          string           `db:"submitted_by"`
	SubmittedAt          *time.Time       `db:"submitted_at"`
	ApprovedBy           string           `db:"approved_by"`
	ApprovedAt           *time.Time       `db:"approved_at"`
	RejectedBy           string           `db:"rejected_by"`
	RejectedAt           *time.Time       `db:"rejected_at"`
	RejectionReason      string           `db:"rejection_reason"`
	PaidAt               *time.Time       `db:"paid_at"`
	PaymentReference     string           `db:"payment_reference"`
	LineItems            []byte           `db:"line_items"`   // jsonb
	LienWaivers          []byte           `db:"lien_waivers"` // jsonb
	Documents            []byte           `db:"documents"`    // jsonb
	AuditFields
}
