package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

// CostTransactionType distinguishes what kind of cost a record captures.
type CostTransactionType string

const (
	CostActual    CostTransactionType = "ACTUAL"
	CostCommitted CostTransactionType = "COMMITTED"
	CostPlanned   CostTransactionType = "PLANNED"
)

// IsValid reports whether the transaction type is a known enum value.
func (t CostTransactionType) IsValid() bool {
	switch t {
	case CostActual, CostCommitted, CostPlanned:
		return true
	}
	return false
}

// JobCostRecord records one cost transaction against a project budget and
// cost code. The planned amount's currency is the record's currency anchor:
// committed and actual updates are validated against it.
type JobCostRecord struct {
	JobCostID       string              `json:"jobCostID"`
	ProjectID       string              `json:"projectID"`
	BudgetID        string              `json:"budgetID"`
	CostCode        CostCode            `json:"costCode"`
	Category        BudgetCategory      `json:"category"`
	TransactionType CostTransactionType `json:"transactionType"`
	Description     string              `json:"description"`
	TransactionDate time.Time           `json:"transactionDate"`
	PlannedAmount   Money               `json:"plannedAmount"`
	CommittedAmount Money               `json:"committedAmount"`
	ActualAmount    Money               `json:"actualAmount"`
	VendorID        string              `json:"vendorID"`        // Nullable resource reference
	PurchaseOrderID string              `json:"purchaseOrderID"` // Nullable purchase reference
	Approved        bool                `json:"approved"`
	ApprovedBy      string              `json:"approvedBy"`
	ApprovedAt      *time.Time          `json:"approvedAt,omitempty"`
	AuditFields
}

// NewJobCostRecord validates required references, the minimum description
// length and the single-currency rule across the three amounts.
func NewJobCostRecord(jobCostID, projectID, budgetID string, costCode CostCode, category BudgetCategory, txType CostTransactionType, description string, transactionDate time.Time, planned, committed, actual Money, vendorID, purchaseOrderID string) (*JobCostRecord, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project ID is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(budgetID) == "" {
		return nil, fmt.Errorf("%w: budget ID is required", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) < 3 {
		return nil, fmt.Errorf("%w: description must be at least 3 characters", apperrors.ErrValidation)
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown budget category %q", apperrors.ErrValidation, category)
	}
	if !txType.IsValid() {
		return nil, fmt.Errorf("%w: unknown cost transaction type %q", apperrors.ErrValidation, txType)
	}
	if transactionDate.IsZero() {
		return nil, fmt.Errorf("%w: transaction date is required", apperrors.ErrValidation)
	}
	if !sameCurrencyAll(planned.Currency(), committed, actual) {
		return nil, fmt.Errorf("%w: planned, committed and actual amounts must share one currency", apperrors.ErrCurrencyMismatch)
	}
	return &JobCostRecord{
		JobCostID:       jobCostID,
		ProjectID:       projectID,
		BudgetID:        budgetID,
		CostCode:        costCode,
		Category:        category,
		TransactionType: txType,
		Description:     strings.TrimSpace(description),
		TransactionDate: transactionDate,
		PlannedAmount:   planned,
		CommittedAmount: committed,
		ActualAmount:    actual,
		VendorID:        vendorID,
		PurchaseOrderID: purchaseOrderID,
	}, nil
}

// Approve marks the record approved. Approval is one-way: a second call
// fails and leaves ApprovedAt untouched.
func (r *JobCostRecord) Approve(approvedBy string, now time.Time) error {
	if r.Approved {
		return fmt.Errorf("%w: job cost record %s is already approved", apperrors.ErrInvalidTransition, r.JobCostID)
	}
	if strings.TrimSpace(approvedBy) == "" {
		return fmt.Errorf("%w: approver is required", apperrors.ErrValidation)
	}
	r.Approved = true
	r.ApprovedBy = approvedBy
	r.ApprovedAt = &now
	return nil
}

// UpdateActualAmount replaces the actual amount; its currency must match
// the planned amount's.
func (r *JobCostRecord) UpdateActualAmount(actual Money) error {
	if actual.Currency() != r.PlannedAmount.Currency() {
		return fmt.Errorf("%w: actual amount currency %s does not match record currency %s",
			apperrors.ErrCurrencyMismatch, actual.Currency(), r.PlannedAmount.Currency())
	}
	r.ActualAmount = actual
	return nil
}

// UpdateCommittedAmount replaces the committed amount; its currency must
// match the planned amount's.
func (r *JobCostRecord) UpdateCommittedAmount(committed Money) error {
	if committed.Currency() != r.PlannedAmount.Currency() {
		return fmt.Errorf("%w: committed amount currency %s does not match record currency %s",
			apperrors.ErrCurrencyMismatch, committed.Currency(), r.PlannedAmount.Currency())
	}
	r.CommittedAmount = committed
	return nil
}

// Variance is planned minus actual. Negative means over budget.
func (r *JobCostRecord) Variance() Money {
	return Money{amount: r.PlannedAmount.Amount().Sub(r.ActualAmount.Amount()), currency: r.PlannedAmount.Currency()}
}

// VariancePercent is the variance as a percentage of planned, zero when
// planned is zero.
func (r *JobCostRecord) VariancePercent() decimal.Decimal {
	if r.PlannedAmount.Amount().IsZero() {
		return decimal.Zero
	}
	return r.Variance().Amount().Div(r.PlannedAmount.Amount()).Mul(decimal.NewFromInt(100))
}

// IsOverBudget reports whether actual spend exceeds the plan.
func (r *JobCostRecord) IsOverBudget() bool {
	return r.ActualAmount.Amount().GreaterThan(r.PlannedAmount.Amount())
}
