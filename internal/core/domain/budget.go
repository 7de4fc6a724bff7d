package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

// BudgetStatus indicates the lifecycle state of a project budget.
type BudgetStatus string

const (
	BudgetDraft    BudgetStatus = "DRAFT"
	BudgetApproved BudgetStatus = "APPROVED"
	BudgetInReview BudgetStatus = "IN_REVIEW"
	BudgetBaseline BudgetStatus = "BASELINE"
	BudgetClosed   BudgetStatus = "CLOSED"
)

// IsValid reports whether the status is one of the known enum values.
func (s BudgetStatus) IsValid() bool {
	switch s {
	case BudgetDraft, BudgetApproved, BudgetInReview, BudgetBaseline, BudgetClosed:
		return true
	}
	return false
}

// BudgetCategory classifies a budget line or job cost by cost behaviour.
type BudgetCategory string

const (
	CategoryLabor         BudgetCategory = "LABOR"
	CategoryMaterial      BudgetCategory = "MATERIAL"
	CategoryEquipment     BudgetCategory = "EQUIPMENT"
	CategorySubcontractor BudgetCategory = "SUBCONTRACTOR"
	CategoryOverhead      BudgetCategory = "OVERHEAD"
	CategoryOther         BudgetCategory = "OTHER"
)

// IsValid reports whether the category is a known enum value.
func (c BudgetCategory) IsValid() bool {
	switch c {
	case CategoryLabor, CategoryMaterial, CategoryEquipment, CategorySubcontractor, CategoryOverhead, CategoryOther:
		return true
	}
	return false
}

// BudgetLine binds a cost code to planned, committed and actual amounts.
// All three amounts must share one currency.
type BudgetLine struct {
	LineID          string         `json:"lineID"`
	CostCode        CostCode       `json:"costCode"`
	Category        BudgetCategory `json:"category"`
	Description     string         `json:"description"`
	PlannedAmount   Money          `json:"plannedAmount"`
	CommittedAmount Money          `json:"committedAmount"`
	ActualAmount    Money          `json:"actualAmount"`
}

// NewBudgetLine validates the single-currency rule and the description.
func NewBudgetLine(lineID string, costCode CostCode, category BudgetCategory, description string, planned, committed, actual Money) (BudgetLine, error) {
	if strings.TrimSpace(description) == "" {
		return BudgetLine{}, fmt.Errorf("%w: budget line description is required", apperrors.ErrValidation)
	}
	if !category.IsValid() {
		return BudgetLine{}, fmt.Errorf("%w: unknown budget category %q", apperrors.ErrValidation, category)
	}
	if !sameCurrencyAll(planned.Currency(), committed, actual) {
		return BudgetLine{}, fmt.Errorf("%w: planned, committed and actual amounts must share one currency", apperrors.ErrCurrencyMismatch)
	}
	return BudgetLine{
		LineID:          lineID,
		CostCode:        costCode,
		Category:        category,
		Description:     strings.TrimSpace(description),
		PlannedAmount:   planned,
		CommittedAmount: committed,
		ActualAmount:    actual,
	}, nil
}

// ProjectBudget is a versioned, status-tagged collection of budget lines for
// one project. The Version field is an optimistic-concurrency token checked
// by the repository on save; mutators never increment it themselves.
type ProjectBudget struct {
	BudgetID      string       `json:"budgetID"`
	ProjectID     string       `json:"projectID"`
	Name          string       `json:"name"`
	Version       int          `json:"version"` // >= 1
	Status        BudgetStatus `json:"status"`
	CurrencyCode  string       `json:"currencyCode"`
	BaselineTotal *Money       `json:"baselineTotal,omitempty"` // Set by ApproveBaseline
	lines         []BudgetLine
	AuditFields
}

// NewProjectBudget creates a budget with at least one line. All line
// currencies must match the budget currency, which is normalized to uppercase.
func NewProjectBudget(budgetID, projectID, name string, version int, status BudgetStatus, currencyCode string, lines []BudgetLine) (*ProjectBudget, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project ID is required", apperrors.ErrValidation)
	}
	if version < 1 {
		return nil, fmt.Errorf("%w: budget version must be at least 1, got %d", apperrors.ErrValidation, version)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown budget status %q", apperrors.ErrValidation, status)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: a budget requires at least one line", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(currencyCode))
	if !currencyCodePattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: invalid currency code %q", apperrors.ErrValidation, currencyCode)
	}
	for _, line := range lines {
		if line.PlannedAmount.Currency() != currency {
			return nil, fmt.Errorf("%w: line %s uses %s but budget currency is %s",
				apperrors.ErrCurrencyMismatch, line.LineID, line.PlannedAmount.Currency(), currency)
		}
	}
	b := &ProjectBudget{
		BudgetID:     budgetID,
		ProjectID:    projectID,
		Name:         strings.TrimSpace(name),
		Version:      version,
		Status:       status,
		CurrencyCode: currency,
	}
	b.lines = append(b.lines, lines...)
	return b, nil
}

// RehydrateProjectBudget reconstructs a budget from persisted state without
// re-running creation validation. Repository use only.
func RehydrateProjectBudget(b ProjectBudget, lines []BudgetLine) *ProjectBudget {
	b.lines = lines
	return &b
}

// Lines returns a copy of the line collection; callers cannot mutate the
// budget through it.
func (b *ProjectBudget) Lines() []BudgetLine {
	out := make([]BudgetLine, len(b.lines))
	copy(out, b.lines)
	return out
}

// isMutable reports whether the line collection may still change.
func (b *ProjectBudget) isMutable() bool {
	return b.Status == BudgetDraft || b.Status == BudgetInReview
}

// AddLine appends a line after checking its currency against the budget's.
func (b *ProjectBudget) AddLine(line BudgetLine) error {
	if !b.isMutable() {
		return fmt.Errorf("%w: cannot add lines to a %s budget", apperrors.ErrInvalidTransition, b.Status)
	}
	if line.PlannedAmount.Currency() != b.CurrencyCode {
		return fmt.Errorf("%w: line currency %s does not match budget currency %s",
			apperrors.ErrCurrencyMismatch, line.PlannedAmount.Currency(), b.CurrencyCode)
	}
	for _, existing := range b.lines {
		if existing.LineID == line.LineID {
			return fmt.Errorf("%w: line %s already exists", apperrors.ErrDuplicate, line.LineID)
		}
	}
	b.lines = append(b.lines, line)
	return nil
}

// RemoveLine deletes the line with the given id.
func (b *ProjectBudget) RemoveLine(lineID string) error {
	if !b.isMutable() {
		return fmt.Errorf("%w: cannot remove lines from a %s budget", apperrors.ErrInvalidTransition, b.Status)
	}
	for i, line := range b.lines {
		if line.LineID == lineID {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: budget line %s", apperrors.ErrNotFound, lineID)
}

// ReplaceLine swaps the line with the same id for the given one. A missing
// line id is an error.
func (b *ProjectBudget) ReplaceLine(line BudgetLine) error {
	if !b.isMutable() {
		return fmt.Errorf("%w: cannot replace lines on a %s budget", apperrors.ErrInvalidTransition, b.Status)
	}
	if line.PlannedAmount.Currency() != b.CurrencyCode {
		return fmt.Errorf("%w: line currency %s does not match budget currency %s",
			apperrors.ErrCurrencyMismatch, line.PlannedAmount.Currency(), b.CurrencyCode)
	}
	for i, existing := range b.lines {
		if existing.LineID == line.LineID {
			b.lines[i] = line
			return nil
		}
	}
	return fmt.Errorf("%w: budget line %s", apperrors.ErrNotFound, line.LineID)
}

// ApplyCost folds committed and actual deltas into the line matching the
// given cost code and category. Cost accrual is allowed in every status
// except CLOSED, since actuals keep arriving after the baseline is frozen.
func (b *ProjectBudget) ApplyCost(costCode CostCode, category BudgetCategory, committedDelta, actualDelta Money) error {
	if b.Status == BudgetClosed {
		return fmt.Errorf("%w: cannot apply costs to a closed budget", apperrors.ErrInvalidTransition)
	}
	if !sameCurrencyAll(b.CurrencyCode, committedDelta, actualDelta) {
		return fmt.Errorf("%w: cost deltas must use budget currency %s", apperrors.ErrCurrencyMismatch, b.CurrencyCode)
	}
	for i, line := range b.lines {
		if line.CostCode.Value != costCode.Value || line.Category != category {
			continue
		}
		committed, err := line.CommittedAmount.Add(committedDelta)
		if err != nil {
			return err
		}
		actual, err := line.ActualAmount.Add(actualDelta)
		if err != nil {
			return err
		}
		b.lines[i].CommittedAmount = committed
		b.lines[i].ActualAmount = actual
		return nil
	}
	return fmt.Errorf("%w: no budget line for cost code %s category %s", apperrors.ErrNotFound, costCode.Value, category)
}

// ApproveBaseline freezes the given total as the baseline and moves the
// budget to BASELINE status. The total's currency must match the budget's.
func (b *ProjectBudget) ApproveBaseline(total Money) error {
	if total.Currency() != b.CurrencyCode {
		return fmt.Errorf("%w: baseline total currency %s does not match budget currency %s",
			apperrors.ErrCurrencyMismatch, total.Currency(), b.CurrencyCode)
	}
	b.BaselineTotal = &total
	b.Status = BudgetBaseline
	return nil
}

// UpdateStatus moves the budget to the given status, rejecting unknown values.
func (b *ProjectBudget) UpdateStatus(status BudgetStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown budget status %q", apperrors.ErrValidation, status)
	}
	b.Status = status
	return nil
}

// PlannedTotal sums planned amounts over all lines. Recomputed on every call
// so it stays consistent after any mutation.
func (b *ProjectBudget) PlannedTotal() Money {
	return b.sumLines(func(l BudgetLine) decimal.Decimal { return l.PlannedAmount.Amount() })
}

// CommittedTotal sums committed amounts over all lines.
func (b *ProjectBudget) CommittedTotal() Money {
	return b.sumLines(func(l BudgetLine) decimal.Decimal { return l.CommittedAmount.Amount() })
}

// ActualTotal sums actual amounts over all lines.
func (b *ProjectBudget) ActualTotal() Money {
	return b.sumLines(func(l BudgetLine) decimal.Decimal { return l.ActualAmount.Amount() })
}

func (b *ProjectBudget) sumLines(pick func(BudgetLine) decimal.Decimal) Money {
	sum := decimal.Zero
	for _, line := range b.lines {
		sum = sum.Add(pick(line))
	}
	// Lines are currency-checked on entry, so this cannot fail.
	return Money{amount: sum, currency: b.CurrencyCode}
}
