package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

func testCostCode(t *testing.T, value string) domain.CostCode {
	t.Helper()
	code, err := domain.NewCostCode(value, "")
	require.NoError(t, err)
	return code
}

func testBudgetLine(t *testing.T, lineID string, planned, committed, actual domain.Money) domain.BudgetLine {
	t.Helper()
	line, err := domain.NewBudgetLine(lineID, testCostCode(t, "CO-100"), domain.CategoryMaterial, "Concrete supply", planned, committed, actual)
	require.NoError(t, err)
	return line
}

func testBudget(t *testing.T) *domain.ProjectBudget {
	t.Helper()
	budget, err := domain.NewProjectBudget("budget-1", "project-1", "GMP Budget", 1, domain.BudgetDraft, "USD", []domain.BudgetLine{
		testBudgetLine(t, "line-1", usd(1000), usd(400), usd(250)),
		testBudgetLine(t, "line-2", usd(500), usd(100), usd(50)),
	})
	require.NoError(t, err)
	return budget
}

func TestNewBudgetLine(t *testing.T) {
	code := domain.CostCode{Value: "CO-100"}

	_, err := domain.NewBudgetLine("line-1", code, domain.CategoryLabor, "", usd(10), usd(0), usd(0))
	assert.ErrorIs(t, err, apperrors.ErrValidation, "empty description")

	_, err = domain.NewBudgetLine("line-1", code, domain.BudgetCategory("FOOD"), "Lunch", usd(10), usd(0), usd(0))
	assert.ErrorIs(t, err, apperrors.ErrValidation, "unknown category")

	_, err = domain.NewBudgetLine("line-1", code, domain.CategoryLabor, "Framing crew", usd(10), eur(5), usd(0))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch, "mixed currencies must not produce a line")
}

func TestNewProjectBudget(t *testing.T) {
	line := testBudgetLine(t, "line-1", usd(1000), usd(0), usd(0))

	tests := []struct {
		name     string
		version  int
		status   domain.BudgetStatus
		currency string
		lines    []domain.BudgetLine
		wantErr  error
	}{
		{name: "valid", version: 1, status: domain.BudgetDraft, currency: "usd", lines: []domain.BudgetLine{line}},
		{name: "version zero", version: 0, status: domain.BudgetDraft, currency: "USD", lines: []domain.BudgetLine{line}, wantErr: apperrors.ErrValidation},
		{name: "unknown status", version: 1, status: domain.BudgetStatus("PENDING"), currency: "USD", lines: []domain.BudgetLine{line}, wantErr: apperrors.ErrValidation},
		{name: "no lines", version: 1, status: domain.BudgetDraft, currency: "USD", lines: nil, wantErr: apperrors.ErrValidation},
		{name: "line currency mismatch", version: 1, status: domain.BudgetDraft, currency: "EUR", lines: []domain.BudgetLine{line}, wantErr: apperrors.ErrCurrencyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget, err := domain.NewProjectBudget("budget-1", "project-1", "GMP", tt.version, tt.status, tt.currency, tt.lines)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "USD", budget.CurrencyCode, "currency is uppercased")
		})
	}
}

func TestProjectBudget_LineMutations(t *testing.T) {
	budget := testBudget(t)

	t.Run("totals recompute after add", func(t *testing.T) {
		require.NoError(t, budget.AddLine(testBudgetLine(t, "line-3", usd(200), usd(0), usd(0))))
		assert.True(t, budget.PlannedTotal().Equal(usd(1700)))
	})

	t.Run("duplicate line id rejected", func(t *testing.T) {
		err := budget.AddLine(testBudgetLine(t, "line-3", usd(1), usd(0), usd(0)))
		assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		line, err := domain.NewBudgetLine("line-4", testCostCode(t, "CO-200"), domain.CategoryLabor, "Imported labor", eur(10), eur(0), eur(0))
		require.NoError(t, err)
		assert.ErrorIs(t, budget.AddLine(line), apperrors.ErrCurrencyMismatch)
	})

	t.Run("replace swaps in place", func(t *testing.T) {
		require.NoError(t, budget.ReplaceLine(testBudgetLine(t, "line-3", usd(300), usd(0), usd(0))))
		assert.True(t, budget.PlannedTotal().Equal(usd(1800)))
	})

	t.Run("replace of unknown line fails", func(t *testing.T) {
		err := budget.ReplaceLine(testBudgetLine(t, "no-such-line", usd(1), usd(0), usd(0)))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("remove then totals shrink", func(t *testing.T) {
		require.NoError(t, budget.RemoveLine("line-3"))
		assert.True(t, budget.PlannedTotal().Equal(usd(1500)))
		assert.ErrorIs(t, budget.RemoveLine("line-3"), apperrors.ErrNotFound)
	})
}

func TestProjectBudget_LinesReturnsCopy(t *testing.T) {
	budget := testBudget(t)
	lines := budget.Lines()
	lines[0].Description = "tampered"

	assert.Equal(t, "Concrete supply", budget.Lines()[0].Description)
}

func TestProjectBudget_ApproveBaseline(t *testing.T) {
	budget := testBudget(t)

	err := budget.ApproveBaseline(eur(1500))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
	assert.Nil(t, budget.BaselineTotal)
	assert.Equal(t, domain.BudgetDraft, budget.Status)

	require.NoError(t, budget.ApproveBaseline(usd(1500)))
	require.NotNil(t, budget.BaselineTotal)
	assert.True(t, budget.BaselineTotal.Equal(usd(1500)))
	assert.Equal(t, domain.BudgetBaseline, budget.Status)
}

func TestProjectBudget_UpdateStatus(t *testing.T) {
	budget := testBudget(t)

	assert.ErrorIs(t, budget.UpdateStatus(domain.BudgetStatus("ARCHIVED")), apperrors.ErrValidation)
	require.NoError(t, budget.UpdateStatus(domain.BudgetClosed))
	assert.Equal(t, domain.BudgetClosed, budget.Status)
}

func TestProjectBudget_FrozenAfterBaseline(t *testing.T) {
	budget := testBudget(t)
	require.NoError(t, budget.ApproveBaseline(usd(1500)))

	assert.ErrorIs(t, budget.AddLine(testBudgetLine(t, "line-9", usd(1), usd(0), usd(0))), apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, budget.RemoveLine("line-1"), apperrors.ErrInvalidTransition)
}

func TestProjectBudget_ComputedTotals(t *testing.T) {
	budget := testBudget(t)

	assert.True(t, budget.PlannedTotal().Equal(usd(1500)))
	assert.True(t, budget.CommittedTotal().Equal(usd(500)))
	assert.True(t, budget.ActualTotal().Equal(usd(300)))
}

func TestProjectBudget_ApplyCost(t *testing.T) {
	budget := testBudget(t)
	require.NoError(t, budget.ApproveBaseline(usd(1500)))

	code := testCostCode(t, "CO-100")
	require.NoError(t, budget.ApplyCost(code, domain.CategoryMaterial, usd(100), usd(75)))

	assert.True(t, budget.CommittedTotal().Equal(usd(600)), "committed folds into the matching line")
	assert.True(t, budget.ActualTotal().Equal(usd(375)), "actual folds into the matching line")

	err := budget.ApplyCost(code, domain.CategoryLabor, usd(10), usd(10))
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "no line carries that category")

	err = budget.ApplyCost(code, domain.CategoryMaterial, eur(10), eur(10))
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	require.NoError(t, budget.UpdateStatus(domain.BudgetClosed))
	err = budget.ApplyCost(code, domain.CategoryMaterial, usd(1), usd(1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "closed budgets accept no more costs")
}
