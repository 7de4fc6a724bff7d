package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

func testJobCost(t *testing.T, planned, committed, actual domain.Money) *domain.JobCostRecord {
	t.Helper()
	record, err := domain.NewJobCostRecord(
		"jc-1", "project-1", "budget-1",
		testCostCode(t, "CO-300"),
		domain.CategoryMaterial, domain.CostActual,
		"Rebar delivery", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		planned, committed, actual,
		"vendor-1", "po-77",
	)
	require.NoError(t, err)
	return record
}

func TestNewJobCostRecord_Validation(t *testing.T) {
	code := testCostCode(t, "CO-300")
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		projectID   string
		budgetID    string
		description string
		planned     domain.Money
		committed   domain.Money
		actual      domain.Money
		txDate      time.Time
		wantErr     error
	}{
		{name: "valid", projectID: "p1", budgetID: "b1", description: "Rebar", planned: usd(100), committed: usd(0), actual: usd(0), txDate: date},
		{name: "missing project", budgetID: "b1", description: "Rebar", planned: usd(100), committed: usd(0), actual: usd(0), txDate: date, wantErr: apperrors.ErrValidation},
		{name: "missing budget", projectID: "p1", description: "Rebar", planned: usd(100), committed: usd(0), actual: usd(0), txDate: date, wantErr: apperrors.ErrValidation},
		{name: "short description", projectID: "p1", budgetID: "b1", description: "ab", planned: usd(100), committed: usd(0), actual: usd(0), txDate: date, wantErr: apperrors.ErrValidation},
		{name: "zero date", projectID: "p1", budgetID: "b1", description: "Rebar", planned: usd(100), committed: usd(0), actual: usd(0), wantErr: apperrors.ErrValidation},
		{name: "mixed currency", projectID: "p1", budgetID: "b1", description: "Rebar", planned: usd(100), committed: eur(0), actual: usd(0), txDate: date, wantErr: apperrors.ErrCurrencyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewJobCostRecord("jc-1", tt.projectID, tt.budgetID, code,
				domain.CategoryMaterial, domain.CostActual, tt.description, tt.txDate,
				tt.planned, tt.committed, tt.actual, "", "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestJobCostRecord_ApproveIsOneWay(t *testing.T) {
	record := testJobCost(t, usd(100), usd(0), usd(0))
	first := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	require.NoError(t, record.Approve("pm-jane", first))
	assert.True(t, record.Approved)
	assert.Equal(t, "pm-jane", record.ApprovedBy)
	require.NotNil(t, record.ApprovedAt)
	assert.Equal(t, first, *record.ApprovedAt)

	err := record.Approve("pm-bob", second)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, "pm-jane", record.ApprovedBy, "second approval must not mutate")
	assert.Equal(t, first, *record.ApprovedAt, "approvedAt unchanged by failed approval")
}

func TestJobCostRecord_AmountUpdates(t *testing.T) {
	record := testJobCost(t, usd(1000), usd(0), usd(0))

	assert.ErrorIs(t, record.UpdateActualAmount(eur(50)), apperrors.ErrCurrencyMismatch)
	assert.ErrorIs(t, record.UpdateCommittedAmount(eur(50)), apperrors.ErrCurrencyMismatch)

	require.NoError(t, record.UpdateActualAmount(usd(1200)))
	require.NoError(t, record.UpdateCommittedAmount(usd(800)))
	assert.True(t, record.ActualAmount.Equal(usd(1200)))
	assert.True(t, record.CommittedAmount.Equal(usd(800)))

	// Updates remain allowed after approval.
	require.NoError(t, record.Approve("pm-jane", time.Now()))
	require.NoError(t, record.UpdateActualAmount(usd(1250)))
}

func TestJobCostRecord_VarianceMath(t *testing.T) {
	record := testJobCost(t, usd(1000), usd(0), usd(1200))

	assert.True(t, record.IsOverBudget())
	assert.True(t, record.Variance().Equal(usd(-200)))
	assert.True(t, record.VariancePercent().Equal(decimal.NewFromInt(-20)))
}

func TestJobCostRecord_VariancePercentZeroPlanned(t *testing.T) {
	record := testJobCost(t, usd(0), usd(0), usd(500))

	assert.True(t, record.VariancePercent().IsZero(), "zero planned must not divide")
	assert.True(t, record.IsOverBudget())
}
