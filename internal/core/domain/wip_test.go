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

var reportDate = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

func testWIPReport(t *testing.T, projectID string, mutate func(*domain.WIPReport)) *domain.WIPReport {
	t.Helper()
	report := domain.WIPReport{
		ProjectID:               projectID,
		ReportDate:              reportDate,
		PercentComplete:         decimal.NewFromInt(40),
		ContractAmount:          usd(1000000),
		EstimatedTotalCost:      usd(800000),
		CostsToDate:             usd(320000),
		EstimatedCostToComplete: usd(480000),
		EarnedRevenue:           usd(400000),
		BilledToDate:            usd(450000),
		CashReceived:            usd(380000),
		RetainageHeld:           usd(45000),
		OverUnderBillings:       usd(50000),
		GrossProfitToDate:       usd(80000),
		EstimatedGrossProfit:    usd(200000),
	}
	if mutate != nil {
		mutate(&report)
	}
	created, err := domain.NewWIPReport(report)
	require.NoError(t, err)
	return created
}

func TestNewWIPReport_Validation(t *testing.T) {
	t.Run("missing project", func(t *testing.T) {
		_, err := domain.NewWIPReport(domain.WIPReport{PercentComplete: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("percent complete out of range", func(t *testing.T) {
		for _, pct := range []decimal.Decimal{decimal.NewFromInt(-1), decimal.NewFromInt(101)} {
			report := domain.WIPReport{ProjectID: "p1", PercentComplete: pct, ContractAmount: usd(1)}
			_, err := domain.NewWIPReport(report)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		}
	})

	t.Run("currency mismatch", func(t *testing.T) {
		report := domain.WIPReport{
			ProjectID:       "p1",
			PercentComplete: decimal.NewFromInt(10),
			ContractAmount:  usd(100),
			CostsToDate:     eur(10),
		}
		_, err := domain.NewWIPReport(report)
		assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
	})
}

func TestWIPReport_BillingPosition(t *testing.T) {
	overBilled := testWIPReport(t, "p1", nil)
	assert.True(t, overBilled.IsOverBilled())
	assert.False(t, overBilled.IsUnderBilled())

	underBilled := testWIPReport(t, "p2", func(r *domain.WIPReport) {
		r.OverUnderBillings = usd(-25000)
	})
	assert.True(t, underBilled.IsUnderBilled())
	assert.False(t, underBilled.IsOverBilled())
}

func TestWIPReport_BudgetPosition(t *testing.T) {
	onBudget := testWIPReport(t, "p1", nil)
	assert.True(t, onBudget.IsOnBudget())
	assert.False(t, onBudget.IsOverBudget())

	overBudget := testWIPReport(t, "p2", func(r *domain.WIPReport) {
		r.CostsToDate = usd(900000)
	})
	assert.True(t, overBudget.IsOverBudget())
}

func TestWIPReport_DerivedAmounts(t *testing.T) {
	report := testWIPReport(t, "p1", nil)

	assert.True(t, report.CostVariance().Equal(usd(480000)))
	assert.True(t, report.RevenueRemaining().Equal(usd(600000)))

	// Round trip: costVariance + costsToDate reconstructs estimatedTotalCost.
	total, err := report.CostVariance().Add(report.CostsToDate)
	require.NoError(t, err)
	assert.True(t, total.Equal(report.EstimatedTotalCost))
}

func TestSummarizeWIPReports(t *testing.T) {
	reports := []*domain.WIPReport{
		testWIPReport(t, "p1", nil), // over-billed, on budget, profitable
		testWIPReport(t, "p2", func(r *domain.WIPReport) { // under-billed, over budget, unprofitable
			r.OverUnderBillings = usd(-25000)
			r.CostsToDate = usd(900000)
			r.GrossProfitToDate = usd(-40000)
		}),
		testWIPReport(t, "p3", func(r *domain.WIPReport) { // evenly billed, on budget, profitable
			r.OverUnderBillings = usd(0)
		}),
	}

	summary, err := domain.SummarizeWIPReports(reportDate, reports)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ProjectCount)
	assert.Equal(t, 1, summary.OverBilledCount)
	assert.Equal(t, 1, summary.UnderBilledCount)
	assert.Equal(t, 1, summary.OverBudgetCount)
	assert.Equal(t, 2, summary.ProfitableCount)
	assert.True(t, summary.TotalContractAmount.Equal(usd(3000000)))
	assert.True(t, summary.TotalOverBillings.Equal(usd(50000)))
	assert.True(t, summary.TotalUnderBillings.Equal(usd(25000)), "under-billings aggregate as positive magnitude")
	assert.True(t, summary.NetOverUnderBillings().Equal(usd(25000)))

	// 2/3 profitable and 2/3 on budget: 50*(2/3)+50*(2/3) = 66.67 -> 67.
	assert.Equal(t, 67, summary.PortfolioHealthScore())
}

func TestSummarizeWIPReports_CurrencyMismatch(t *testing.T) {
	euReport := domain.WIPReport{
		ProjectID:       "p9",
		PercentComplete: decimal.NewFromInt(10),
		ContractAmount:  eur(100),
		EstimatedTotalCost: eur(80), CostsToDate: eur(10), EstimatedCostToComplete: eur(70),
		EarnedRevenue: eur(10), BilledToDate: eur(10), CashReceived: eur(10),
		RetainageHeld: eur(0), OverUnderBillings: eur(0), GrossProfitToDate: eur(0), EstimatedGrossProfit: eur(20),
	}
	created, err := domain.NewWIPReport(euReport)
	require.NoError(t, err)

	_, err = domain.SummarizeWIPReports(reportDate, []*domain.WIPReport{testWIPReport(t, "p1", nil), created})
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestSummarizeWIPReports_Empty(t *testing.T) {
	_, err := domain.SummarizeWIPReports(reportDate, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestWIPSummary_HealthScoreZeroProjects(t *testing.T) {
	summary := &domain.WIPSummary{}
	assert.Zero(t, summary.PortfolioHealthScore())
}

func TestNewWIPSummary_CountValidation(t *testing.T) {
	_, err := domain.NewWIPSummary(domain.WIPSummary{ProjectCount: 1, OverBilledCount: 2, TotalContractAmount: usd(1)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewWIPSummary(domain.WIPSummary{ProjectCount: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
