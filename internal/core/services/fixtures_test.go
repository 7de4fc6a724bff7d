package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

func usd(f float64) domain.Money {
	return domain.MustMoney(decimal.NewFromFloat(f), "USD")
}

func usdInput(f float64) dto.MoneyInput {
	return dto.MoneyInput{Amount: decimal.NewFromFloat(f), Currency: "USD"}
}

func budgetFixture(t *testing.T, status domain.BudgetStatus) *domain.ProjectBudget {
	t.Helper()
	code, err := domain.NewCostCode("CO-100", "")
	require.NoError(t, err)
	line, err := domain.NewBudgetLine("line-1", code, domain.CategoryMaterial, "Concrete supply", usd(1000), usd(400), usd(250))
	require.NoError(t, err)
	budget, err := domain.NewProjectBudget("budget-1", "project-1", "GMP Budget", 1, domain.BudgetDraft, "USD", []domain.BudgetLine{line})
	require.NoError(t, err)
	if status == domain.BudgetBaseline {
		require.NoError(t, budget.ApproveBaseline(usd(1000)))
	} else if status != domain.BudgetDraft {
		require.NoError(t, budget.UpdateStatus(status))
	}
	return budget
}

func jobCostFixture(t *testing.T, approved bool) *domain.JobCostRecord {
	t.Helper()
	code, err := domain.NewCostCode("CO-100", "")
	require.NoError(t, err)
	record, err := domain.NewJobCostRecord("jobcost-1", "project-1", "budget-1", code,
		domain.CategoryMaterial, domain.CostActual, "Rebar delivery",
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), usd(500), usd(200), usd(150), "vendor-1", "po-1")
	require.NoError(t, err)
	if approved {
		require.NoError(t, record.Approve("approver-1", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)))
	}
	return record
}

func billingFixture(t *testing.T) *domain.ProgressBilling {
	t.Helper()
	billing, err := domain.NewProgressBilling("billing-1", "project-1", "contract-1", 1,
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		usd(1000000), usd(50000), usd(200000), usd(30000), decimal.NewFromInt(10))
	require.NoError(t, err)
	return billing
}

func billingLineItemFixture(t *testing.T) domain.BillingLineItem {
	t.Helper()
	item, err := domain.NewBillingLineItem("1", "Sitework", usd(300000), usd(100000), usd(80000), usd(20000))
	require.NoError(t, err)
	return item
}

func weekInputsFixture() []dto.CashFlowWeekInput {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	weeks := make([]dto.CashFlowWeekInput, domain.ProjectionWeeks)
	for i := range weeks {
		weeks[i] = dto.CashFlowWeekInput{
			WeekNumber:        i + 1,
			WeekStart:         start.AddDate(0, 0, i*7),
			ReceivableInflows: usdInput(1000),
			OtherInflows:      usdInput(0),
			PayrollOutflows:   usdInput(600),
			MaterialOutflows:  usdInput(200),
			OverheadOutflows:  usdInput(100),
			NetCashFlow:       usdInput(0),
			EndingBalance:     usdInput(0),
		}
	}
	return weeks
}

func projectionFixture(t *testing.T) *domain.CashFlowProjection {
	t.Helper()
	inputs := weekInputsFixture()
	weeks := make([]domain.CashFlowWeek, 0, len(inputs))
	for _, in := range inputs {
		week, err := in.ToDomain()
		require.NoError(t, err)
		weeks = append(weeks, week)
	}
	projection, err := domain.NewCashFlowProjection("projection-1", "project-1", domain.ScenarioExpected, "USD",
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC), usd(5000), weeks)
	require.NoError(t, err)
	return projection
}

func wipReportFixture(t *testing.T, projectID string) *domain.WIPReport {
	t.Helper()
	report, err := domain.NewWIPReport(domain.WIPReport{
		ProjectID:               projectID,
		ReportDate:              time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		PercentComplete:         decimal.NewFromInt(50),
		ContractAmount:          usd(1000000),
		EstimatedTotalCost:      usd(800000),
		CostsToDate:             usd(400000),
		EstimatedCostToComplete: usd(400000),
		EarnedRevenue:           usd(500000),
		BilledToDate:            usd(450000),
		CashReceived:            usd(300000),
		RetainageHeld:           usd(45000),
		OverUnderBillings:       usd(-50000),
		GrossProfitToDate:       usd(100000),
		EstimatedGrossProfit:    usd(200000),
	})
	require.NoError(t, err)
	return report
}
