package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

var projectionStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func testWeek(weekNumber int, ending domain.Money) domain.CashFlowWeek {
	return domain.CashFlowWeek{
		WeekNumber:        weekNumber,
		WeekStart:         projectionStart.AddDate(0, 0, (weekNumber-1)*7),
		ReceivableInflows: usd(10000),
		OtherInflows:      usd(500),
		PayrollOutflows:   usd(6000),
		MaterialOutflows:  usd(2500),
		OverheadOutflows:  usd(1000),
		NetCashFlow:       usd(1000),
		EndingBalance:     ending,
	}
}

func testWeeks() []domain.CashFlowWeek {
	weeks := make([]domain.CashFlowWeek, domain.ProjectionWeeks)
	for i := range weeks {
		weeks[i] = testWeek(i+1, usd(float64(20000+1000*(i+1))))
	}
	return weeks
}

func testProjection(t *testing.T, weeks []domain.CashFlowWeek) *domain.CashFlowProjection {
	t.Helper()
	p, err := domain.NewCashFlowProjection("proj-1", "project-1", domain.ScenarioExpected, "USD",
		projectionStart, projectionStart.AddDate(0, 0, 91), usd(20000), weeks)
	require.NoError(t, err)
	return p
}

func TestNewCashFlowProjection_Validation(t *testing.T) {
	weeks := testWeeks()

	duplicated := testWeeks()
	duplicated[1].WeekNumber = 1

	outOfRange := testWeeks()
	outOfRange[12].WeekNumber = 14

	tests := []struct {
		name     string
		scenario domain.CashFlowScenario
		days     int
		weeks    []domain.CashFlowWeek
		opening  domain.Money
		wantErr  error
	}{
		{name: "valid", scenario: domain.ScenarioExpected, days: 91, weeks: weeks, opening: usd(20000)},
		{name: "lower day bound", scenario: domain.ScenarioBestCase, days: 84, weeks: weeks, opening: usd(20000)},
		{name: "upper day bound", scenario: domain.ScenarioWorstCase, days: 98, weeks: weeks, opening: usd(20000)},
		{name: "unknown scenario", scenario: domain.CashFlowScenario("LIKELY"), days: 91, weeks: weeks, opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "span too short", scenario: domain.ScenarioExpected, days: 80, weeks: weeks, opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "span too long", scenario: domain.ScenarioExpected, days: 99, weeks: weeks, opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "twelve weeks", scenario: domain.ScenarioExpected, days: 91, weeks: weeks[:12], opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "fourteen weeks", scenario: domain.ScenarioExpected, days: 91, weeks: append(append([]domain.CashFlowWeek{}, weeks...), testWeek(14, usd(1))), opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "duplicate week number", scenario: domain.ScenarioExpected, days: 91, weeks: duplicated, opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "week number out of range", scenario: domain.ScenarioExpected, days: 91, weeks: outOfRange, opening: usd(20000), wantErr: apperrors.ErrValidation},
		{name: "opening balance currency", scenario: domain.ScenarioExpected, days: 91, weeks: weeks, opening: eur(20000), wantErr: apperrors.ErrCurrencyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewCashFlowProjection("proj-1", "project-1", tt.scenario, "USD",
				projectionStart, projectionStart.AddDate(0, 0, tt.days), tt.opening, tt.weeks)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewCashFlowProjection_WeekCurrencyMismatch(t *testing.T) {
	weeks := testWeeks()
	weeks[6].OverheadOutflows = eur(1000)

	_, err := domain.NewCashFlowProjection("proj-1", "project-1", domain.ScenarioExpected, "USD",
		projectionStart, projectionStart.AddDate(0, 0, 91), usd(20000), weeks)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
}

func TestNewCashFlowProjection_OrdersWeeksByNumber(t *testing.T) {
	shuffled := testWeeks()
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	p := testProjection(t, shuffled)

	for i, w := range p.Weeks() {
		assert.Equal(t, i+1, w.WeekNumber)
	}
	assert.True(t, p.FinalBalance().Equal(usd(33000)), "final balance comes from week 13, not the last supplied bucket")

	replacement := testWeek(1, usd(777))
	require.NoError(t, p.UpdateWeekData(1, replacement))
	assert.True(t, p.Weeks()[0].EndingBalance.Equal(usd(777)))
}

func TestNewCashFlowProjection_SpanIgnoresTimeOfDay(t *testing.T) {
	start := projectionStart.Add(12 * time.Hour)
	end := start.AddDate(0, 0, 84).Add(-time.Hour)

	_, err := domain.NewCashFlowProjection("proj-1", "project-1", domain.ScenarioExpected, "USD",
		start, end, usd(20000), testWeeks())
	assert.NoError(t, err, "84 calendar days minus an hour of wall clock is still an 84-day span")
}

func TestCashFlowProjection_UpdateWeekData(t *testing.T) {
	p := testProjection(t, testWeeks())

	err := p.UpdateWeekData(99, testWeek(99, usd(1)))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	bad := testWeek(5, usd(1))
	bad.NetCashFlow = eur(1)
	assert.ErrorIs(t, p.UpdateWeekData(5, bad), apperrors.ErrCurrencyMismatch)

	replacement := testWeek(5, usd(-500))
	require.NoError(t, p.UpdateWeekData(5, replacement))
	assert.True(t, p.Weeks()[4].EndingBalance.Equal(usd(-500)))
}

func TestCashFlowProjection_Aggregates(t *testing.T) {
	p := testProjection(t, testWeeks())

	assert.True(t, p.TotalInflows().Equal(usd(13*10500)))
	assert.True(t, p.TotalOutflows().Equal(usd(13*9500)))
	assert.True(t, p.TotalNetCashFlow().Equal(usd(13*1000)))
	assert.True(t, p.IsCashFlowPositive())
	assert.True(t, p.FinalBalance().Equal(usd(33000)))
	assert.True(t, p.LowestBalance().Equal(usd(21000)))
	assert.Zero(t, p.WeeksWithNegativeBalance())
}

func TestCashFlowProjection_NegativeWeekDetection(t *testing.T) {
	weeks := testWeeks()
	weeks[6] = testWeek(7, usd(-500))

	p := testProjection(t, weeks)

	assert.Equal(t, 1, p.WeeksWithNegativeBalance())
	assert.True(t, p.LowestBalance().Equal(usd(-500)))
}

func TestCashFlowProjection_WeeksReturnsCopy(t *testing.T) {
	p := testProjection(t, testWeeks())

	weeks := p.Weeks()
	weeks[0].EndingBalance = usd(-999999)

	assert.True(t, p.Weeks()[0].EndingBalance.Equal(usd(21000)))
}

func TestCashFlowProjection_CompanyWide(t *testing.T) {
	p, err := domain.NewCashFlowProjection("proj-2", "", domain.ScenarioWorstCase, "usd",
		projectionStart, projectionStart.AddDate(0, 0, 91), usd(0), testWeeks())
	require.NoError(t, err)

	assert.True(t, p.IsCompanyWide())
	assert.Equal(t, "USD", p.CurrencyCode, "currency normalized to uppercase")
}
