package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

// CashFlowScenario selects which projection variant a set of weeks models.
type CashFlowScenario string

const (
	ScenarioBestCase  CashFlowScenario = "BEST_CASE"
	ScenarioExpected  CashFlowScenario = "EXPECTED"
	ScenarioWorstCase CashFlowScenario = "WORST_CASE"
)

// IsValid reports whether the scenario is a known enum value.
func (s CashFlowScenario) IsValid() bool {
	switch s {
	case ScenarioBestCase, ScenarioExpected, ScenarioWorstCase:
		return true
	}
	return false
}

// Projections always cover exactly 13 weekly buckets.
const ProjectionWeeks = 13

// Date span bounds in days for a 13-week horizon.
const (
	minProjectionDays = 84
	maxProjectionDays = 98
)

// CashFlowWeek is one weekly bucket: two inflow categories, three outflow
// categories, the net and the running ending balance. All seven money
// fields share the projection currency.
type CashFlowWeek struct {
	WeekNumber        int       `json:"weekNumber"` // 1-based
	WeekStart         time.Time `json:"weekStart"`
	ReceivableInflows Money     `json:"receivableInflows"`
	OtherInflows      Money     `json:"otherInflows"`
	PayrollOutflows   Money     `json:"payrollOutflows"`
	MaterialOutflows  Money     `json:"materialOutflows"`
	OverheadOutflows  Money     `json:"overheadOutflows"`
	NetCashFlow       Money     `json:"netCashFlow"`
	EndingBalance     Money     `json:"endingBalance"`
}

// moneyFields lists every money field of the week for currency checks.
func (w CashFlowWeek) moneyFields() []Money {
	return []Money{
		w.ReceivableInflows, w.OtherInflows,
		w.PayrollOutflows, w.MaterialOutflows, w.OverheadOutflows,
		w.NetCashFlow, w.EndingBalance,
	}
}

// TotalInflows sums the week's inflow categories.
func (w CashFlowWeek) TotalInflows() Money {
	return Money{
		amount:   w.ReceivableInflows.Amount().Add(w.OtherInflows.Amount()),
		currency: w.ReceivableInflows.Currency(),
	}
}

// TotalOutflows sums the week's outflow categories.
func (w CashFlowWeek) TotalOutflows() Money {
	total := w.PayrollOutflows.Amount().
		Add(w.MaterialOutflows.Amount()).
		Add(w.OverheadOutflows.Amount())
	return Money{amount: total, currency: w.PayrollOutflows.Currency()}
}

// CashFlowProjection holds a 13-week cash-flow horizon for one scenario,
// either project-scoped or company-wide (empty ProjectID).
type CashFlowProjection struct {
	ProjectionID   string           `json:"projectionID"`
	ProjectID      string           `json:"projectID"` // Empty for company-wide projections
	Scenario       CashFlowScenario `json:"scenario"`
	CurrencyCode   string           `json:"currencyCode"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	OpeningBalance Money            `json:"openingBalance"`
	weeks          []CashFlowWeek
	AuditFields
}

// NewCashFlowProjection creates a fully formed projection: a valid scenario,
// a date span of 84 to 98 days, exactly 13 weeks numbered 1 through 13 with
// no repeats, and one currency across the opening balance and every week's
// money fields. Weeks are stored in week-number order.
func NewCashFlowProjection(projectionID, projectID string, scenario CashFlowScenario, currencyCode string, startDate, endDate time.Time, openingBalance Money, weeks []CashFlowWeek) (*CashFlowProjection, error) {
	if !scenario.IsValid() {
		return nil, fmt.Errorf("%w: unknown cash flow scenario %q", apperrors.ErrValidation, scenario)
	}
	currency := strings.ToUpper(strings.TrimSpace(currencyCode))
	if !currencyCodePattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: invalid currency code %q", apperrors.ErrValidation, currencyCode)
	}
	days := daysBetween(startDate, endDate)
	if days < minProjectionDays || days > maxProjectionDays {
		return nil, fmt.Errorf("%w: projection must span %d to %d days, got %d",
			apperrors.ErrValidation, minProjectionDays, maxProjectionDays, days)
	}
	if len(weeks) != ProjectionWeeks {
		return nil, fmt.Errorf("%w: projection requires exactly %d weeks, got %d",
			apperrors.ErrValidation, ProjectionWeeks, len(weeks))
	}
	seen := make(map[int]bool, ProjectionWeeks)
	for _, week := range weeks {
		if week.WeekNumber < 1 || week.WeekNumber > ProjectionWeeks {
			return nil, fmt.Errorf("%w: week number %d must be between 1 and %d",
				apperrors.ErrValidation, week.WeekNumber, ProjectionWeeks)
		}
		if seen[week.WeekNumber] {
			return nil, fmt.Errorf("%w: duplicate week number %d", apperrors.ErrValidation, week.WeekNumber)
		}
		seen[week.WeekNumber] = true
	}
	if openingBalance.Currency() != currency {
		return nil, fmt.Errorf("%w: opening balance currency %s does not match projection currency %s",
			apperrors.ErrCurrencyMismatch, openingBalance.Currency(), currency)
	}
	for _, week := range weeks {
		if !sameCurrencyAll(currency, week.moneyFields()...) {
			return nil, fmt.Errorf("%w: week %d has amounts outside projection currency %s",
				apperrors.ErrCurrencyMismatch, week.WeekNumber, currency)
		}
	}
	p := &CashFlowProjection{
		ProjectionID:   projectionID,
		ProjectID:      projectID,
		Scenario:       scenario,
		CurrencyCode:   currency,
		StartDate:      startDate,
		EndDate:        endDate,
		OpeningBalance: openingBalance,
	}
	p.weeks = append(p.weeks, weeks...)
	sortWeeks(p.weeks)
	return p, nil
}

// RehydrateCashFlowProjection reconstructs a projection from persisted
// state. Repository use only.
func RehydrateCashFlowProjection(p CashFlowProjection, weeks []CashFlowWeek) *CashFlowProjection {
	p.weeks = weeks
	sortWeeks(p.weeks)
	return &p
}

// daysBetween counts whole calendar days from a to b, so DST shifts in the
// dates' locations cannot shorten the span.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// sortWeeks keeps the buckets in week-number order so balance chaining and
// FinalBalance never depend on the order the caller supplied.
func sortWeeks(weeks []CashFlowWeek) {
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].WeekNumber < weeks[j].WeekNumber })
}

// Weeks returns a copy of the weekly buckets.
func (p *CashFlowProjection) Weeks() []CashFlowWeek {
	out := make([]CashFlowWeek, len(p.weeks))
	copy(out, p.weeks)
	return out
}

// IsCompanyWide reports whether the projection spans all projects.
func (p *CashFlowProjection) IsCompanyWide() bool { return p.ProjectID == "" }

// UpdateWeekData replaces the bucket with the given week number. Fails when
// the week does not exist or the new data uses a different currency.
func (p *CashFlowProjection) UpdateWeekData(weekNumber int, week CashFlowWeek) error {
	if !sameCurrencyAll(p.CurrencyCode, week.moneyFields()...) {
		return fmt.Errorf("%w: week data has amounts outside projection currency %s",
			apperrors.ErrCurrencyMismatch, p.CurrencyCode)
	}
	for i, existing := range p.weeks {
		if existing.WeekNumber == weekNumber {
			week.WeekNumber = weekNumber
			p.weeks[i] = week
			return nil
		}
	}
	return fmt.Errorf("%w: projection week %d", apperrors.ErrNotFound, weekNumber)
}

// TotalInflows sums inflows across all 13 weeks.
func (p *CashFlowProjection) TotalInflows() Money {
	sum := decimal.Zero
	for _, w := range p.weeks {
		sum = sum.Add(w.TotalInflows().Amount())
	}
	return Money{amount: sum, currency: p.CurrencyCode}
}

// TotalOutflows sums outflows across all 13 weeks.
func (p *CashFlowProjection) TotalOutflows() Money {
	sum := decimal.Zero
	for _, w := range p.weeks {
		sum = sum.Add(w.TotalOutflows().Amount())
	}
	return Money{amount: sum, currency: p.CurrencyCode}
}

// TotalNetCashFlow sums the weekly nets.
func (p *CashFlowProjection) TotalNetCashFlow() Money {
	sum := decimal.Zero
	for _, w := range p.weeks {
		sum = sum.Add(w.NetCashFlow.Amount())
	}
	return Money{amount: sum, currency: p.CurrencyCode}
}

// FinalBalance is the last week's ending balance, or the opening balance
// when no weeks exist (creation always supplies 13, so that arm is
// defensive only).
func (p *CashFlowProjection) FinalBalance() Money {
	if len(p.weeks) == 0 {
		return p.OpeningBalance
	}
	return p.weeks[len(p.weeks)-1].EndingBalance
}

// LowestBalance finds the minimum ending balance across the weeks, falling
// back to the opening balance when no weeks exist.
func (p *CashFlowProjection) LowestBalance() Money {
	if len(p.weeks) == 0 {
		return p.OpeningBalance
	}
	lowest := p.weeks[0].EndingBalance
	for _, w := range p.weeks[1:] {
		if w.EndingBalance.Amount().LessThan(lowest.Amount()) {
			lowest = w.EndingBalance
		}
	}
	return lowest
}

// WeeksWithNegativeBalance counts weeks whose ending balance is below zero.
func (p *CashFlowProjection) WeeksWithNegativeBalance() int {
	count := 0
	for _, w := range p.weeks {
		if w.EndingBalance.IsNegative() {
			count++
		}
	}
	return count
}

// IsCashFlowPositive reports whether the total net cash flow is above zero.
func (p *CashFlowProjection) IsCashFlowPositive() bool {
	return p.TotalNetCashFlow().IsPositive()
}
