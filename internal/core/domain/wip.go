package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

// WIPReport is a percentage-of-completion revenue-recognition snapshot for
// one project. Immutable once created; all eleven money fields share one
// currency.
type WIPReport struct {
	ProjectID               string          `json:"projectID"`
	ReportDate              time.Time       `json:"reportDate"`
	PercentComplete         decimal.Decimal `json:"percentComplete"` // 0..100
	ContractAmount          Money           `json:"contractAmount"`
	EstimatedTotalCost      Money           `json:"estimatedTotalCost"`
	CostsToDate             Money           `json:"costsToDate"`
	EstimatedCostToComplete Money           `json:"estimatedCostToComplete"`
	EarnedRevenue           Money           `json:"earnedRevenue"`
	BilledToDate            Money           `json:"billedToDate"`
	CashReceived            Money           `json:"cashReceived"`
	RetainageHeld           Money           `json:"retainageHeld"`
	OverUnderBillings       Money           `json:"overUnderBillings"` // Positive = billed ahead of work done
	GrossProfitToDate       Money           `json:"grossProfitToDate"`
	EstimatedGrossProfit    Money           `json:"estimatedGrossProfit"`
}

// NewWIPReport validates the percent-complete range and the single-currency
// rule across all money fields.
func NewWIPReport(report WIPReport) (*WIPReport, error) {
	if report.ProjectID == "" {
		return nil, fmt.Errorf("%w: project ID is required", apperrors.ErrValidation)
	}
	if report.PercentComplete.IsNegative() || report.PercentComplete.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: percent complete must be between 0 and 100, got %s",
			apperrors.ErrValidation, report.PercentComplete)
	}
	currency := report.ContractAmount.Currency()
	if !sameCurrencyAll(currency,
		report.EstimatedTotalCost, report.CostsToDate, report.EstimatedCostToComplete,
		report.EarnedRevenue, report.BilledToDate, report.CashReceived, report.RetainageHeld,
		report.OverUnderBillings, report.GrossProfitToDate, report.EstimatedGrossProfit) {
		return nil, fmt.Errorf("%w: all report amounts must share one currency", apperrors.ErrCurrencyMismatch)
	}
	return &report, nil
}

// Currency is the single currency shared by every money field.
func (r *WIPReport) Currency() string { return r.ContractAmount.Currency() }

// IsOverBilled reports billing ahead of earned revenue.
func (r *WIPReport) IsOverBilled() bool { return r.OverUnderBillings.IsPositive() }

// IsUnderBilled reports earned revenue ahead of billing.
func (r *WIPReport) IsUnderBilled() bool { return r.OverUnderBillings.IsNegative() }

// IsOverBudget reports costs to date above the estimated total cost.
func (r *WIPReport) IsOverBudget() bool {
	return r.CostsToDate.Amount().GreaterThan(r.EstimatedTotalCost.Amount())
}

// IsOnBudget is the complement of IsOverBudget.
func (r *WIPReport) IsOnBudget() bool { return !r.IsOverBudget() }

// CostVariance is estimated total cost minus costs to date. If the derived
// Money cannot be constructed the minuend is returned unchanged; that is a
// documented degenerate fallback, not a silent currency bypass.
func (r *WIPReport) CostVariance() Money {
	v, err := r.EstimatedTotalCost.Sub(r.CostsToDate)
	if err != nil {
		return r.EstimatedTotalCost
	}
	return v
}

// RevenueRemaining is the contract amount minus earned revenue, with the
// same minuend fallback as CostVariance.
func (r *WIPReport) RevenueRemaining() Money {
	v, err := r.ContractAmount.Sub(r.EarnedRevenue)
	if err != nil {
		return r.ContractAmount
	}
	return v
}

// IsProfitable reports a positive gross profit to date.
func (r *WIPReport) IsProfitable() bool { return r.GrossProfitToDate.IsPositive() }

// WIPSummary is a portfolio-level rollup over N project WIP reports. All
// eleven aggregate money fields share one currency.
type WIPSummary struct {
	ReportDate       time.Time `json:"reportDate"`
	ProjectCount     int       `json:"projectCount"`
	OverBilledCount  int       `json:"overBilledCount"`
	UnderBilledCount int       `json:"underBilledCount"`
	OverBudgetCount  int       `json:"overBudgetCount"`
	ProfitableCount  int       `json:"profitableCount"`

	TotalContractAmount          Money `json:"totalContractAmount"`
	TotalEstimatedCost           Money `json:"totalEstimatedCost"`
	TotalCostsToDate             Money `json:"totalCostsToDate"`
	TotalEstimatedCostToComplete Money `json:"totalEstimatedCostToComplete"`
	TotalEarnedRevenue           Money `json:"totalEarnedRevenue"`
	TotalBilledToDate            Money `json:"totalBilledToDate"`
	TotalCashReceived            Money `json:"totalCashReceived"`
	TotalRetainageHeld           Money `json:"totalRetainageHeld"`
	TotalOverBillings            Money `json:"totalOverBillings"`
	TotalUnderBillings           Money `json:"totalUnderBillings"`
	TotalGrossProfit             Money `json:"totalGrossProfit"`
}

// NewWIPSummary validates counts and the single-currency rule across the
// aggregate fields.
func NewWIPSummary(summary WIPSummary) (*WIPSummary, error) {
	if summary.ProjectCount < 0 {
		return nil, fmt.Errorf("%w: project count cannot be negative", apperrors.ErrValidation)
	}
	if summary.OverBilledCount < 0 || summary.UnderBilledCount < 0 || summary.OverBudgetCount < 0 || summary.ProfitableCount < 0 {
		return nil, fmt.Errorf("%w: breakdown counts cannot be negative", apperrors.ErrValidation)
	}
	if summary.OverBilledCount+summary.UnderBilledCount > summary.ProjectCount ||
		summary.OverBudgetCount > summary.ProjectCount ||
		summary.ProfitableCount > summary.ProjectCount {
		return nil, fmt.Errorf("%w: breakdown counts cannot exceed the project count", apperrors.ErrValidation)
	}
	currency := summary.TotalContractAmount.Currency()
	if !sameCurrencyAll(currency,
		summary.TotalEstimatedCost, summary.TotalCostsToDate, summary.TotalEstimatedCostToComplete,
		summary.TotalEarnedRevenue, summary.TotalBilledToDate, summary.TotalCashReceived,
		summary.TotalRetainageHeld, summary.TotalOverBillings, summary.TotalUnderBillings,
		summary.TotalGrossProfit) {
		return nil, fmt.Errorf("%w: all summary amounts must share one currency", apperrors.ErrCurrencyMismatch)
	}
	return &summary, nil
}

// SummarizeWIPReports rolls up per-project reports into a portfolio summary.
// Every report must share one currency.
func SummarizeWIPReports(reportDate time.Time, reports []*WIPReport) (*WIPSummary, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: at least one report is required for a summary", apperrors.ErrValidation)
	}
	currency := reports[0].Currency()
	summary := WIPSummary{ReportDate: reportDate, ProjectCount: len(reports)}
	zero := Money{amount: decimal.Zero, currency: currency}
	summary.TotalContractAmount = zero
	summary.TotalEstimatedCost = zero
	summary.TotalCostsToDate = zero
	summary.TotalEstimatedCostToComplete = zero
	summary.TotalEarnedRevenue = zero
	summary.TotalBilledToDate = zero
	summary.TotalCashReceived = zero
	summary.TotalRetainageHeld = zero
	summary.TotalOverBillings = zero
	summary.TotalUnderBillings = zero
	summary.TotalGrossProfit = zero

	for _, r := range reports {
		if r.Currency() != currency {
			return nil, fmt.Errorf("%w: report for project %s uses %s but summary currency is %s",
				apperrors.ErrCurrencyMismatch, r.ProjectID, r.Currency(), currency)
		}
		var err error
		if summary.TotalContractAmount, err = summary.TotalContractAmount.Add(r.ContractAmount); err != nil {
			return nil, err
		}
		if summary.TotalEstimatedCost, err = summary.TotalEstimatedCost.Add(r.EstimatedTotalCost); err != nil {
			return nil, err
		}
		if summary.TotalCostsToDate, err = summary.TotalCostsToDate.Add(r.CostsToDate); err != nil {
			return nil, err
		}
		if summary.TotalEstimatedCostToComplete, err = summary.TotalEstimatedCostToComplete.Add(r.EstimatedCostToComplete); err != nil {
			return nil, err
		}
		if summary.TotalEarnedRevenue, err = summary.TotalEarnedRevenue.Add(r.EarnedRevenue); err != nil {
			return nil, err
		}
		if summary.TotalBilledToDate, err = summary.TotalBilledToDate.Add(r.BilledToDate); err != nil {
			return nil, err
		}
		if summary.TotalCashReceived, err = summary.TotalCashReceived.Add(r.CashReceived); err != nil {
			return nil, err
		}
		if summary.TotalRetainageHeld, err = summary.TotalRetainageHeld.Add(r.RetainageHeld); err != nil {
			return nil, err
		}
		if summary.TotalGrossProfit, err = summary.TotalGrossProfit.Add(r.GrossProfitToDate); err != nil {
			return nil, err
		}
		switch {
		case r.IsOverBilled():
			summary.OverBilledCount++
			if summary.TotalOverBillings, err = summary.TotalOverBillings.Add(r.OverUnderBillings); err != nil {
				return nil, err
			}
		case r.IsUnderBilled():
			summary.UnderBilledCount++
			if summary.TotalUnderBillings, err = summary.TotalUnderBillings.Add(r.OverUnderBillings.Neg()); err != nil {
				return nil, err
			}
		}
		if r.IsOverBudget() {
			summary.OverBudgetCount++
		}
		if r.IsProfitable() {
			summary.ProfitableCount++
		}
	}
	return NewWIPSummary(summary)
}

// PortfolioHealthScore blends the profitable-project ratio and the
// on-budget ratio 50/50 into a rounded 0..100 score. Zero projects score
// zero.
func (s *WIPSummary) PortfolioHealthScore() int {
	if s.ProjectCount == 0 {
		return 0
	}
	count := decimal.NewFromInt(int64(s.ProjectCount))
	profitable := decimal.NewFromInt(int64(s.ProfitableCount)).Div(count)
	onBudget := decimal.NewFromInt(int64(s.ProjectCount - s.OverBudgetCount)).Div(count)
	fifty := decimal.NewFromInt(50)
	score := profitable.Mul(fifty).Add(onBudget.Mul(fifty))
	return int(score.Round(0).IntPart())
}

// NetOverUnderBillings is total over-billings minus total under-billings.
func (s *WIPSummary) NetOverUnderBillings() Money {
	return Money{
		amount:   s.TotalOverBillings.Amount().Sub(s.TotalUnderBillings.Amount()),
		currency: s.TotalOverBillings.Currency(),
	}
}
