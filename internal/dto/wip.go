package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// ComputeWIPSummaryRequest selects the projects to roll up.
type ComputeWIPSummaryRequest struct {
	ProjectIDs []string `json:"projectIDs" binding:"required,min=1"`
}

// WIPReportResponse defines the data returned for a WIP snapshot.
type WIPReportResponse struct {
	ProjectID               string          `json:"projectID"`
	ReportDate              time.Time       `json:"reportDate"`
	PercentComplete         decimal.Decimal `json:"percentComplete"`
	ContractAmount          MoneyResponse   `json:"contractAmount"`
	EstimatedTotalCost      MoneyResponse   `json:"estimatedTotalCost"`
	CostsToDate             MoneyResponse   `json:"costsToDate"`
	EstimatedCostToComplete MoneyResponse   `json:"estimatedCostToComplete"`
	EarnedRevenue           MoneyResponse   `json:"earnedRevenue"`
	BilledToDate            MoneyResponse   `json:"billedToDate"`
	CashReceived            MoneyResponse   `json:"cashReceived"`
	RetainageHeld           MoneyResponse   `json:"retainageHeld"`
	OverUnderBillings       MoneyResponse   `json:"overUnderBillings"`
	GrossProfitToDate       MoneyResponse   `json:"grossProfitToDate"`
	EstimatedGrossProfit    MoneyResponse   `json:"estimatedGrossProfit"`
	CostVariance            MoneyResponse   `json:"costVariance"`
	RevenueRemaining        MoneyResponse   `json:"revenueRemaining"`
	IsOverBilled            bool            `json:"isOverBilled"`
	IsUnderBilled           bool            `json:"isUnderBilled"`
	IsOverBudget            bool            `json:"isOverBudget"`
	IsOnBudget              bool            `json:"isOnBudget"`
}

// ToWIPReportResponse converts a domain report to its response shape.
func ToWIPReportResponse(r *domain.WIPReport) WIPReportResponse {
	return WIPReportResponse{
		ProjectID:               r.ProjectID,
		ReportDate:              r.ReportDate,
		PercentComplete:         r.PercentComplete,
		ContractAmount:          ToMoneyResponse(r.ContractAmount),
		EstimatedTotalCost:      ToMoneyResponse(r.EstimatedTotalCost),
		CostsToDate:             ToMoneyResponse(r.CostsToDate),
		EstimatedCostToComplete: ToMoneyResponse(r.EstimatedCostToComplete),
		EarnedRevenue:           ToMoneyResponse(r.EarnedRevenue),
		BilledToDate:            ToMoneyResponse(r.BilledToDate),
		CashReceived:            ToMoneyResponse(r.CashReceived),
		RetainageHeld:           ToMoneyResponse(r.RetainageHeld),
		OverUnderBillings:       ToMoneyResponse(r.OverUnderBillings),
		GrossProfitToDate:       ToMoneyResponse(r.GrossProfitToDate),
		EstimatedGrossProfit:    ToMoneyResponse(r.EstimatedGrossProfit),
		CostVariance:            ToMoneyResponse(r.CostVariance()),
		RevenueRemaining:        ToMoneyResponse(r.RevenueRemaining()),
		IsOverBilled:            r.IsOverBilled(),
		IsUnderBilled:           r.IsUnderBilled(),
		IsOverBudget:            r.IsOverBudget(),
		IsOnBudget:              r.IsOnBudget(),
	}
}

// WIPSummaryResponse defines the data returned for a portfolio rollup.
type WIPSummaryResponse struct {
	ReportDate                   time.Time     `json:"reportDate"`
	ProjectCount                 int           `json:"projectCount"`
	OverBilledCount              int           `json:"overBilledCount"`
	UnderBilledCount             int           `json:"underBilledCount"`
	OverBudgetCount              int           `json:"overBudgetCount"`
	ProfitableCount              int           `json:"profitableCount"`
	TotalContractAmount          MoneyResponse `json:"totalContractAmount"`
	TotalEstimatedCost           MoneyResponse `json:"totalEstimatedCost"`
	TotalCostsToDate             MoneyResponse `json:"totalCostsToDate"`
	TotalEstimatedCostToComplete MoneyResponse `json:"totalEstimatedCostToComplete"`
	TotalEarnedRevenue           MoneyResponse `json:"totalEarnedRevenue"`
	TotalBilledToDate            MoneyResponse `json:"totalBilledToDate"`
	TotalCashReceived            MoneyResponse `json:"totalCashReceived"`
	TotalRetainageHeld           MoneyResponse `json:"totalRetainageHeld"`
	TotalOverBillings            MoneyResponse `json:"totalOverBillings"`
	TotalUnderBillings           MoneyResponse `json:"totalUnderBillings"`
	TotalGrossProfit             MoneyResponse `json:"totalGrossProfit"`
	NetOverUnderBillings         MoneyResponse `json:"netOverUnderBillings"`
	PortfolioHealthScore         int           `json:"portfolioHealthScore"`
}

// ToWIPSummaryResponse converts a domain summary to its response shape.
func ToWIPSummaryResponse(s *domain.WIPSummary) WIPSummaryResponse {
	return WIPSummaryResponse{
		ReportDate:                   s.ReportDate,
		ProjectCount:                 s.ProjectCount,
		OverBilledCount:              s.OverBilledCount,
		UnderBilledCount:             s.UnderBilledCount,
		OverBudgetCount:              s.OverBudgetCount,
		ProfitableCount:              s.ProfitableCount,
		TotalContractAmount:          ToMoneyResponse(s.TotalContractAmount),
		TotalEstimatedCost:           ToMoneyResponse(s.TotalEstimatedCost),
		TotalCostsToDate:             ToMoneyResponse(s.TotalCostsToDate),
		TotalEstimatedCostToComplete: ToMoneyResponse(s.TotalEstimatedCostToComplete),
		TotalEarnedRevenue:           ToMoneyResponse(s.TotalEarnedRevenue),
		TotalBilledToDate:            ToMoneyResponse(s.TotalBilledToDate),
		TotalCashReceived:            ToMoneyResponse(s.TotalCashReceived),
		TotalRetainageHeld:           ToMoneyResponse(s.TotalRetainageHeld),
		TotalOverBillings:            ToMoneyResponse(s.TotalOverBillings),
		TotalUnderBillings:           ToMoneyResponse(s.TotalUnderBillings),
		TotalGrossProfit:             ToMoneyResponse(s.TotalGrossProfit),
		NetOverUnderBillings:         ToMoneyResponse(s.NetOverUnderBillings()),
		PortfolioHealthScore:         s.PortfolioHealthScore(),
	}
}
