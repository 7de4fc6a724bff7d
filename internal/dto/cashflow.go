package dto

import (
	"time"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// CashFlowWeekInput defines one weekly bucket in a create or update request.
type CashFlowWeekInput struct {
	WeekNumber        int        `json:"weekNumber" binding:"required,min=1,max=13"`
	WeekStart         time.Time  `json:"weekStart" binding:"required"`
	ReceivableInflows MoneyInput `json:"receivableInflows" binding:"required"`
	OtherInflows      MoneyInput `json:"otherInflows" binding:"required"`
	PayrollOutflows   MoneyInput `json:"payrollOutflows" binding:"required"`
	MaterialOutflows  MoneyInput `json:"materialOutflows" binding:"required"`
	OverheadOutflows  MoneyInput `json:"overheadOutflows" binding:"required"`
	NetCashFlow       MoneyInput `json:"netCashFlow" binding:"required"`
	EndingBalance     MoneyInput `json:"endingBalance" binding:"required"`
}

// ToDomain converts the input into a domain week.
func (in CashFlowWeekInput) ToDomain() (domain.CashFlowWeek, error) {
	week := domain.CashFlowWeek{WeekNumber: in.WeekNumber, WeekStart: in.WeekStart}
	var err error
	if week.ReceivableInflows, err = in.ReceivableInflows.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	if week.OtherInflows, err = in.OtherInflows.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	if week.PayrollOutflows, err = in.PayrollOutflows.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	if week.MaterialOutflows, err = in.MaterialOutflows.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	if week.OverheadOutflows, err = in.OverheadOutflows.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	if week.NetCashFlow, err = in.NetCashFlow.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	if week.EndingBalance, err = in.EndingBalance.ToDomain(); err != nil {
		return domain.CashFlowWeek{}, err
	}
	return week, nil
}

// CreateProjectionRequest defines the data needed to create a projection.
// All 13 weeks must be supplied at creation.
type CreateProjectionRequest struct {
	ProjectID      string              `json:"projectID"` // Empty for company-wide
	Scenario       string              `json:"scenario" binding:"required,oneof=BEST_CASE EXPECTED WORST_CASE"`
	CurrencyCode   string              `json:"currencyCode" binding:"required,currency"`
	StartDate      time.Time           `json:"startDate" binding:"required"`
	EndDate        time.Time           `json:"endDate" binding:"required"`
	OpeningBalance MoneyInput          `json:"openingBalance" binding:"required"`
	Weeks          []CashFlowWeekInput `json:"weeks" binding:"required,len=13,dive"`
}

// CashFlowWeekResponse mirrors a domain week.
type CashFlowWeekResponse struct {
	WeekNumber        int           `json:"weekNumber"`
	WeekStart         time.Time     `json:"weekStart"`
	ReceivableInflows MoneyResponse `json:"receivableInflows"`
	OtherInflows      MoneyResponse `json:"otherInflows"`
	PayrollOutflows   MoneyResponse `json:"payrollOutflows"`
	MaterialOutflows  MoneyResponse `json:"materialOutflows"`
	OverheadOutflows  MoneyResponse `json:"overheadOutflows"`
	NetCashFlow       MoneyResponse `json:"netCashFlow"`
	EndingBalance     MoneyResponse `json:"endingBalance"`
}

// ProjectionResponse defines the data returned for a projection, including
// its computed aggregates.
type ProjectionResponse struct {
	ProjectionID             string                 `json:"projectionID"`
	ProjectID                string                 `json:"projectID,omitempty"`
	Scenario                 string                 `json:"scenario"`
	CurrencyCode             string                 `json:"currencyCode"`
	StartDate                time.Time              `json:"startDate"`
	EndDate                  time.Time              `json:"endDate"`
	OpeningBalance           MoneyResponse          `json:"openingBalance"`
	Weeks                    []CashFlowWeekResponse `json:"weeks"`
	TotalInflows             MoneyResponse          `json:"totalInflows"`
	TotalOutflows            MoneyResponse          `json:"totalOutflows"`
	TotalNetCashFlow         MoneyResponse          `json:"totalNetCashFlow"`
	FinalBalance             MoneyResponse          `json:"finalBalance"`
	LowestBalance            MoneyResponse          `json:"lowestBalance"`
	WeeksWithNegativeBalance int                    `json:"weeksWithNegativeBalance"`
	IsCashFlowPositive       bool                   `json:"isCashFlowPositive"`
	IsCompanyWide            bool                   `json:"isCompanyWide"`
}

// ToProjectionResponse converts a domain projection to its response shape.
func ToProjectionResponse(p *domain.CashFlowProjection) ProjectionResponse {
	weeks := p.Weeks()
	weekResponses := make([]CashFlowWeekResponse, len(weeks))
	for i, w := range weeks {
		weekResponses[i] = CashFlowWeekResponse{
			WeekNumber:        w.WeekNumber,
			WeekStart:         w.WeekStart,
			ReceivableInflows: ToMoneyResponse(w.ReceivableInflows),
			OtherInflows:      ToMoneyResponse(w.OtherInflows),
			PayrollOutflows:   ToMoneyResponse(w.PayrollOutflows),
			MaterialOutflows:  ToMoneyResponse(w.MaterialOutflows),
			OverheadOutflows:  ToMoneyResponse(w.OverheadOutflows),
			NetCashFlow:       ToMoneyResponse(w.NetCashFlow),
			EndingBalance:     ToMoneyResponse(w.EndingBalance),
		}
	}
	return ProjectionResponse{
		ProjectionID:             p.ProjectionID,
		ProjectID:                p.ProjectID,
		Scenario:                 string(p.Scenario),
		CurrencyCode:             p.CurrencyCode,
		StartDate:                p.StartDate,
		EndDate:                  p.EndDate,
		OpeningBalance:           ToMoneyResponse(p.OpeningBalance),
		Weeks:                    weekResponses,
		TotalInflows:             ToMoneyResponse(p.TotalInflows()),
		TotalOutflows:            ToMoneyResponse(p.TotalOutflows()),
		TotalNetCashFlow:         ToMoneyResponse(p.TotalNetCashFlow()),
		FinalBalance:             ToMoneyResponse(p.FinalBalance()),
		LowestBalance:            ToMoneyResponse(p.LowestBalance()),
		WeeksWithNegativeBalance: p.WeeksWithNegativeBalance(),
		IsCashFlowPositive:       p.IsCashFlowPositive(),
		IsCompanyWide:            p.IsCompanyWide(),
	}
}

// ToListProjectionResponse converts a slice of projections.
func ToListProjectionResponse(projections []domain.CashFlowProjection) []ProjectionResponse {
	res := make([]ProjectionResponse, len(projections))
	for i := range projections {
		res[i] = ToProjectionResponse(&projections[i])
	}
	return res
}
