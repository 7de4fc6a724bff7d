package dto

import (
	"time"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// BudgetLineInput defines one budget line in a create or replace request.
type BudgetLineInput struct {
	LineID      string     `json:"lineID"` // Assigned by the service when empty
	CostCode    string     `json:"costCode" binding:"required"`
	Category    string     `json:"category" binding:"required,oneof=LABOR MATERIAL EQUIPMENT SUBCONTRACTOR OVERHEAD OTHER"`
	Description string     `json:"description" binding:"required"`
	Planned     MoneyInput `json:"planned" binding:"required"`
	Committed   MoneyInput `json:"committed" binding:"required"`
	Actual      MoneyInput `json:"actual" binding:"required"`
}

// ToDomain builds the validated budget line, minting the id when absent.
func (in BudgetLineInput) ToDomain(lineID string) (domain.BudgetLine, error) {
	costCode, err := domain.NewCostCode(in.CostCode, "")
	if err != nil {
		return domain.BudgetLine{}, err
	}
	planned, err := in.Planned.ToDomain()
	if err != nil {
		return domain.BudgetLine{}, err
	}
	committed, err := in.Committed.ToDomain()
	if err != nil {
		return domain.BudgetLine{}, err
	}
	actual, err := in.Actual.ToDomain()
	if err != nil {
		return domain.BudgetLine{}, err
	}
	return domain.NewBudgetLine(lineID, costCode, domain.BudgetCategory(in.Category), in.Description, planned, committed, actual)
}

// CreateBudgetRequest defines the data needed to create a project budget.
type CreateBudgetRequest struct {
	ProjectID    string            `json:"projectID" binding:"required"`
	Name         string            `json:"name" binding:"required"`
	Version      int               `json:"version" binding:"required,min=1"`
	Status       string            `json:"status" binding:"omitempty,oneof=DRAFT APPROVED IN_REVIEW BASELINE CLOSED"`
	CurrencyCode string            `json:"currencyCode" binding:"required,currency"`
	Lines        []BudgetLineInput `json:"lines" binding:"required,min=1,dive"`
}

// UpdateBudgetStatusRequest moves a budget to a new status.
type UpdateBudgetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ApproveBaselineRequest freezes a baseline total on a budget.
type ApproveBaselineRequest struct {
	Total MoneyInput `json:"total" binding:"required"`
}

// BudgetLineResponse mirrors a domain budget line.
type BudgetLineResponse struct {
	LineID      string        `json:"lineID"`
	CostCode    string        `json:"costCode"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Planned     MoneyResponse `json:"planned"`
	Committed   MoneyResponse `json:"committed"`
	Actual      MoneyResponse `json:"actual"`
}

// BudgetResponse defines the data returned for a project budget.
type BudgetResponse struct {
	BudgetID       string               `json:"budgetID"`
	ProjectID      string               `json:"projectID"`
	Name           string               `json:"name"`
	Version        int                  `json:"version"`
	Status         string               `json:"status"`
	CurrencyCode   string               `json:"currencyCode"`
	BaselineTotal  *MoneyResponse       `json:"baselineTotal,omitempty"`
	Lines          []BudgetLineResponse `json:"lines"`
	PlannedTotal   MoneyResponse        `json:"plannedTotal"`
	CommittedTotal MoneyResponse        `json:"committedTotal"`
	ActualTotal    MoneyResponse        `json:"actualTotal"`
	CreatedAt      time.Time            `json:"createdAt"`
	CreatedBy      string               `json:"createdBy"`
	LastUpdatedAt  time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy  string               `json:"lastUpdatedBy"`
}

// ToBudgetResponse converts a domain budget to its response shape.
func ToBudgetResponse(b *domain.ProjectBudget) BudgetResponse {
	lines := b.Lines()
	lineResponses := make([]BudgetLineResponse, len(lines))
	for i, line := range lines {
		lineResponses[i] = BudgetLineResponse{
			LineID:      line.LineID,
			CostCode:    line.CostCode.Value,
			Category:    string(line.Category),
			Description: line.Description,
			Planned:     ToMoneyResponse(line.PlannedAmount),
			Committed:   ToMoneyResponse(line.CommittedAmount),
			Actual:      ToMoneyResponse(line.ActualAmount),
		}
	}
	return BudgetResponse{
		BudgetID:       b.BudgetID,
		ProjectID:      b.ProjectID,
		Name:           b.Name,
		Version:        b.Version,
		Status:         string(b.Status),
		CurrencyCode:   b.CurrencyCode,
		BaselineTotal:  ToMoneyResponsePtr(b.BaselineTotal),
		Lines:          lineResponses,
		PlannedTotal:   ToMoneyResponse(b.PlannedTotal()),
		CommittedTotal: ToMoneyResponse(b.CommittedTotal()),
		ActualTotal:    ToMoneyResponse(b.ActualTotal()),
		CreatedAt:      b.CreatedAt,
		CreatedBy:      b.CreatedBy,
		LastUpdatedAt:  b.LastUpdatedAt,
		LastUpdatedBy:  b.LastUpdatedBy,
	}
}

// ToListBudgetResponse converts a slice of budgets.
func ToListBudgetResponse(budgets []domain.ProjectBudget) []BudgetResponse {
	res := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		res[i] = ToBudgetResponse(&budgets[i])
	}
	return res
}

// ListBudgetsParams defines query parameters for listing budgets.
type ListBudgetsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListBudgetsResponse wraps a page of budgets.
type ListBudgetsResponse struct {
	Budgets   []BudgetResponse `json:"budgets"`
	NextToken *string          `json:"nextToken,omitempty"`
}
