package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// CreateJobCostRequest defines the data needed to record a job cost.
type CreateJobCostRequest struct {
	ProjectID       string     `json:"projectID" binding:"required"`
	BudgetID        string     `json:"budgetID" binding:"required"`
	CostCode        string     `json:"costCode" binding:"required"`
	Category        string     `json:"category" binding:"required,oneof=LABOR MATERIAL EQUIPMENT SUBCONTRACTOR OVERHEAD OTHER"`
	TransactionType string     `json:"transactionType" binding:"required,oneof=ACTUAL COMMITTED PLANNED"`
	Description     string     `json:"description" binding:"required,min=3"`
	TransactionDate time.Time  `json:"transactionDate" binding:"required"`
	Planned         MoneyInput `json:"planned" binding:"required"`
	Committed       MoneyInput `json:"committed" binding:"required"`
	Actual          MoneyInput `json:"actual" binding:"required"`
	VendorID        string     `json:"vendorID"`
	PurchaseOrderID string     `json:"purchaseOrderID"`
}

// UpdateJobCostAmountRequest replaces the actual or committed amount.
type UpdateJobCostAmountRequest struct {
	Amount MoneyInput `json:"amount" binding:"required"`
}

// JobCostResponse defines the data returned for a job cost record.
type JobCostResponse struct {
	JobCostID       string          `json:"jobCostID"`
	ProjectID       string          `json:"projectID"`
	BudgetID        string          `json:"budgetID"`
	CostCode        string          `json:"costCode"`
	Category        string          `json:"category"`
	TransactionType string          `json:"transactionType"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transactionDate"`
	Planned         MoneyResponse   `json:"planned"`
	Committed       MoneyResponse   `json:"committed"`
	Actual          MoneyResponse   `json:"actual"`
	VendorID        string          `json:"vendorID,omitempty"`
	PurchaseOrderID string          `json:"purchaseOrderID,omitempty"`
	Approved        bool            `json:"approved"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	Variance        MoneyResponse   `json:"variance"`
	VariancePercent decimal.Decimal `json:"variancePercent"`
	IsOverBudget    bool            `json:"isOverBudget"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// ToJobCostResponse converts a domain record to its response shape.
func ToJobCostResponse(r *domain.JobCostRecord) JobCostResponse {
	return JobCostResponse{
		JobCostID:       r.JobCostID,
		ProjectID:       r.ProjectID,
		BudgetID:        r.BudgetID,
		CostCode:        r.CostCode.Value,
		Category:        string(r.Category),
		TransactionType: string(r.TransactionType),
		Description:     r.Description,
		TransactionDate: r.TransactionDate,
		Planned:         ToMoneyResponse(r.PlannedAmount),
		Committed:       ToMoneyResponse(r.CommittedAmount),
		Actual:          ToMoneyResponse(r.ActualAmount),
		VendorID:        r.VendorID,
		PurchaseOrderID: r.PurchaseOrderID,
		Approved:        r.Approved,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		Variance:        ToMoneyResponse(r.Variance()),
		VariancePercent: r.VariancePercent(),
		IsOverBudget:    r.IsOverBudget(),
		CreatedAt:       r.CreatedAt,
		CreatedBy:       r.CreatedBy,
	}
}

// ToListJobCostResponse converts a slice of records.
func ToListJobCostResponse(records []domain.JobCostRecord) []JobCostResponse {
	res := make([]JobCostResponse, len(records))
	for i := range records {
		res[i] = ToJobCostResponse(&records[i])
	}
	return res
}

// ListJobCostsParams defines query parameters for listing job costs.
type ListJobCostsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListJobCostsResponse wraps a page of job cost records.
type ListJobCostsResponse struct {
	JobCosts  []JobCostResponse `json:"jobCosts"`
	NextToken *string           `json:"nextToken,omitempty"`
}
