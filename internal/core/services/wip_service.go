package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

const wipPageSize = 100

var oneHundred = decimal.NewFromInt(100)

// wipService computes percentage-of-completion revenue recognition
// snapshots from a project's baseline budget, job costs and billings.
type wipService struct {
	BaseService
	wipRepo     portsrepo.WIPRepositoryFacade
	budgetRepo  portsrepo.BudgetRepositoryFacade
	jobCostRepo portsrepo.JobCostRepositoryFacade
	billingRepo portsrepo.BillingRepositoryFacade
}

// NewWIPService creates a new WIPService.
func NewWIPService(wipRepo portsrepo.WIPRepositoryFacade, budgetRepo portsrepo.BudgetRepositoryFacade, jobCostRepo portsrepo.JobCostRepositoryFacade, billingRepo portsrepo.BillingRepositoryFacade) portssvc.WIPSvcFacade {
	return &wipService{
		wipRepo:     wipRepo,
		budgetRepo:  budgetRepo,
		jobCostRepo: jobCostRepo,
		billingRepo: billingRepo,
	}
}

var _ portssvc.WIPSvcFacade = (*wipService)(nil)

// GetLatestReport retrieves the most recent snapshot for a project.
func (s *wipService) GetLatestReport(ctx context.Context, projectID string) (*domain.WIPReport, error) {
	report, err := s.wipRepo.FindLatestReportByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest WIP report for project %s: %w", projectID, err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: no WIP report for project %s", apperrors.ErrNotFound, projectID)
	}
	return report, nil
}

// ListReportsByProject retrieves the snapshot history for a project.
func (s *wipService) ListReportsByProject(ctx context.Context, projectID string) ([]domain.WIPReport, error) {
	reports, err := s.wipRepo.ListReportsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list WIP reports for project %s: %w", projectID, err)
	}
	return reports, nil
}

// baselineBudget finds the project's baseline budget, preferring the highest
// version when several carry the BASELINE status.
func (s *wipService) baselineBudget(ctx context.Context, projectID string) (*domain.ProjectBudget, error) {
	var baseline *domain.ProjectBudget
	var nextToken *string
	for {
		budgets, token, err := s.budgetRepo.ListBudgetsByProject(ctx, projectID, wipPageSize, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list budgets for project %s: %w", projectID, err)
		}
		for i := range budgets {
			b := &budgets[i]
			if b.Status != domain.BudgetBaseline {
				continue
			}
			if baseline == nil || b.Version > baseline.Version {
				baseline = domain.RehydrateProjectBudget(*b, b.Lines())
			}
		}
		if token == nil {
			break
		}
		nextToken = token
	}
	if baseline == nil {
		return nil, fmt.Errorf("%w: project %s has no baseline budget", apperrors.ErrNotFound, projectID)
	}
	return baseline, nil
}

// latestBilling picks the active application with the highest application
// number, ignoring rejected and voided ones. Nil when none qualify.
func latestBilling(billings []domain.ProgressBilling) *domain.ProgressBilling {
	var latest *domain.ProgressBilling
	for i := range billings {
		b := &billings[i]
		if b.Status == domain.BillingRejected || b.Status == domain.BillingVoid {
			continue
		}
		if latest == nil || b.ApplicationNumber > latest.ApplicationNumber {
			latest = b
		}
	}
	return latest
}

// ComputeReport derives a WIP snapshot for a project using the cost-to-cost
// method and persists it.
func (s *wipService) ComputeReport(ctx context.Context, projectID string, reportDate time.Time, userID string) (*domain.WIPReport, error) {
	budget, err := s.baselineBudget(ctx, projectID)
	if err != nil {
		return nil, err
	}
	currency := budget.CurrencyCode
	zero, err := domain.ZeroMoney(currency)
	if err != nil {
		return nil, err
	}

	// Costs to date come from approved records only; unapproved entries are
	// still in review and must not move recognized revenue.
	costsToDate := zero
	var nextToken *string
	for {
		records, token, err := s.jobCostRepo.ListJobCostsByProject(ctx, projectID, wipPageSize, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list job costs for project %s: %w", projectID, err)
		}
		for _, r := range records {
			if !r.Approved {
				continue
			}
			if costsToDate, err = costsToDate.Add(r.ActualAmount); err != nil {
				return nil, err
			}
		}
		if token == nil {
			break
		}
		nextToken = token
	}

	estimatedTotalCost := budget.PlannedTotal()
	if budget.BaselineTotal != nil {
		estimatedTotalCost = *budget.BaselineTotal
	}

	billings, err := s.billingRepo.ListBillingsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings for project %s: %w", projectID, err)
	}
	latest := latestBilling(billings)

	contractAmount := estimatedTotalCost
	billedToDate := zero
	cashReceived := zero
	retainageHeld := zero
	if latest != nil {
		contractAmount = latest.ContractSumToDate()
		billedToDate = latest.TotalCompletedAndStored()
		cashReceived = latest.PreviousPayments
		if latest.Status == domain.BillingPaid {
			if cashReceived, err = cashReceived.Add(latest.CurrentPaymentDue()); err != nil {
				return nil, err
			}
		}
		retainageHeld = latest.RetainageAmount
	}

	// Cost-to-cost percent complete, clamped to [0, 100].
	percentComplete := decimal.Zero
	if estimatedTotalCost.IsPositive() {
		percentComplete = costsToDate.Amount().Div(estimatedTotalCost.Amount()).Mul(oneHundred)
		if percentComplete.GreaterThan(oneHundred) {
			percentComplete = oneHundred
		}
		if percentComplete.IsNegative() {
			percentComplete = decimal.Zero
		}
	}

	earnedRevenue := contractAmount.Mul(percentComplete.Div(oneHundred))
	estimatedCostToComplete, err := estimatedTotalCost.Sub(costsToDate)
	if err != nil {
		return nil, err
	}
	if estimatedCostToComplete.IsNegative() {
		estimatedCostToComplete = zero
	}
	overUnderBillings, err := billedToDate.Sub(earnedRevenue)
	if err != nil {
		return nil, err
	}
	grossProfitToDate, err := earnedRevenue.Sub(costsToDate)
	if err != nil {
		return nil, err
	}
	estimatedGrossProfit, err := contractAmount.Sub(estimatedTotalCost)
	if err != nil {
		return nil, err
	}

	report, err := domain.NewWIPReport(domain.WIPReport{
		ProjectID:               projectID,
		ReportDate:              reportDate,
		PercentComplete:         percentComplete,
		ContractAmount:          contractAmount,
		EstimatedTotalCost:      estimatedTotalCost,
		CostsToDate:             costsToDate,
		EstimatedCostToComplete: estimatedCostToComplete,
		EarnedRevenue:           earnedRevenue,
		BilledToDate:            billedToDate,
		CashReceived:            cashReceived,
		RetainageHeld:           retainageHeld,
		OverUnderBillings:       overUnderBillings,
		GrossProfitToDate:       grossProfitToDate,
		EstimatedGrossProfit:    estimatedGrossProfit,
	})
	if err != nil {
		return nil, err
	}

	if err := s.wipRepo.SaveReport(ctx, report); err != nil {
		s.LogError(ctx, err, "Failed to save WIP report", slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to save WIP report for project %s: %w", projectID, err)
	}

	s.LogInfo(ctx, "WIP report computed",
		slog.String("project_id", projectID),
		slog.String("percent_complete", percentComplete.StringFixed(2)),
		slog.String("over_under_billings", overUnderBillings.String()))
	return report, nil
}

// ComputeSummary rolls up the latest reports of the given projects. Projects
// without a report are skipped; an empty result is an error.
func (s *wipService) ComputeSummary(ctx context.Context, req dto.ComputeWIPSummaryRequest, reportDate time.Time) (*domain.WIPSummary, error) {
	reports := make([]*domain.WIPReport, 0, len(req.ProjectIDs))
	for _, projectID := range req.ProjectIDs {
		report, err := s.wipRepo.FindLatestReportByProject(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to find latest WIP report for project %s: %w", projectID, err)
		}
		if report == nil {
			s.LogDebug(ctx, "Skipping project without WIP report", slog.String("project_id", projectID))
			continue
		}
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: none of the requested projects have WIP reports", apperrors.ErrNotFound)
	}

	summary, err := domain.SummarizeWIPReports(reportDate, reports)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "WIP summary computed",
		slog.Int("project_count", summary.ProjectCount),
		slog.Int("portfolio_health_score", summary.PortfolioHealthScore()))
	return summary, nil
}
