package services

import (
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Budget = NewBudgetService(repos.BudgetRepo)
	container.CostCode = NewCostCodeService(repos.CostCodeRepo)
	container.JobCost = NewJobCostService(repos.JobCostRepo, repos.BudgetRepo)
	container.Billing = NewBillingService(repos.BillingRepo)
	container.CashFlow = NewCashFlowService(repos.CashFlowRepo)
	container.WIP = NewWIPService(repos.WIPRepo, repos.BudgetRepo, repos.JobCostRepo, repos.BillingRepo)

	return container
}
