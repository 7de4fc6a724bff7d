package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	budgetRepo := newPgxBudgetRepository(dbPool)
	costCodeRepo := newPgxCostCodeRepository(dbPool)
	jobCostRepo := newPgxJobCostRepository(dbPool)
	billingRepo := newPgxBillingRepository(dbPool)
	cashFlowRepo := newPgxCashFlowRepository(dbPool)
	wipRepo := newPgxWIPRepository(dbPool)

	return portsrepo.RepositoryProvider{
		BudgetRepo:   budgetRepo,
		CostCodeRepo: costCodeRepo,
		JobCostRepo:  jobCostRepo,
		BillingRepo:  billingRepo,
		CashFlowRepo: cashFlowRepo,
		WIPRepo:      wipRepo,
	}
}
