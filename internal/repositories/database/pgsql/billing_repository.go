package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	"github.com/BuildrFin/construction_finance_app/internal/models"
)

type PgxBillingRepository struct {
	pool *pgxpool.Pool
}

// newPgxBillingRepository creates a new repository for progress billing data.
func newPgxBillingRepository(pool *pgxpool.Pool) *PgxBillingRepository {
	return &PgxBillingRepository{pool: pool}
}

// Ensure PgxBillingRepository implements portsrepo.BillingRepositoryFacade
var _ portsrepo.BillingRepositoryFacade = (*PgxBillingRepository)(nil)

// Helper to convert domain.ProgressBilling to models.ProgressBilling for DB
// storage. The continuation sheet, lien waivers and documents are serialized
// into jsonb columns.
func toModelBilling(d *domain.ProgressBilling) (models.ProgressBilling, error) {
	lineItems, err := json.Marshal(d.LineItems())
	if err != nil {
		return models.ProgressBilling{}, fmt.Errorf("failed to marshal line items for billing %s: %w", d.BillingID, err)
	}
	lienWaivers, err := json.Marshal(d.LienWaivers())
	if err != nil {
		return models.ProgressBilling{}, fmt.Errorf("failed to marshal lien waivers for billing %s: %w", d.BillingID, err)
	}
	documents, err := json.Marshal(d.Documents())
	if err != nil {
		return models.ProgressBilling{}, fmt.Errorf("failed to marshal documents for billing %s: %w", d.BillingID, err)
	}

	m := models.ProgressBilling{
		BillingID:            d.BillingID,
		ProjectID:            d.ProjectID,
		ContractID:           d.ContractID,
		ApplicationNumber:    d.ApplicationNumber,
		PeriodTo:             d.PeriodTo,
		Status:               string(d.Status),
		CurrencyCode:         d.Currency(),
		OriginalContractSum:  d.OriginalContractSum.Amount(),
		ChangeOrdersTotal:    d.ChangeOrdersTotal.Amount(),
		PreviousPayments:     d.PreviousPayments.Amount(),
		RetainagePercent:     d.RetainagePercent,
		RetainageAmount:      d.RetainageAmount.Amount(),
		RetainageReleaseType: string(d.RetainageReleaseType),
		SubmittedBy:          d.SubmittedBy,
		SubmittedAt:          d.SubmittedAt,
		ApprovedBy:           d.ApprovedBy,
		ApprovedAt:           d.ApprovedAt,
		RejectedBy:           d.RejectedBy,
		RejectedAt:           d.RejectedAt,
		RejectionReason:      d.RejectionReason,
		PaidAt:               d.PaidAt,
		PaymentReference:     d.PaymentReference,
		LineItems:            lineItems,
		LienWaivers:          lienWaivers,
		Documents:            documents,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if d.RetainageReleased != nil {
		amount := d.RetainageReleased.Amount()
		m.RetainageReleased = &amount
	}
	return m, nil
}

// Helper to convert models.ProgressBilling from DB to domain.ProgressBilling
func toDomainBilling(m models.ProgressBilling) (*domain.ProgressBilling, error) {
	currency := m.CurrencyCode
	originalSum, err := domain.NewMoney(m.OriginalContractSum, currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored contract sum on billing %s: %w", m.BillingID, err)
	}
	changeOrders, err := domain.NewMoney(m.ChangeOrdersTotal, currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored change orders total on billing %s: %w", m.BillingID, err)
	}
	previousPayments, err := domain.NewMoney(m.PreviousPayments, currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored previous payments on billing %s: %w", m.BillingID, err)
	}
	retainageAmount, err := domain.NewMoney(m.RetainageAmount, currency)
	if err != nil {
		return nil, fmt.Errorf("invalid stored retainage amount on billing %s: %w", m.BillingID, err)
	}

	var lineItems []domain.BillingLineItem
	if len(m.LineItems) > 0 {
		if err := json.Unmarshal(m.LineItems, &lineItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal line items for billing %s: %w", m.BillingID, err)
		}
	}
	var lienWaivers []domain.LienWaiver
	if len(m.LienWaivers) > 0 {
		if err := json.Unmarshal(m.LienWaivers, &lienWaivers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lien waivers for billing %s: %w", m.BillingID, err)
		}
	}
	var documents []domain.BillingDocument
	if len(m.Documents) > 0 {
		if err := json.Unmarshal(m.Documents, &documents); err != nil {
			return nil, fmt.Errorf("failed to unmarshal documents for billing %s: %w", m.BillingID, err)
		}
	}

	billing := domain.ProgressBilling{
		BillingID:            m.BillingID,
		ProjectID:            m.ProjectID,
		ContractID:           m.ContractID,
		ApplicationNumber:    m.ApplicationNumber,
		PeriodTo:             m.PeriodTo,
		Status:               domain.BillingStatus(m.Status),
		OriginalContractSum:  originalSum,
		ChangeOrdersTotal:    changeOrders,
		PreviousPayments:     previousPayments,
		RetainagePercent:     m.RetainagePercent,
		RetainageAmount:      retainageAmount,
		RetainageReleaseType: domain.RetainageReleaseType(m.RetainageReleaseType),
		SubmittedBy:          m.SubmittedBy,
		SubmittedAt:          m.SubmittedAt,
		ApprovedBy:           m.ApprovedBy,
		ApprovedAt:           m.ApprovedAt,
		RejectedBy:           m.RejectedBy,
		RejectedAt:           m.RejectedAt,
		RejectionReason:      m.RejectionReason,
		PaidAt:               m.PaidAt,
		PaymentReference:     m.PaymentReference,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.RetainageReleased != nil {
		released, err := domain.NewMoney(*m.RetainageReleased, currency)
		if err != nil {
			return nil, fmt.Errorf("invalid stored retainage released on billing %s: %w", m.BillingID, err)
		}
		billing.RetainageReleased = &released
	}
	return domain.RehydrateProgressBilling(billing, lineItems, lienWaivers, documents), nil
}

// SaveBilling inserts a new payment application.
func (r *PgxBillingRepository) SaveBilling(ctx context.Context, billing *domain.ProgressBilling) error {
	m, err := toModelBilling(billing)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO progress_billings (billing_id, project_id, contract_id, application_number, period_to, status, currency_code, original_contract_sum, change_orders_total, previous_payments, retainage_percent, retainage_amount, retainage_released, retainage_release_type, submitted_by, submitted_at, approved_by, approved_at, rejected_by, rejected_at, rejection_reason, paid_at, payment_reference, line_items, lien_waivers, documents, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30);
	`
	_, err = r.pool.Exec(ctx, query,
		m.BillingID,
		m.ProjectID,
		m.ContractID,
		m.ApplicationNumber,
		m.PeriodTo,
		m.Status,
		m.CurrencyCode,
		m.OriginalContractSum,
		m.ChangeOrdersTotal,
		m.PreviousPayments,
		m.RetainagePercent,
		m.RetainageAmount,
		m.RetainageReleased,
		m.RetainageReleaseType,
		m.SubmittedBy,
		m.SubmittedAt,
		m.ApprovedBy,
		m.ApprovedAt,
		m.RejectedBy,
		m.RejectedAt,
		m.RejectionReason,
		m.PaidAt,
		m.PaymentReference,
		m.LineItems,
		m.LienWaivers,
		m.Documents,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: billing %s or application number %d already exists for project %s",
				apperrors.ErrDuplicate, m.BillingID, m.ApplicationNumber, m.ProjectID)
		}
		return fmt.Errorf("failed to save billing %s: %w", m.BillingID, err)
	}
	return nil
}

// UpdateBilling persists a mutated payment application.
func (r *PgxBillingRepository) UpdateBilling(ctx context.Context, billing *domain.ProgressBilling) error {
	m, err := toModelBilling(billing)
	if err != nil {
		return err
	}
	query := `
		UPDATE progress_billings
		SET status = $1, retainage_released = $2, retainage_release_type = $3, submitted_by = $4, submitted_at = $5, approved_by = $6, approved_at = $7, rejected_by = $8, rejected_at = $9, rejection_reason = $10, paid_at = $11, payment_reference = $12, line_items = $13, lien_waivers = $14, documents = $15, last_updated_at = $16, last_updated_by = $17
		WHERE billing_id = $18;
	`
	tag, err := r.pool.Exec(ctx, query,
		m.Status,
		m.RetainageReleased,
		m.RetainageReleaseType,
		m.SubmittedBy,
		m.SubmittedAt,
		m.ApprovedBy,
		m.ApprovedAt,
		m.RejectedBy,
		m.RejectedAt,
		m.RejectionReason,
		m.PaidAt,
		m.PaymentReference,
		m.LineItems,
		m.LienWaivers,
		m.Documents,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.BillingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update billing %s: %w", m.BillingID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: billing %s", apperrors.ErrNotFound, m.BillingID)
	}
	return nil
}

const billingSelectColumns = `billing_id, project_id, contract_id, application_number, period_to, status, currency_code, original_contract_sum, change_orders_total, previous_payments, retainage_percent, retainage_amount, retainage_released, retainage_release_type, submitted_by, submitted_at, approved_by, approved_at, rejected_by, rejected_at, rejection_reason, paid_at, payment_reference, line_items, lien_waivers, documents, created_at, created_by, last_updated_at, last_updated_by`

// scanBillingRow scans one progress_billings row.
func scanBillingRow(row pgx.Row) (models.ProgressBilling, error) {
	var m models.ProgressBilling
	var releaseType sql.NullString
	err := row.Scan(
		&m.BillingID,
		&m.ProjectID,
		&m.ContractID,
		&m.ApplicationNumber,
		&m.PeriodTo,
		&m.Status,
		&m.CurrencyCode,
		&m.OriginalContractSum,
		&m.ChangeOrdersTotal,
		&m.PreviousPayments,
		&m.RetainagePercent,
		&m.RetainageAmount,
		&m.RetainageReleased,
		&releaseType,
		&m.SubmittedBy,
		&m.SubmittedAt,
		&m.ApprovedBy,
		&m.ApprovedAt,
		&m.RejectedBy,
		&m.RejectedAt,
		&m.RejectionReason,
		&m.PaidAt,
		&m.PaymentReference,
		&m.LineItems,
		&m.LienWaivers,
		&m.Documents,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if releaseType.Valid {
		m.RetainageReleaseType = releaseType.String
	}
	return m, err
}

// FindBillingByID retrieves a payment application by id.
func (r *PgxBillingRepository) FindBillingByID(ctx context.Context, billingID string) (*domain.ProgressBilling, error) {
	query := `SELECT ` + billingSelectColumns + ` FROM progress_billings WHERE billing_id = $1;`
	m, err := scanBillingRow(r.pool.QueryRow(ctx, query, billingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: billing %s", apperrors.ErrNotFound, billingID)
		}
		return nil, fmt.Errorf("failed to find billing %s: %w", billingID, err)
	}
	return toDomainBilling(m)
}

// ListBillingsByProject retrieves all applications for a project ordered by
// application number.
func (r *PgxBillingRepository) ListBillingsByProject(ctx context.Context, projectID string) ([]domain.ProgressBilling, error) {
	query := `SELECT ` + billingSelectColumns + ` FROM progress_billings WHERE project_id = $1 ORDER BY application_number;`
	return r.collectBillings(ctx, query, projectID)
}

// ListBillingsByStatus retrieves all applications in the given status.
func (r *PgxBillingRepository) ListBillingsByStatus(ctx context.Context, status domain.BillingStatus) ([]domain.ProgressBilling, error) {
	query := `SELECT ` + billingSelectColumns + ` FROM progress_billings WHERE status = $1 ORDER BY project_id, application_number;`
	return r.collectBillings(ctx, query, string(status))
}

// collectBillings runs a single-argument list query and maps the rows.
func (r *PgxBillingRepository) collectBillings(ctx context.Context, query string, arg any) ([]domain.ProgressBilling, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query billings: %w", err)
	}
	defer rows.Close()

	billings := []domain.ProgressBilling{}
	for rows.Next() {
		m, err := scanBillingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan billing row: %w", err)
		}
		billing, err := toDomainBilling(m)
		if err != nil {
			return nil, err
		}
		billings = append(billings, *billing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating billing rows: %w", err)
	}
	return billings, nil
}
