package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	portsrepo "github.com/BuildrFin/construction_finance_app/internal/core/ports/repositories"
	portssvc "github.com/BuildrFin/construction_finance_app/internal/core/ports/services"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// billingService manages AIA-style payment applications.
type billingService struct {
	BaseService
	billingRepo portsrepo.BillingRepositoryFacade
}

// NewBillingService creates a new BillingService.
func NewBillingService(billingRepo portsrepo.BillingRepositoryFacade) portssvc.BillingSvcFacade {
	return &billingService{billingRepo: billingRepo}
}

var _ portssvc.BillingSvcFacade = (*billingService)(nil)

// CreateBilling opens a new draft payment application. Application numbers
// must be unique per project.
func (s *billingService) CreateBilling(ctx context.Context, req dto.CreateBillingRequest, creatorUserID string) (*domain.ProgressBilling, error) {
	existing, err := s.billingRepo.ListBillingsByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings for project %s: %w", req.ProjectID, err)
	}
	for _, b := range existing {
		if b.ApplicationNumber == req.ApplicationNumber {
			return nil, fmt.Errorf("%w: application number %d already used on project %s",
				apperrors.ErrDuplicate, req.ApplicationNumber, req.ProjectID)
		}
	}

	originalSum, err := req.OriginalContractSum.ToDomain()
	if err != nil {
		return nil, err
	}
	changeOrders, err := req.ChangeOrdersTotal.ToDomain()
	if err != nil {
		return nil, err
	}
	previous, err := req.PreviousPayments.ToDomain()
	if err != nil {
		return nil, err
	}
	retainage, err := req.RetainageAmount.ToDomain()
	if err != nil {
		return nil, err
	}

	billing, err := domain.NewProgressBilling(uuid.NewString(), req.ProjectID, req.ContractID,
		req.ApplicationNumber, req.PeriodTo, originalSum, changeOrders, previous, retainage, req.RetainagePercent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	billing.CreatedAt = now
	billing.CreatedBy = creatorUserID
	billing.LastUpdatedAt = now
	billing.LastUpdatedBy = creatorUserID

	if err := s.billingRepo.SaveBilling(ctx, billing); err != nil {
		s.LogError(ctx, err, "Failed to save billing", slog.String("project_id", req.ProjectID))
		return nil, fmt.Errorf("failed to save billing: %w", err)
	}

	s.LogInfo(ctx, "Payment application created",
		slog.String("billing_id", billing.BillingID),
		slog.Int("application_number", billing.ApplicationNumber))
	return billing, nil
}

// GetBillingByID retrieves a payment application by its identifier.
func (s *billingService) GetBillingByID(ctx context.Context, billingID string) (*domain.ProgressBilling, error) {
	billing, err := s.billingRepo.FindBillingByID(ctx, billingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find billing %s: %w", billingID, err)
	}
	return billing, nil
}

// ListBillingsByProject retrieves all applications for a project.
func (s *billingService) ListBillingsByProject(ctx context.Context, projectID string) ([]domain.ProgressBilling, error) {
	billings, err := s.billingRepo.ListBillingsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings for project %s: %w", projectID, err)
	}
	return billings, nil
}

// ListBillingsByStatus retrieves applications in the given status.
func (s *billingService) ListBillingsByStatus(ctx context.Context, status domain.BillingStatus) ([]domain.ProgressBilling, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown billing status %q", apperrors.ErrValidation, status)
	}
	billings, err := s.billingRepo.ListBillingsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings by status %s: %w", status, err)
	}
	return billings, nil
}

// mutateBilling loads an application, applies the mutation and persists it.
func (s *billingService) mutateBilling(ctx context.Context, billingID, userID string, mutate func(*domain.ProgressBilling) error) (*domain.ProgressBilling, error) {
	billing, err := s.billingRepo.FindBillingByID(ctx, billingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find billing %s: %w", billingID, err)
	}

	if err := mutate(billing); err != nil {
		return nil, err
	}

	billing.LastUpdatedAt = time.Now()
	billing.LastUpdatedBy = userID

	if err := s.billingRepo.UpdateBilling(ctx, billing); err != nil {
		s.LogError(ctx, err, "Failed to update billing", slog.String("billing_id", billingID))
		return nil, fmt.Errorf("failed to update billing %s: %w", billingID, err)
	}
	return billing, nil
}

// AddBillingLineItem appends a continuation-sheet row to a draft application.
func (s *billingService) AddBillingLineItem(ctx context.Context, billingID string, in dto.BillingLineItemInput, userID string) (*domain.ProgressBilling, error) {
	item, err := in.ToDomain()
	if err != nil {
		return nil, err
	}
	return s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.AddLineItem(item)
	})
}

// RemoveBillingLineItem removes a continuation-sheet row from a draft.
func (s *billingService) RemoveBillingLineItem(ctx context.Context, billingID string, itemNumber string, userID string) (*domain.ProgressBilling, error) {
	return s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.RemoveLineItem(itemNumber)
	})
}

// SubmitBilling moves a draft application into review.
func (s *billingService) SubmitBilling(ctx context.Context, billingID string, userID string) (*domain.ProgressBilling, error) {
	billing, err := s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.Submit(userID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Payment application submitted", slog.String("billing_id", billingID))
	return billing, nil
}

// ApproveBilling approves a submitted application. Unreceived lien waivers
// are logged but do not block approval; payment is where they gate.
func (s *billingService) ApproveBilling(ctx context.Context, billingID string, approverUserID string) (*domain.ProgressBilling, error) {
	billing, err := s.mutateBilling(ctx, billingID, approverUserID, func(b *domain.ProgressBilling) error {
		return b.Approve(approverUserID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	if billing.HasUnreceivedLienWaivers() {
		s.LogInfo(ctx, "Application approved with outstanding lien waivers", slog.String("billing_id", billingID))
	}
	s.LogInfo(ctx, "Payment application approved",
		slog.String("billing_id", billingID),
		slog.String("current_payment_due", billing.CurrentPaymentDue().String()))
	return billing, nil
}

// RejectBilling sends a submitted application back with a reason.
func (s *billingService) RejectBilling(ctx context.Context, billingID string, req dto.RejectBillingRequest, userID string) (*domain.ProgressBilling, error) {
	billing, err := s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.Reject(userID, req.Reason, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Payment application rejected", slog.String("billing_id", billingID))
	return billing, nil
}

// MarkBillingPaid records payment against an approved application. Payment
// is blocked while any attached lien waiver is still outstanding.
func (s *billingService) MarkBillingPaid(ctx context.Context, billingID string, req dto.MarkBillingPaidRequest, userID string) (*domain.ProgressBilling, error) {
	billing, err := s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		if b.HasUnreceivedLienWaivers() {
			return fmt.Errorf("%w: cannot pay application %s with outstanding lien waivers", apperrors.ErrInvalidTransition, billingID)
		}
		return b.MarkAsPaid(req.PaymentReference, time.Now())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Payment application paid",
		slog.String("billing_id", billingID),
		slog.String("payment_reference", req.PaymentReference))
	return billing, nil
}

// AddLienWaiver attaches a lien waiver to an application.
func (s *billingService) AddLienWaiver(ctx context.Context, billingID string, req dto.AddLienWaiverRequest, userID string) (*domain.ProgressBilling, error) {
	amount, err := req.Amount.ToDomain()
	if err != nil {
		return nil, err
	}
	waiver := domain.LienWaiver{
		WaiverID:   uuid.NewString(),
		VendorName: req.VendorName,
		Type:       domain.LienWaiverType(req.Type),
		Amount:     amount,
		Received:   req.Received,
	}
	if req.Received {
		now := time.Now()
		waiver.ReceivedAt = &now
	}
	return s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.AddLienWaiver(waiver)
	})
}

// MarkLienWaiverReceived records receipt of an attached waiver.
func (s *billingService) MarkLienWaiverReceived(ctx context.Context, billingID string, waiverID string, userID string) (*domain.ProgressBilling, error) {
	return s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.MarkLienWaiverReceived(waiverID, time.Now())
	})
}

// AddBillingDocument attaches a supporting document to a draft application.
func (s *billingService) AddBillingDocument(ctx context.Context, billingID string, req dto.AddBillingDocumentRequest, userID string) (*domain.ProgressBilling, error) {
	doc := domain.BillingDocument{
		DocumentID: uuid.NewString(),
		Name:       req.Name,
		URL:        req.URL,
		UploadedAt: time.Now(),
	}
	return s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.AddDocument(doc)
	})
}

// RemoveBillingDocument removes a supporting document from a draft.
func (s *billingService) RemoveBillingDocument(ctx context.Context, billingID string, documentID string, userID string) (*domain.ProgressBilling, error) {
	return s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.RemoveDocument(documentID)
	})
}

// ReleaseRetainage records a partial or full retainage release.
func (s *billingService) ReleaseRetainage(ctx context.Context, billingID string, req dto.ReleaseRetainageRequest, userID string) (*domain.ProgressBilling, error) {
	amount, err := req.Amount.ToDomain()
	if err != nil {
		return nil, err
	}
	billing, err := s.mutateBilling(ctx, billingID, userID, func(b *domain.ProgressBilling) error {
		return b.ReleaseRetainage(amount, domain.RetainageReleaseType(req.Type))
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Retainage released",
		slog.String("billing_id", billingID),
		slog.String("amount", amount.String()),
		slog.String("release_type", req.Type))
	return billing, nil
}
