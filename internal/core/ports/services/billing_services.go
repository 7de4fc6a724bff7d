package services

import (
	"context"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
	"github.com/BuildrFin/construction_finance_app/internal/dto"
)

// BillingReaderSvc defines read operations for progress billing applications
type BillingReaderSvc interface {
	// GetBillingByID retrieves a specific payment application by its identifier.
	GetBillingByID(ctx context.Context, billingID string) (*domain.ProgressBilling, error)

	// ListBillingsByProject retrieves all applications for a project.
	ListBillingsByProject(ctx context.Context, projectID string) ([]domain.ProgressBilling, error)

	// ListBillingsByStatus retrieves applications in a given status.
	ListBillingsByStatus(ctx context.Context, status domain.BillingStatus) ([]domain.ProgressBilling, error)
}

// BillingWriterSvc defines write operations for progress billing applications
type BillingWriterSvc interface {
	// CreateBilling persists a new draft payment application.
	CreateBilling(ctx context.Context, req dto.CreateBillingRequest, creatorUserID string) (*domain.ProgressBilling, error)

	// AddBillingLineItem appends a schedule-of-values line to a draft application.
	AddBillingLineItem(ctx context.Context, billingID string, item dto.BillingLineItemInput, userID string) (*domain.ProgressBilling, error)

	// RemoveBillingLineItem removes a line from a draft application.
	RemoveBillingLineItem(ctx context.Context, billingID string, itemID string, userID string) (*domain.ProgressBilling, error)

	// SubmitBilling moves a draft application into review.
	SubmitBilling(ctx context.Context, billingID string, userID string) (*domain.ProgressBilling, error)

	// ApproveBilling approves a submitted application.
	ApproveBilling(ctx context.Context, billingID string, approverUserID string) (*domain.ProgressBilling, error)

	// RejectBilling sends a submitted application back with a reason.
	RejectBilling(ctx context.Context, billingID string, req dto.RejectBillingRequest, userID string) (*domain.ProgressBilling, error)

	// MarkBillingPaid records payment against an approved application.
	MarkBillingPaid(ctx context.Context, billingID string, req dto.MarkBillingPaidRequest, userID string) (*domain.ProgressBilling, error)

	// AddLienWaiver attaches a lien waiver to an application.
	AddLienWaiver(ctx context.Context, billingID string, req dto.AddLienWaiverRequest, userID string) (*domain.ProgressBilling, error)

	// MarkLienWaiverReceived records receipt of an attached waiver.
	MarkLienWaiverReceived(ctx context.Context, billingID string, waiverID string, userID string) (*domain.ProgressBilling, error)

	// AddBillingDocument attaches a supporting document to a draft application.
	AddBillingDocument(ctx context.Context, billingID string, req dto.AddBillingDocumentRequest, userID string) (*domain.ProgressBilling, error)

	// RemoveBillingDocument removes a supporting document from a draft application.
	RemoveBillingDocument(ctx context.Context, billingID string, documentID string, userID string) (*domain.ProgressBilling, error)

	// ReleaseRetainage records a partial or full retainage release.
	ReleaseRetainage(ctx context.Context, billingID string, req dto.ReleaseRetainageRequest, userID string) (*domain.ProgressBilling, error)
}

// BillingSvcFacade combines all billing-related service interfaces
type BillingSvcFacade interface {
	BillingReaderSvc
	BillingWriterSvc
}
