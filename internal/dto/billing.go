package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

// CreateBillingRequest defines the data needed to open a payment application.
type CreateBillingRequest struct {
	ProjectID           string          `json:"projectID" binding:"required"`
	ContractID          string          `json:"contractID" binding:"required"`
	ApplicationNumber   int             `json:"applicationNumber" binding:"required,min=1"`
	PeriodTo            time.Time       `json:"periodTo" binding:"required"`
	OriginalContractSum MoneyInput      `json:"originalContractSum" binding:"required"`
	ChangeOrdersTotal   MoneyInput      `json:"changeOrdersTotal" binding:"required"`
	PreviousPayments    MoneyInput      `json:"previousPayments" binding:"required"`
	RetainageAmount     MoneyInput      `json:"retainageAmount" binding:"required"`
	RetainagePercent    decimal.Decimal `json:"retainagePercent"`
}

// BillingLineItemInput defines one continuation-sheet row.
type BillingLineItemInput struct {
	ItemNumber          string     `json:"itemNumber" binding:"required"`
	Description         string     `json:"description" binding:"required"`
	ScheduledValue      MoneyInput `json:"scheduledValue" binding:"required"`
	WorkCompletedPrior  MoneyInput `json:"workCompletedPrior" binding:"required"`
	WorkCompletedPeriod MoneyInput `json:"workCompletedPeriod" binding:"required"`
	StoredMaterials     MoneyInput `json:"storedMaterials" binding:"required"`
}

// ToDomain builds the validated line item.
func (in BillingLineItemInput) ToDomain() (domain.BillingLineItem, error) {
	scheduled, err := in.ScheduledValue.ToDomain()
	if err != nil {
		return domain.BillingLineItem{}, err
	}
	prior, err := in.WorkCompletedPrior.ToDomain()
	if err != nil {
		return domain.BillingLineItem{}, err
	}
	period, err := in.WorkCompletedPeriod.ToDomain()
	if err != nil {
		return domain.BillingLineItem{}, err
	}
	stored, err := in.StoredMaterials.ToDomain()
	if err != nil {
		return domain.BillingLineItem{}, err
	}
	return domain.NewBillingLineItem(in.ItemNumber, in.Description, scheduled, prior, period, stored)
}

// AddLienWaiverRequest records a lien waiver against an application.
type AddLienWaiverRequest struct {
	VendorName string     `json:"vendorName" binding:"required"`
	Type       string     `json:"type" binding:"required,oneof=CONDITIONAL UNCONDITIONAL PARTIAL FINAL"`
	Amount     MoneyInput `json:"amount" binding:"required"`
	Received   bool       `json:"received"`
}

// AddBillingDocumentRequest attaches a supporting document.
type AddBillingDocumentRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}

// RejectBillingRequest carries the rejection reason.
type RejectBillingRequest struct {
	Reason string `json:"reason" binding:"required,min=10"`
}

// MarkBillingPaidRequest carries the payment reference.
type MarkBillingPaidRequest struct {
	PaymentReference string `json:"paymentReference" binding:"required,min=3"`
}

// ReleaseRetainageRequest releases held retainage.
type ReleaseRetainageRequest struct {
	Amount MoneyInput `json:"amount" binding:"required"`
	Type   string     `json:"type" binding:"required,oneof=PARTIAL FULL"`
}

// BillingLineItemResponse mirrors a continuation-sheet row.
type BillingLineItemResponse struct {
	ItemNumber              string        `json:"itemNumber"`
	Description             string        `json:"description"`
	ScheduledValue          MoneyResponse `json:"scheduledValue"`
	WorkCompletedPrior      MoneyResponse `json:"workCompletedPrior"`
	WorkCompletedPeriod     MoneyResponse `json:"workCompletedPeriod"`
	StoredMaterials         MoneyResponse `json:"storedMaterials"`
	TotalCompletedAndStored MoneyResponse `json:"totalCompletedAndStored"`
}

// LienWaiverResponse mirrors a lien waiver.
type LienWaiverResponse struct {
	WaiverID   string        `json:"waiverID"`
	VendorName string        `json:"vendorName"`
	Type       string        `json:"type"`
	Amount     MoneyResponse `json:"amount"`
	Received   bool          `json:"received"`
	ReceivedAt *time.Time    `json:"receivedAt,omitempty"`
}

// BillingDocumentResponse mirrors an attached document.
type BillingDocumentResponse struct {
	DocumentID string    `json:"documentID"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// BillingResponse defines the data returned for a payment application,
// including the computed G702 sums.
type BillingResponse struct {
	BillingID                string                    `json:"billingID"`
	ProjectID                string                    `json:"projectID"`
	ContractID               string                    `json:"contractID"`
	ApplicationNumber        int                       `json:"applicationNumber"`
	PeriodTo                 time.Time                 `json:"periodTo"`
	Status                   string                    `json:"status"`
	OriginalContractSum      MoneyResponse             `json:"originalContractSum"`
	ChangeOrdersTotal        MoneyResponse             `json:"changeOrdersTotal"`
	ContractSumToDate        MoneyResponse             `json:"contractSumToDate"`
	TotalCompletedAndStored  MoneyResponse             `json:"totalCompletedAndStored"`
	RetainagePercent         decimal.Decimal           `json:"retainagePercent"`
	RetainageAmount          MoneyResponse             `json:"retainageAmount"`
	RetainageReleased        *MoneyResponse            `json:"retainageReleased,omitempty"`
	RetainageReleaseType     string                    `json:"retainageReleaseType,omitempty"`
	TotalEarnedLessRetainage MoneyResponse             `json:"totalEarnedLessRetainage"`
	PreviousPayments         MoneyResponse             `json:"previousPayments"`
	CurrentPaymentDue        MoneyResponse             `json:"currentPaymentDue"`
	BalanceToFinish          MoneyResponse             `json:"balanceToFinish"`
	PercentComplete          decimal.Decimal           `json:"percentComplete"`
	HasUnreceivedLienWaivers bool                      `json:"hasUnreceivedLienWaivers"`
	ReceivedLienWaiverAmount MoneyResponse             `json:"receivedLienWaiverAmount"`
	LineItems                []BillingLineItemResponse `json:"lineItems"`
	LienWaivers              []LienWaiverResponse      `json:"lienWaivers"`
	Documents                []BillingDocumentResponse `json:"documents"`
	SubmittedBy              string                    `json:"submittedBy,omitempty"`
	SubmittedAt              *time.Time                `json:"submittedAt,omitempty"`
	ApprovedBy               string                    `json:"approvedBy,omitempty"`
	ApprovedAt               *time.Time                `json:"approvedAt,omitempty"`
	RejectedBy               string                    `json:"rejectedBy,omitempty"`
	RejectedAt               *time.Time                `json:"rejectedAt,omitempty"`
	RejectionReason          string                    `json:"rejectionReason,omitempty"`
	PaidAt                   *time.Time                `json:"paidAt,omitempty"`
	PaymentReference         string                    `json:"paymentReference,omitempty"`
}

// ToBillingResponse converts a domain billing to its response shape.
func ToBillingResponse(b *domain.ProgressBilling) BillingResponse {
	items := b.LineItems()
	itemResponses := make([]BillingLineItemResponse, len(items))
	for i, item := range items {
		itemResponses[i] = BillingLineItemResponse{
			ItemNumber:              item.ItemNumber,
			Description:             item.Description,
			ScheduledValue:          ToMoneyResponse(item.ScheduledValue),
			WorkCompletedPrior:      ToMoneyResponse(item.WorkCompletedPrior),
			WorkCompletedPeriod:     ToMoneyResponse(item.WorkCompletedPeriod),
			StoredMaterials:         ToMoneyResponse(item.StoredMaterials),
			TotalCompletedAndStored: ToMoneyResponse(item.TotalCompletedAndStored()),
		}
	}
	waivers := b.LienWaivers()
	waiverResponses := make([]LienWaiverResponse, len(waivers))
	for i, w := range waivers {
		waiverResponses[i] = LienWaiverResponse{
			WaiverID:   w.WaiverID,
			VendorName: w.VendorName,
			Type:       string(w.Type),
			Amount:     ToMoneyResponse(w.Amount),
			Received:   w.Received,
			ReceivedAt: w.ReceivedAt,
		}
	}
	docs := b.Documents()
	docResponses := make([]BillingDocumentResponse, len(docs))
	for i, d := range docs {
		docResponses[i] = BillingDocumentResponse{
			DocumentID: d.DocumentID,
			Name:       d.Name,
			URL:        d.URL,
			UploadedAt: d.UploadedAt,
		}
	}
	return BillingResponse{
		BillingID:                b.BillingID,
		ProjectID:                b.ProjectID,
		ContractID:               b.ContractID,
		ApplicationNumber:        b.ApplicationNumber,
		PeriodTo:                 b.PeriodTo,
		Status:                   string(b.Status),
		OriginalContractSum:      ToMoneyResponse(b.OriginalContractSum),
		ChangeOrdersTotal:        ToMoneyResponse(b.ChangeOrdersTotal),
		ContractSumToDate:        ToMoneyResponse(b.ContractSumToDate()),
		TotalCompletedAndStored:  ToMoneyResponse(b.TotalCompletedAndStored()),
		RetainagePercent:         b.RetainagePercent,
		RetainageAmount:          ToMoneyResponse(b.RetainageAmount),
		RetainageReleased:        ToMoneyResponsePtr(b.RetainageReleased),
		RetainageReleaseType:     string(b.RetainageReleaseType),
		TotalEarnedLessRetainage: ToMoneyResponse(b.TotalEarnedLessRetainage()),
		PreviousPayments:         ToMoneyResponse(b.PreviousPayments),
		CurrentPaymentDue:        ToMoneyResponse(b.CurrentPaymentDue()),
		BalanceToFinish:          ToMoneyResponse(b.BalanceToFinish()),
		PercentComplete:          b.PercentComplete(),
		HasUnreceivedLienWaivers: b.HasUnreceivedLienWaivers(),
		ReceivedLienWaiverAmount: ToMoneyResponse(b.ReceivedLienWaiverAmount()),
		LineItems:                itemResponses,
		LienWaivers:              waiverResponses,
		Documents:                docResponses,
		SubmittedBy:              b.SubmittedBy,
		SubmittedAt:              b.SubmittedAt,
		ApprovedBy:               b.ApprovedBy,
		ApprovedAt:               b.ApprovedAt,
		RejectedBy:               b.RejectedBy,
		RejectedAt:               b.RejectedAt,
		RejectionReason:          b.RejectionReason,
		PaidAt:                   b.PaidAt,
		PaymentReference:         b.PaymentReference,
	}
}

// ToListBillingResponse converts a slice of billings.
func ToListBillingResponse(billings []domain.ProgressBilling) []BillingResponse {
	res := make([]BillingResponse, len(billings))
	for i := range billings {
		res[i] = ToBillingResponse(&billings[i])
	}
	return res
}
