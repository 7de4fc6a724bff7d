package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
)

// BillingStatus indicates the lifecycle state of a payment application.
// Transitions are one-directional: DRAFT -> SUBMITTED -> {APPROVED, REJECTED};
// APPROVED -> PAID. VOID is a terminal administrative override with no
// transition operation in this core.
type BillingStatus string

const (
	BillingDraft     BillingStatus = "DRAFT"
	BillingSubmitted BillingStatus = "SUBMITTED"
	BillingApproved  BillingStatus = "APPROVED"
	BillingRejected  BillingStatus = "REJECTED"
	BillingPaid      BillingStatus = "PAID"
	BillingVoid      BillingStatus = "VOID"
)

// IsValid reports whether the status is a known enum value.
func (s BillingStatus) IsValid() bool {
	switch s {
	case BillingDraft, BillingSubmitted, BillingApproved, BillingRejected, BillingPaid, BillingVoid:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s BillingStatus) IsTerminal() bool {
	return s == BillingPaid || s == BillingRejected || s == BillingVoid
}

// LienWaiverType is the kind of lien waiver document on file.
type LienWaiverType string

const (
	WaiverConditional   LienWaiverType = "CONDITIONAL"
	WaiverUnconditional LienWaiverType = "UNCONDITIONAL"
	WaiverPartial       LienWaiverType = "PARTIAL"
	WaiverFinal         LienWaiverType = "FINAL"
)

// IsValid reports whether the waiver type is a known enum value.
func (t LienWaiverType) IsValid() bool {
	switch t {
	case WaiverConditional, WaiverUnconditional, WaiverPartial, WaiverFinal:
		return true
	}
	return false
}

// RetainageReleaseType is how withheld retainage is being released.
type RetainageReleaseType string

const (
	ReleasePartial RetainageReleaseType = "PARTIAL"
	ReleaseFull    RetainageReleaseType = "FULL"
)

// IsValid reports whether the release type is a known enum value.
func (t RetainageReleaseType) IsValid() bool {
	return t == ReleasePartial || t == ReleaseFull
}

// BillingLineItem is one continuation-sheet (G703) row.
type BillingLineItem struct {
	ItemNumber          string `json:"itemNumber"`
	Description         string `json:"description"`
	ScheduledValue      Money  `json:"scheduledValue"`
	WorkCompletedPrior  Money  `json:"workCompletedPrior"`
	WorkCompletedPeriod Money  `json:"workCompletedPeriod"`
	StoredMaterials     Money  `json:"storedMaterials"`
}

// TotalCompletedAndStored sums prior work, this period's work and stored
// materials for the row.
func (li BillingLineItem) TotalCompletedAndStored() Money {
	total := li.WorkCompletedPrior.Amount().
		Add(li.WorkCompletedPeriod.Amount()).
		Add(li.StoredMaterials.Amount())
	return Money{amount: total, currency: li.ScheduledValue.Currency()}
}

// NewBillingLineItem validates the single-currency rule across the row.
func NewBillingLineItem(itemNumber, description string, scheduledValue, workPrior, workPeriod, storedMaterials Money) (BillingLineItem, error) {
	if strings.TrimSpace(itemNumber) == "" {
		return BillingLineItem{}, fmt.Errorf("%w: line item number is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return BillingLineItem{}, fmt.Errorf("%w: line item description is required", apperrors.ErrValidation)
	}
	if !sameCurrencyAll(scheduledValue.Currency(), workPrior, workPeriod, storedMaterials) {
		return BillingLineItem{}, fmt.Errorf("%w: all line item amounts must share one currency", apperrors.ErrCurrencyMismatch)
	}
	return BillingLineItem{
		ItemNumber:          strings.TrimSpace(itemNumber),
		Description:         strings.TrimSpace(description),
		ScheduledValue:      scheduledValue,
		WorkCompletedPrior:  workPrior,
		WorkCompletedPeriod: workPeriod,
		StoredMaterials:     storedMaterials,
	}, nil
}

// LienWaiver is a waiver document expected from or received for a vendor.
type LienWaiver struct {
	WaiverID   string         `json:"waiverID"`
	VendorName string         `json:"vendorName"`
	Type       LienWaiverType `json:"type"`
	Amount     Money          `json:"amount"`
	Received   bool           `json:"received"`
	ReceivedAt *time.Time     `json:"receivedAt,omitempty"`
}

// BillingDocument is a supporting attachment reference.
type BillingDocument struct {
	DocumentID string    `json:"documentID"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ProgressBilling models one AIA G702/G703-style payment application.
// All money fields share one currency, fixed at creation.
type ProgressBilling struct {
	BillingID            string               `json:"billingID"`
	ProjectID            string               `json:"projectID"`
	ContractID           string               `json:"contractID"`
	ApplicationNumber    int                  `json:"applicationNumber"`
	PeriodTo             time.Time            `json:"periodTo"`
	Status               BillingStatus        `json:"status"`
	OriginalContractSum  Money                `json:"originalContractSum"`
	ChangeOrdersTotal    Money                `json:"changeOrdersTotal"`
	PreviousPayments     Money                `json:"previousPayments"`
	RetainagePercent     decimal.Decimal      `json:"retainagePercent"`
	RetainageAmount      Money                `json:"retainageAmount"`
	RetainageReleased    *Money               `json:"retainageReleased,omitempty"`
	RetainageReleaseType RetainageReleaseType `json:"retainageReleaseType,omitempty"`
	SubmittedBy          string               `json:"submittedBy"`
	SubmittedAt          *time.Time           `json:"submittedAt,omitempty"`
	ApprovedBy           string               `json:"approvedBy"`
	ApprovedAt           *time.Time           `json:"approvedAt,omitempty"`
	RejectedBy           string               `json:"rejectedBy"`
	RejectedAt           *time.Time           `json:"rejectedAt,omitempty"`
	RejectionReason      string               `json:"rejectionReason"`
	PaidAt               *time.Time           `json:"paidAt,omitempty"`
	PaymentReference     string               `json:"paymentReference"`
	lineItems            []BillingLineItem
	lienWaivers          []LienWaiver
	documents            []BillingDocument
	AuditFields
}

// NewProgressBilling creates a draft application. Contract sums, previous
// payments and retainage must all share one currency.
func NewProgressBilling(billingID, projectID, contractID string, applicationNumber int, periodTo time.Time, originalContractSum, changeOrdersTotal, previousPayments, retainageAmount Money, retainagePercent decimal.Decimal) (*ProgressBilling, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("%w: project ID is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(contractID) == "" {
		return nil, fmt.Errorf("%w: contract ID is required", apperrors.ErrValidation)
	}
	if applicationNumber < 1 {
		return nil, fmt.Errorf("%w: application number must be at least 1, got %d", apperrors.ErrValidation, applicationNumber)
	}
	if retainagePercent.IsNegative() || retainagePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: retainage percent must be between 0 and 100", apperrors.ErrValidation)
	}
	if !sameCurrencyAll(originalContractSum.Currency(), changeOrdersTotal, previousPayments, retainageAmount) {
		return nil, fmt.Errorf("%w: all billing amounts must share one currency", apperrors.ErrCurrencyMismatch)
	}
	return &ProgressBilling{
		BillingID:           billingID,
		ProjectID:           projectID,
		ContractID:          contractID,
		ApplicationNumber:   applicationNumber,
		PeriodTo:            periodTo,
		Status:              BillingDraft,
		OriginalContractSum: originalContractSum,
		ChangeOrdersTotal:   changeOrdersTotal,
		PreviousPayments:    previousPayments,
		RetainagePercent:    retainagePercent,
		RetainageAmount:     retainageAmount,
	}, nil
}

// RehydrateProgressBilling reconstructs a billing from persisted state.
// Repository use only.
func RehydrateProgressBilling(b ProgressBilling, lineItems []BillingLineItem, lienWaivers []LienWaiver, documents []BillingDocument) *ProgressBilling {
	b.lineItems = lineItems
	b.lienWaivers = lienWaivers
	b.documents = documents
	return &b
}

// Currency is the single currency shared by every money field.
func (b *ProgressBilling) Currency() string { return b.OriginalContractSum.Currency() }

// LineItems returns a copy of the continuation sheet.
func (b *ProgressBilling) LineItems() []BillingLineItem {
	out := make([]BillingLineItem, len(b.lineItems))
	copy(out, b.lineItems)
	return out
}

// LienWaivers returns a copy of the waiver collection.
func (b *ProgressBilling) LienWaivers() []LienWaiver {
	out := make([]LienWaiver, len(b.lienWaivers))
	copy(out, b.lienWaivers)
	return out
}

// Documents returns a copy of the attachment references.
func (b *ProgressBilling) Documents() []BillingDocument {
	out := make([]BillingDocument, len(b.documents))
	copy(out, b.documents)
	return out
}

// Submit moves a draft application with at least one line item to SUBMITTED.
func (b *ProgressBilling) Submit(submittedBy string, now time.Time) error {
	if b.Status != BillingDraft {
		return fmt.Errorf("%w: only draft applications can be submitted, status is %s", apperrors.ErrInvalidTransition, b.Status)
	}
	if len(b.lineItems) == 0 {
		return fmt.Errorf("%w: cannot submit an application without line items", apperrors.ErrValidation)
	}
	if strings.TrimSpace(submittedBy) == "" {
		return fmt.Errorf("%w: submitter is required", apperrors.ErrValidation)
	}
	b.Status = BillingSubmitted
	b.SubmittedBy = submittedBy
	b.SubmittedAt = &now
	return nil
}

// Approve moves a submitted application to APPROVED.
func (b *ProgressBilling) Approve(approvedBy string, now time.Time) error {
	if b.Status != BillingSubmitted {
		return fmt.Errorf("%w: only submitted applications can be approved, status is %s", apperrors.ErrInvalidTransition, b.Status)
	}
	if strings.TrimSpace(approvedBy) == "" {
		return fmt.Errorf("%w: approver is required", apperrors.ErrValidation)
	}
	b.Status = BillingApproved
	b.ApprovedBy = approvedBy
	b.ApprovedAt = &now
	return nil
}

// Reject moves a submitted application to REJECTED with a reason of at
// least 10 characters.
func (b *ProgressBilling) Reject(rejectedBy, reason string, now time.Time) error {
	if b.Status != BillingSubmitted {
		return fmt.Errorf("%w: only submitted applications can be rejected, status is %s", apperrors.ErrInvalidTransition, b.Status)
	}
	if utf8.RuneCountInString(strings.TrimSpace(reason)) < 10 {
		return fmt.Errorf("%w: rejection reason must be at least 10 characters", apperrors.ErrValidation)
	}
	b.Status = BillingRejected
	b.RejectedBy = rejectedBy
	b.RejectedAt = &now
	b.RejectionReason = strings.TrimSpace(reason)
	return nil
}

// MarkAsPaid moves an approved application to PAID, recording the payment
// reference (minimum 3 characters).
func (b *ProgressBilling) MarkAsPaid(paymentReference string, now time.Time) error {
	if b.Status != BillingApproved {
		return fmt.Errorf("%w: only approved applications can be marked paid, status is %s", apperrors.ErrInvalidTransition, b.Status)
	}
	if utf8.RuneCountInString(strings.TrimSpace(paymentReference)) < 3 {
		return fmt.Errorf("%w: payment reference must be at least 3 characters", apperrors.ErrValidation)
	}
	b.Status = BillingPaid
	b.PaidAt = &now
	b.PaymentReference = strings.TrimSpace(paymentReference)
	return nil
}

// AddLineItem appends a continuation-sheet row; only drafts are mutable.
func (b *ProgressBilling) AddLineItem(item BillingLineItem) error {
	if b.Status != BillingDraft {
		return fmt.Errorf("%w: line items can only change while the application is draft", apperrors.ErrInvalidTransition)
	}
	if item.ScheduledValue.Currency() != b.Currency() {
		return fmt.Errorf("%w: line item currency %s does not match application currency %s",
			apperrors.ErrCurrencyMismatch, item.ScheduledValue.Currency(), b.Currency())
	}
	for _, existing := range b.lineItems {
		if existing.ItemNumber == item.ItemNumber {
			return fmt.Errorf("%w: line item %s already exists", apperrors.ErrDuplicate, item.ItemNumber)
		}
	}
	b.lineItems = append(b.lineItems, item)
	return nil
}

// RemoveLineItem deletes a continuation-sheet row by item number.
func (b *ProgressBilling) RemoveLineItem(itemNumber string) error {
	if b.Status != BillingDraft {
		return fmt.Errorf("%w: line items can only change while the application is draft", apperrors.ErrInvalidTransition)
	}
	for i, item := range b.lineItems {
		if item.ItemNumber == itemNumber {
			b.lineItems = append(b.lineItems[:i], b.lineItems[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: line item %s", apperrors.ErrNotFound, itemNumber)
}

// AddDocument attaches a supporting document; only drafts are mutable.
func (b *ProgressBilling) AddDocument(doc BillingDocument) error {
	if b.Status != BillingDraft {
		return fmt.Errorf("%w: documents can only change while the application is draft", apperrors.ErrInvalidTransition)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return fmt.Errorf("%w: document name is required", apperrors.ErrValidation)
	}
	b.documents = append(b.documents, doc)
	return nil
}

// RemoveDocument detaches a supporting document by id.
func (b *ProgressBilling) RemoveDocument(documentID string) error {
	if b.Status != BillingDraft {
		return fmt.Errorf("%w: documents can only change while the application is draft", apperrors.ErrInvalidTransition)
	}
	for i, doc := range b.documents {
		if doc.DocumentID == documentID {
			b.documents = append(b.documents[:i], b.documents[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
}

// AddLienWaiver records a waiver. Waivers arrive at any lifecycle stage, but
// their amount currency must match the application's currency.
func (b *ProgressBilling) AddLienWaiver(waiver LienWaiver) error {
	if !waiver.Type.IsValid() {
		return fmt.Errorf("%w: unknown lien waiver type %q", apperrors.ErrValidation, waiver.Type)
	}
	if waiver.Amount.Currency() != b.Currency() {
		return fmt.Errorf("%w: lien waiver currency %s does not match application currency %s",
			apperrors.ErrCurrencyMismatch, waiver.Amount.Currency(), b.Currency())
	}
	if strings.TrimSpace(waiver.VendorName) == "" {
		return fmt.Errorf("%w: lien waiver vendor name is required", apperrors.ErrValidation)
	}
	b.lienWaivers = append(b.lienWaivers, waiver)
	return nil
}

// MarkLienWaiverReceived flags the waiver with the given id as received.
func (b *ProgressBilling) MarkLienWaiverReceived(waiverID string, now time.Time) error {
	for i, w := range b.lienWaivers {
		if w.WaiverID == waiverID {
			b.lienWaivers[i].Received = true
			b.lienWaivers[i].ReceivedAt = &now
			return nil
		}
	}
	return fmt.Errorf("%w: lien waiver %s", apperrors.ErrNotFound, waiverID)
}

// ReleaseRetainage records a retainage release. The amount must match the
// retainage currency and cannot exceed the retainage held. Repeated calls
// replace the previous release (last write wins); the retainage balance
// itself is not decremented here, that adjustment is a caller policy.
func (b *ProgressBilling) ReleaseRetainage(amount Money, releaseType RetainageReleaseType) error {
	if !releaseType.IsValid() {
		return fmt.Errorf("%w: unknown retainage release type %q", apperrors.ErrValidation, releaseType)
	}
	if amount.Currency() != b.RetainageAmount.Currency() {
		return fmt.Errorf("%w: release currency %s does not match retainage currency %s",
			apperrors.ErrCurrencyMismatch, amount.Currency(), b.RetainageAmount.Currency())
	}
	if amount.Amount().GreaterThan(b.RetainageAmount.Amount()) {
		return fmt.Errorf("%w: release %s exceeds retainage held %s", apperrors.ErrValidation, amount, b.RetainageAmount)
	}
	b.RetainageReleased = &amount
	b.RetainageReleaseType = releaseType
	return nil
}

// ContractSumToDate is the original contract sum plus net change orders.
func (b *ProgressBilling) ContractSumToDate() Money {
	return Money{
		amount:   b.OriginalContractSum.Amount().Add(b.ChangeOrdersTotal.Amount()),
		currency: b.Currency(),
	}
}

// TotalCompletedAndStored sums every line item's completed and stored value.
func (b *ProgressBilling) TotalCompletedAndStored() Money {
	sum := decimal.Zero
	for _, item := range b.lineItems {
		sum = sum.Add(item.TotalCompletedAndStored().Amount())
	}
	return Money{amount: sum, currency: b.Currency()}
}

// TotalEarnedLessRetainage is completed and stored value minus retainage held.
func (b *ProgressBilling) TotalEarnedLessRetainage() Money {
	return Money{
		amount:   b.TotalCompletedAndStored().Amount().Sub(b.RetainageAmount.Amount()),
		currency: b.Currency(),
	}
}

// CurrentPaymentDue is earned-less-retainage minus previous payments.
func (b *ProgressBilling) CurrentPaymentDue() Money {
	return Money{
		amount:   b.TotalEarnedLessRetainage().Amount().Sub(b.PreviousPayments.Amount()),
		currency: b.Currency(),
	}
}

// BalanceToFinish is the contract sum to date minus earned-less-retainage.
func (b *ProgressBilling) BalanceToFinish() Money {
	return Money{
		amount:   b.ContractSumToDate().Amount().Sub(b.TotalEarnedLessRetainage().Amount()),
		currency: b.Currency(),
	}
}

// PercentComplete is total completed and stored over the contract sum to
// date, as a percentage. Zero when the contract sum is zero.
func (b *ProgressBilling) PercentComplete() decimal.Decimal {
	contractSum := b.ContractSumToDate().Amount()
	if contractSum.IsZero() {
		return decimal.Zero
	}
	return b.TotalCompletedAndStored().Amount().Div(contractSum).Mul(decimal.NewFromInt(100))
}

// HasUnreceivedLienWaivers reports whether any waiver is still outstanding.
func (b *ProgressBilling) HasUnreceivedLienWaivers() bool {
	for _, w := range b.lienWaivers {
		if !w.Received {
			return true
		}
	}
	return false
}

// ReceivedLienWaiverAmount sums only waivers flagged received.
func (b *ProgressBilling) ReceivedLienWaiverAmount() Money {
	sum := decimal.Zero
	for _, w := range b.lienWaivers {
		if w.Received {
			sum = sum.Add(w.Amount.Amount())
		}
	}
	return Money{amount: sum, currency: b.Currency()}
}
