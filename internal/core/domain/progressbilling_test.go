package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuildrFin/construction_finance_app/internal/apperrors"
	"github.com/BuildrFin/construction_finance_app/internal/core/domain"
)

var billingNow = time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC)

func testBilling(t *testing.T) *domain.ProgressBilling {
	t.Helper()
	billing, err := domain.NewProgressBilling(
		"billing-1", "project-1", "contract-1", 3,
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		usd(1000000), usd(50000), usd(200000), usd(30000),
		decimal.NewFromInt(10),
	)
	require.NoError(t, err)
	return billing
}

func testLineItem(t *testing.T, itemNumber string, scheduled, prior, period, stored domain.Money) domain.BillingLineItem {
	t.Helper()
	item, err := domain.NewBillingLineItem(itemNumber, "Structural steel", scheduled, prior, period, stored)
	require.NoError(t, err)
	return item
}

func TestNewProgressBilling_Validation(t *testing.T) {
	periodTo := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewProgressBilling("b", "", "c", 1, periodTo, usd(100), usd(0), usd(0), usd(0), decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "missing project")

	_, err = domain.NewProgressBilling("b", "p", "c", 0, periodTo, usd(100), usd(0), usd(0), usd(0), decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "application number below 1")

	_, err = domain.NewProgressBilling("b", "p", "c", 1, periodTo, usd(100), usd(0), usd(0), usd(0), decimal.NewFromInt(101))
	assert.ErrorIs(t, err, apperrors.ErrValidation, "retainage percent out of range")

	_, err = domain.NewProgressBilling("b", "p", "c", 1, periodTo, usd(100), eur(0), usd(0), usd(0), decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch, "mixed contract sums")

	billing, err := domain.NewProgressBilling("b", "p", "c", 1, periodTo, usd(100), usd(0), usd(0), usd(0), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, domain.BillingDraft, billing.Status)
}

func TestProgressBilling_SubmitGuards(t *testing.T) {
	t.Run("submit without line items fails", func(t *testing.T) {
		billing := testBilling(t)
		err := billing.Submit("pm-jane", billingNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Equal(t, domain.BillingDraft, billing.Status, "failed submit must not mutate")
	})

	t.Run("submit from draft with line items", func(t *testing.T) {
		billing := testBilling(t)
		require.NoError(t, billing.AddLineItem(testLineItem(t, "1", usd(500000), usd(100000), usd(50000), usd(10000))))
		require.NoError(t, billing.Submit("pm-jane", billingNow))
		assert.Equal(t, domain.BillingSubmitted, billing.Status)
		assert.Equal(t, "pm-jane", billing.SubmittedBy)
		require.NotNil(t, billing.SubmittedAt)
	})

	t.Run("second submit fails", func(t *testing.T) {
		billing := testBilling(t)
		require.NoError(t, billing.AddLineItem(testLineItem(t, "1", usd(1000), usd(0), usd(500), usd(0))))
		require.NoError(t, billing.Submit("pm-jane", billingNow))
		assert.ErrorIs(t, billing.Submit("pm-jane", billingNow), apperrors.ErrInvalidTransition)
	})
}

func submittedBilling(t *testing.T) *domain.ProgressBilling {
	t.Helper()
	billing := testBilling(t)
	require.NoError(t, billing.AddLineItem(testLineItem(t, "1", usd(500000), usd(100000), usd(50000), usd(10000))))
	require.NoError(t, billing.Submit("pm-jane", billingNow))
	return billing
}

func TestProgressBilling_InvalidTransitionsNeverMutate(t *testing.T) {
	tests := []struct {
		name string
		op   func(b *domain.ProgressBilling) error
	}{
		{name: "approve from draft", op: func(b *domain.ProgressBilling) error { return b.Approve("cfo", billingNow) }},
		{name: "reject from draft", op: func(b *domain.ProgressBilling) error {
			return b.Reject("cfo", "documentation is incomplete", billingNow)
		}},
		{name: "paid from draft", op: func(b *domain.ProgressBilling) error { return b.MarkAsPaid("CHK-1001", billingNow) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			billing := testBilling(t)
			err := tt.op(billing)
			assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
			assert.Equal(t, domain.BillingDraft, billing.Status)
			assert.Nil(t, billing.ApprovedAt)
			assert.Nil(t, billing.RejectedAt)
			assert.Nil(t, billing.PaidAt)
		})
	}
}

func TestProgressBilling_ApproveRejectPaid(t *testing.T) {
	t.Run("approve then pay", func(t *testing.T) {
		billing := submittedBilling(t)
		require.NoError(t, billing.Approve("cfo-raj", billingNow))
		assert.Equal(t, domain.BillingApproved, billing.Status)

		assert.ErrorIs(t, billing.MarkAsPaid("ab", billingNow), apperrors.ErrValidation, "payment reference below 3 chars")
		assert.Equal(t, domain.BillingApproved, billing.Status)

		require.NoError(t, billing.MarkAsPaid("ACH-2231", billingNow))
		assert.Equal(t, domain.BillingPaid, billing.Status)
		assert.Equal(t, "ACH-2231", billing.PaymentReference)
		require.NotNil(t, billing.PaidAt)
	})

	t.Run("reject requires long enough reason", func(t *testing.T) {
		billing := submittedBilling(t)

		err := billing.Reject("cfo-raj", "too short", billingNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Equal(t, domain.BillingSubmitted, billing.Status)

		require.NoError(t, billing.Reject("cfo-raj", "Missing required lien waiver documentation", billingNow))
		assert.Equal(t, domain.BillingRejected, billing.Status)
		assert.Equal(t, "Missing required lien waiver documentation", billing.RejectionReason)
	})

	t.Run("reason length counts characters not bytes", func(t *testing.T) {
		billing := submittedBilling(t)

		// 6 characters, 18 bytes.
		err := billing.Reject("cfo-raj", "書類が不十分", billingNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Equal(t, domain.BillingSubmitted, billing.Status)

		require.NoError(t, billing.Reject("cfo-raj", "必要な書類が不足しています", billingNow))
		assert.Equal(t, domain.BillingRejected, billing.Status)
	})
}

func TestProgressBilling_LineItemsOnlyMutableInDraft(t *testing.T) {
	billing := submittedBilling(t)

	err := billing.AddLineItem(testLineItem(t, "2", usd(1000), usd(0), usd(0), usd(0)))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.ErrorIs(t, billing.RemoveLineItem("1"), apperrors.ErrInvalidTransition)

	doc := domain.BillingDocument{DocumentID: "doc-1", Name: "schedule.pdf"}
	assert.ErrorIs(t, billing.AddDocument(doc), apperrors.ErrInvalidTransition)
}

func TestProgressBilling_LienWaivers(t *testing.T) {
	billing := submittedBilling(t)

	err := billing.AddLienWaiver(domain.LienWaiver{WaiverID: "w-1", VendorName: "Acme Steel", Type: domain.WaiverPartial, Amount: eur(1000)})
	assert.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)

	require.NoError(t, billing.AddLienWaiver(domain.LienWaiver{WaiverID: "w-1", VendorName: "Acme Steel", Type: domain.WaiverPartial, Amount: usd(40000)}))
	require.NoError(t, billing.AddLienWaiver(domain.LienWaiver{WaiverID: "w-2", VendorName: "Delta Electric", Type: domain.WaiverConditional, Amount: usd(15000)}))
	assert.True(t, billing.HasUnreceivedLienWaivers())
	assert.True(t, billing.ReceivedLienWaiverAmount().IsZero())

	require.NoError(t, billing.MarkLienWaiverReceived("w-1", billingNow))
	assert.True(t, billing.HasUnreceivedLienWaivers(), "w-2 still outstanding")
	assert.True(t, billing.ReceivedLienWaiverAmount().Equal(usd(40000)))

	require.NoError(t, billing.MarkLienWaiverReceived("w-2", billingNow))
	assert.False(t, billing.HasUnreceivedLienWaivers())
	assert.ErrorIs(t, billing.MarkLienWaiverReceived("w-9", billingNow), apperrors.ErrNotFound)
}

func TestProgressBilling_ReleaseRetainage(t *testing.T) {
	billing := testBilling(t) // 30,000 USD retainage held

	assert.ErrorIs(t, billing.ReleaseRetainage(eur(1000), domain.ReleasePartial), apperrors.ErrCurrencyMismatch)
	assert.ErrorIs(t, billing.ReleaseRetainage(usd(30001), domain.ReleasePartial), apperrors.ErrValidation)
	assert.ErrorIs(t, billing.ReleaseRetainage(usd(100), domain.RetainageReleaseType("HALF")), apperrors.ErrValidation)

	require.NoError(t, billing.ReleaseRetainage(usd(10000), domain.ReleasePartial))
	require.NotNil(t, billing.RetainageReleased)
	assert.True(t, billing.RetainageReleased.Equal(usd(10000)))
	assert.True(t, billing.RetainageAmount.Equal(usd(30000)), "retainage balance is not decremented")

	// Replace semantics: a later release overwrites the previous one.
	require.NoError(t, billing.ReleaseRetainage(usd(30000), domain.ReleaseFull))
	assert.True(t, billing.RetainageReleased.Equal(usd(30000)))
	assert.Equal(t, domain.ReleaseFull, billing.RetainageReleaseType)
}

func TestProgressBilling_ComputedSums(t *testing.T) {
	billing := testBilling(t)
	require.NoError(t, billing.AddLineItem(testLineItem(t, "1", usd(500000), usd(100000), usd(50000), usd(10000))))
	require.NoError(t, billing.AddLineItem(testLineItem(t, "2", usd(550000), usd(40000), usd(10000), usd(0))))

	assert.True(t, billing.ContractSumToDate().Equal(usd(1050000)))
	assert.True(t, billing.TotalCompletedAndStored().Equal(usd(210000)))
	assert.True(t, billing.TotalEarnedLessRetainage().Equal(usd(180000)))
	assert.True(t, billing.CurrentPaymentDue().Equal(usd(-20000)))
	assert.True(t, billing.BalanceToFinish().Equal(usd(870000)))

	expected := decimal.NewFromInt(210000).Div(decimal.NewFromInt(1050000)).Mul(decimal.NewFromInt(100))
	assert.True(t, billing.PercentComplete().Equal(expected))
}

func TestProgressBilling_PercentCompleteZeroContract(t *testing.T) {
	billing, err := domain.NewProgressBilling("b", "p", "c", 1,
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		usd(0), usd(0), usd(0), usd(0), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, billing.PercentComplete().IsZero())
}
