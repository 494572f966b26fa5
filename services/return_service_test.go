package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/models"
)

func newReturnFixture(t *testing.T, policy RefundPolicy) (*gorm.DB, *OrderService, *ReturnService, *models.Order) {
	t.Helper()
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	notifier := NewRecordingNotifier(db)
	orders := NewOrderService(db, notifier)
	returns := NewReturnService(db, notifier, policy)
	order := newDeliveryOrder(t, orders, customer.ID) // 49.99 x1 + 10.00 x2
	return db, orders, returns, order
}

func TestSubmitComputesProvisionalRefund(t *testing.T) {
	_, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items: []ReturnItemInput{
			{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusPending, rma.Status)
	assert.Equal(t, 49.99, rma.RefundAmount)
	assert.Equal(t, models.RefundOriginalPayment, rma.RefundMethod)
	assert.NotEmpty(t, rma.Code)
}

func TestSubmitItemNotInOrder(t *testing.T) {
	_, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	// Unknown line item
	_, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: 99999, Quantity: 1, Reason: "defective"}},
	})
	assert.ErrorIs(t, err, ErrItemNotInOrder)

	// Quantity above what was purchased (2 bought, 3 requested)
	_, err = returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[1].ID, Quantity: 3, Reason: "wrong size"}},
	})
	assert.ErrorIs(t, err, ErrItemNotInOrder)
}

func TestSubmitCumulativeQuantityAcrossRMAs(t *testing.T) {
	_, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)
	cable := order.Items[1] // quantity 2

	first, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: cable.ID, Quantity: 2, Reason: "wrong size"}},
	})
	require.NoError(t, err)

	// Everything is already claimed by the pending RMA
	_, err = returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: cable.ID, Quantity: 1, Reason: "wrong size"}},
	})
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	// A rejected RMA releases its quantity
	_, err = returns.Reject(first.ID, "outside the return window")
	require.NoError(t, err)
	_, err = returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: cable.ID, Quantity: 1, Reason: "wrong size"}},
	})
	assert.NoError(t, err)
}

func TestApproveFeeRules(t *testing.T) {
	_, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"}},
	})
	require.NoError(t, err)

	_, err = returns.Approve(rma.ID, 49.99)
	assert.ErrorIs(t, err, ErrFeeExceedsRefund)
	_, err = returns.Approve(rma.ID, 60.00)
	assert.ErrorIs(t, err, ErrFeeExceedsRefund)
	_, err = returns.Approve(rma.ID, -1)
	assert.Error(t, err)

	approved, err := returns.Approve(rma.ID, 15.00)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusAwaitingReturn, approved.Status)
	assert.Equal(t, 15.00, approved.RestockingFee)
	assert.NotEmpty(t, approved.LabelID)

	// approve is only legal from pending
	_, err = returns.Approve(rma.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectRules(t *testing.T) {
	_, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"}},
	})
	require.NoError(t, err)

	_, err = returns.Reject(rma.ID, "   ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := returns.Reject(rma.ID, "item shows heavy wear")
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusRejected, rejected.Status)
	assert.Equal(t, "item shows heavy wear", rejected.RejectionReason)

	// rejected is terminal
	_, err = returns.Reject(rma.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = returns.Approve(rma.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkReceivedOnlyFromAwaitingReturn(t *testing.T) {
	_, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"}},
	})
	require.NoError(t, err)

	_, err = returns.MarkReceived(rma.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = returns.Approve(rma.ID, 0)
	require.NoError(t, err)

	received, err := returns.MarkReceived(rma.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusReceived, received.Status)
	assert.NotNil(t, received.ReceivedAt)
}

func TestProcessRefundScenario(t *testing.T) {
	db, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"}},
	})
	require.NoError(t, err)
	require.Equal(t, 49.99, rma.RefundAmount)

	_, err = returns.ProcessRefund(rma.ID, "tx-123")
	assert.ErrorIs(t, err, ErrInvalidTransition, "refund before receipt must fail")

	_, err = returns.Approve(rma.ID, 15.00)
	require.NoError(t, err)
	_, err = returns.MarkReceived(rma.ID)
	require.NoError(t, err)

	refunded, err := returns.ProcessRefund(rma.ID, "tx-123")
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusRefunded, refunded.Status)
	assert.Equal(t, 34.99, FinalRefund(refunded))
	assert.Equal(t, "tx-123", refunded.RefundTransactionID)
	assert.NotNil(t, refunded.RefundedAt)

	// Final refund is below the order total, policy says partial
	var parent models.Order
	require.NoError(t, db.First(&parent, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPartiallyRefunded, parent.PaymentStatus)

	// refunded is terminal
	_, err = returns.ProcessRefund(rma.ID, "tx-456")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestProcessRefundPolicyMarkRefunded(t *testing.T) {
	db, _, returns, order := newReturnFixture(t, MarkRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"}},
	})
	require.NoError(t, err)
	_, err = returns.Approve(rma.ID, 15.00)
	require.NoError(t, err)
	_, err = returns.MarkReceived(rma.ID)
	require.NoError(t, err)
	_, err = returns.ProcessRefund(rma.ID, "tx-789")
	require.NoError(t, err)

	var parent models.Order
	require.NoError(t, db.First(&parent, order.ID).Error)
	assert.Equal(t, models.PaymentStatusRefunded, parent.PaymentStatus)
}

func TestProcessRefundNonPositive(t *testing.T) {
	db, _, returns, order := newReturnFixture(t, MarkPartiallyRefunded)

	rma, err := returns.Submit(SubmitReturnInput{
		OrderID: order.ID,
		Items:   []ReturnItemInput{{OrderItemID: order.Items[0].ID, Quantity: 1, Reason: "defective"}},
	})
	require.NoError(t, err)
	_, err = returns.Approve(rma.ID, 15.00)
	require.NoError(t, err)
	_, err = returns.MarkReceived(rma.ID)
	require.NoError(t, err)

	// Data imported from the legacy system can carry a fee equal to the
	// refund; the final guard still refuses a zero payout.
	require.NoError(t, db.Model(&models.ReturnRequest{}).Where("id = ?", rma.ID).
		Update("restocking_fee", rma.RefundAmount).Error)

	_, err = returns.ProcessRefund(rma.ID, "tx-000")
	assert.ErrorIs(t, err, ErrNonPositiveRefund)
}
