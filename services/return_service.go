package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/events"
	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// RefundPolicy decides the parent order's payment status when the final
// refund is smaller than the order total. The source systems disagree on
// this, so it is configuration, not a hard-coded default.
type RefundPolicy string

const (
	// MarkRefunded always sets payment status to refunded.
	MarkRefunded RefundPolicy = "refunded"
	// MarkPartiallyRefunded keeps track of partial refunds explicitly.
	MarkPartiallyRefunded RefundPolicy = "partially_refunded"
)

// ReturnService runs the RMA workflow: pending -> approved ->
// awaiting_return -> received -> refunded, with rejected only from pending.
type ReturnService struct {
	db       *gorm.DB
	notifier Notifier
	policy   RefundPolicy
}

func NewReturnService(db *gorm.DB, notifier Notifier, policy RefundPolicy) *ReturnService {
	if policy != MarkRefunded && policy != MarkPartiallyRefunded {
		policy = MarkPartiallyRefunded
	}
	return &ReturnService{db: db, notifier: notifier, policy: policy}
}

type ReturnItemInput struct {
	OrderItemID uint   `json:"order_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
}

type SubmitReturnInput struct {
	OrderID      uint              `json:"order_id" binding:"required"`
	Items        []ReturnItemInput `json:"items" binding:"required"`
	RefundMethod string            `json:"refund_method"`
	Note         string            `json:"note"`
}

// Submit opens an RMA against an order. Each requested line must exist in
// the order, and the cumulative quantity across all prior non-rejected
// RMAs for that line must not exceed what was originally purchased. The
// provisional refund is the sum of returned item prices.
func (s *ReturnService) Submit(in SubmitReturnInput) (*models.ReturnRequest, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("return must contain at least one item")
	}

	var order models.Order
	if err := s.db.Preload("Items").First(&order, in.OrderID).Error; err != nil {
		return nil, err
	}

	var refund float64
	items := make([]models.ReturnItem, 0, len(in.Items))
	for _, req := range in.Items {
		line := order.Item(req.OrderItemID)
		if line == nil {
			return nil, fmt.Errorf("%w: item %d", ErrItemNotInOrder, req.OrderItemID)
		}
		if req.Quantity < 1 || req.Quantity > line.Quantity {
			return nil, fmt.Errorf("%w: item %d quantity %d (purchased %d)",
				ErrItemNotInOrder, req.OrderItemID, req.Quantity, line.Quantity)
		}

		already, err := s.returnedQuantity(order.ID, req.OrderItemID)
		if err != nil {
			return nil, err
		}
		if already+req.Quantity > line.Quantity {
			return nil, fmt.Errorf("%w: item %d has %d of %d already requested",
				ErrAlreadyReturned, req.OrderItemID, already, line.Quantity)
		}

		refund += line.Price * float64(req.Quantity)
		items = append(items, models.ReturnItem{
			OrderItemID: req.OrderItemID,
			Quantity:    req.Quantity,
			Reason:      req.Reason,
			Price:       line.Price,
		})
	}

	method := in.RefundMethod
	if method == "" {
		method = models.RefundOriginalPayment
	}

	now := time.Now()
	rma := models.ReturnRequest{
		Code:          "RMA-" + strings.ToUpper(uuid.NewString()[:8]),
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Items:         items,
		Status:        models.ReturnStatusPending,
		RefundAmount:  utils.Cents(refund),
		RefundMethod:  method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.Create(&rma).Error; err != nil {
		return nil, err
	}

	if in.Note != "" {
		s.db.Create(&models.OrderNote{
			OrderID:   order.ID,
			Author:    "returns",
			Message:   fmt.Sprintf("%s submitted: %s", rma.Code, in.Note),
			CreatedAt: now,
		})
	}

	events.BroadcastReturnUpdate(rma)
	return &rma, nil
}

// returnedQuantity sums the quantity of one line item across all
// non-rejected RMAs of the order.
func (s *ReturnService) returnedQuantity(orderID, orderItemID uint) (int, error) {
	var total int64
	err := s.db.Model(&models.ReturnItem{}).
		Joins("JOIN return_requests ON return_requests.id = return_items.return_id").
		Where("return_requests.order_id = ? AND return_requests.status <> ? AND return_items.order_item_id = ?",
			orderID, models.ReturnStatusRejected, orderItemID).
		Select("COALESCE(SUM(return_items.quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

// Approve accepts a pending RMA. The restocking fee must stay below the
// refund amount. A return label placeholder is attached, which moves the
// RMA straight on to awaiting_return.
func (s *ReturnService) Approve(rmaID uint, restockingFee float64) (*models.ReturnRequest, error) {
	rma, err := s.Get(rmaID)
	if err != nil {
		return nil, err
	}
	if rma.Status != models.ReturnStatusPending {
		return nil, fmt.Errorf("%w: cannot approve a %s return", ErrInvalidTransition, rma.Status)
	}
	if restockingFee < 0 {
		return nil, fmt.Errorf("restocking fee must not be negative")
	}
	if restockingFee >= rma.RefundAmount {
		return nil, fmt.Errorf("%w: fee %.2f, refund %.2f", ErrFeeExceedsRefund, restockingFee, rma.RefundAmount)
	}

	now := time.Now()
	labelID := "RLB-" + strings.ToUpper(uuid.NewString()[:10])
	if err := s.db.Model(rma).Updates(map[string]interface{}{
		"status":         models.ReturnStatusAwaitingReturn,
		"restocking_fee": utils.Cents(restockingFee),
		"label_id":       labelID,
		"updated_at":     now,
	}).Error; err != nil {
		return nil, err
	}
	rma.Status = models.ReturnStatusAwaitingReturn
	rma.RestockingFee = utils.Cents(restockingFee)
	rma.LabelID = labelID
	rma.UpdatedAt = now

	events.BroadcastReturnUpdate(*rma)
	if nerr := s.notifier.Notify(rma.CustomerID, models.NotifReturnApproved, map[string]interface{}{
		"rma_code": rma.Code,
		"label_id": labelID,
	}); nerr != nil {
		return rma, fmt.Errorf("%w: notify(%s): %v", ErrExternalService, models.NotifReturnApproved, nerr)
	}
	return rma, nil
}

// Reject declines a pending RMA. A reason is mandatory; rejected is terminal.
func (s *ReturnService) Reject(rmaID uint, reason string) (*models.ReturnRequest, error) {
	rma, err := s.Get(rmaID)
	if err != nil {
		return nil, err
	}
	if rma.Status != models.ReturnStatusPending {
		return nil, fmt.Errorf("%w: cannot reject a %s return", ErrInvalidTransition, rma.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	now := time.Now()
	if err := s.db.Model(rma).Updates(map[string]interface{}{
		"status":           models.ReturnStatusRejected,
		"rejection_reason": reason,
		"updated_at":       now,
	}).Error; err != nil {
		return nil, err
	}
	rma.Status = models.ReturnStatusRejected
	rma.RejectionReason = reason
	rma.UpdatedAt = now

	events.BroadcastReturnUpdate(*rma)
	if nerr := s.notifier.Notify(rma.CustomerID, models.NotifReturnRejected, map[string]interface{}{
		"rma_code": rma.Code,
		"reason":   reason,
	}); nerr != nil {
		return rma, fmt.Errorf("%w: notify(%s): %v", ErrExternalService, models.NotifReturnRejected, nerr)
	}
	return rma, nil
}

// MarkReceived records that the returned goods arrived at the warehouse.
func (s *ReturnService) MarkReceived(rmaID uint) (*models.ReturnRequest, error) {
	rma, err := s.Get(rmaID)
	if err != nil {
		return nil, err
	}
	if rma.Status != models.ReturnStatusAwaitingReturn {
		return nil, fmt.Errorf("%w: cannot receive a %s return", ErrInvalidTransition, rma.Status)
	}

	now := time.Now()
	if err := s.db.Model(rma).Updates(map[string]interface{}{
		"status":      models.ReturnStatusReceived,
		"received_at": now,
		"updated_at":  now,
	}).Error; err != nil {
		return nil, err
	}
	rma.Status = models.ReturnStatusReceived
	rma.ReceivedAt = &now
	rma.UpdatedAt = now

	events.BroadcastReturnUpdate(*rma)
	return rma, nil
}

// ProcessRefund closes a received RMA: final refund is the approved amount
// minus the restocking fee, and the parent order's payment status is set
// per the configured policy.
func (s *ReturnService) ProcessRefund(rmaID uint, transactionID string) (*models.ReturnRequest, error) {
	rma, err := s.Get(rmaID)
	if err != nil {
		return nil, err
	}
	if rma.Status != models.ReturnStatusReceived {
		return nil, fmt.Errorf("%w: cannot refund a %s return", ErrInvalidTransition, rma.Status)
	}

	finalRefund := utils.Cents(rma.RefundAmount - rma.RestockingFee)
	if finalRefund <= 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrNonPositiveRefund, finalRefund)
	}

	var order models.Order
	if err := s.db.First(&order, rma.OrderID).Error; err != nil {
		return nil, err
	}
	paymentStatus := models.PaymentStatusRefunded
	if finalRefund < order.Total && s.policy == MarkPartiallyRefunded {
		paymentStatus = models.PaymentStatusPartiallyRefunded
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rma).Updates(map[string]interface{}{
			"status":                models.ReturnStatusRefunded,
			"refunded_at":           now,
			"refund_transaction_id": transactionID,
			"updated_at":            now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&order).Updates(map[string]interface{}{
			"payment_status": paymentStatus,
			"updated_at":     now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	rma.Status = models.ReturnStatusRefunded
	rma.RefundedAt = &now
	rma.RefundTransactionID = transactionID
	rma.UpdatedAt = now

	events.BroadcastReturnUpdate(*rma)
	if nerr := s.notifier.Notify(rma.CustomerID, models.NotifReturnRefunded, map[string]interface{}{
		"rma_code":       rma.Code,
		"final_refund":   finalRefund,
		"transaction_id": transactionID,
	}); nerr != nil {
		return rma, fmt.Errorf("%w: notify(%s): %v", ErrExternalService, models.NotifReturnRefunded, nerr)
	}
	return rma, nil
}

// FinalRefund is the amount ProcessRefund will (or did) pay out.
func FinalRefund(rma *models.ReturnRequest) float64 {
	return utils.Cents(rma.RefundAmount - rma.RestockingFee)
}

// Get loads an RMA with its items.
func (s *ReturnService) Get(rmaID uint) (*models.ReturnRequest, error) {
	var rma models.ReturnRequest
	if err := s.db.Preload("Items").First(&rma, rmaID).Error; err != nil {
		return nil, err
	}
	return &rma, nil
}

// List returns RMAs, optionally filtered by status.
func (s *ReturnService) List(status string) ([]models.ReturnRequest, error) {
	q := s.db.Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rmas []models.ReturnRequest
	if err := q.Find(&rmas).Error; err != nil {
		return nil, err
	}
	return rmas, nil
}
