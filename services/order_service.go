package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// OrderService owns the order state machine and the totals math. Every
// status change in the system goes through Transition so the transition
// table is checked in exactly one place.
type OrderService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{db: db, notifier: notifier}
}

// successors returns the permitted next statuses for an order. The branch
// after "ready" depends on the fulfillment type: delivery orders go out
// for delivery first, pickup/dine-in orders are handed over directly.
func successors(order *models.Order) []string {
	switch order.Status {
	case models.OrderStatusPlaced:
		return []string{models.OrderStatusConfirmed}
	case models.OrderStatusConfirmed:
		return []string{models.OrderStatusPreparing}
	case models.OrderStatusPreparing:
		return []string{models.OrderStatusReady}
	case models.OrderStatusReady:
		if order.FulfillmentType == models.FulfillmentDelivery {
			return []string{models.OrderStatusOutForDelivery}
		}
		return []string{models.OrderStatusPickedUp}
	case models.OrderStatusOutForDelivery:
		return []string{models.OrderStatusDelivered}
	case models.OrderStatusDelivered, models.OrderStatusPickedUp:
		return []string{models.OrderStatusCompleted}
	}
	return nil
}

// CanTransition reports whether newStatus is a legal successor of the
// order's current status. Cancellation is legal from any non-terminal state.
func CanTransition(order *models.Order, newStatus string) bool {
	if order.IsTerminal() {
		return false
	}
	if newStatus == models.OrderStatusCancelled {
		return true
	}
	for _, s := range successors(order) {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Transition moves an order to newStatus, appends a timeline entry and
// bumps UpdatedAt. Reaching delivered/picked_up/completed/cancelled asks
// the notifier to inform the customer; a notifier failure is reported but
// the committed transition stands.
func (s *OrderService) Transition(orderID uint, newStatus, note string) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(order, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if newStatus == models.OrderStatusCancelled {
			if err := releaseFulfillment(tx, order.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(order).Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderEvent{
			OrderID:   order.ID,
			Status:    newStatus,
			Note:      note,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = newStatus
	order.UpdatedAt = now
	order.Timeline = append(order.Timeline, models.OrderEvent{
		OrderID: order.ID, Status: newStatus, Note: note, CreatedAt: now,
	})

	if kind := notificationKind(newStatus); kind != "" {
		if nerr := s.notifier.Notify(order.CustomerID, kind, map[string]interface{}{
			"order_code": order.Code,
			"status":     newStatus,
		}); nerr != nil {
			utils.ErrorLogger.Printf("notify %s for order %s failed: %v", kind, order.Code, nerr)
			return order, fmt.Errorf("%w: notify(%s): %v", ErrExternalService, kind, nerr)
		}
	}
	return order, nil
}

func notificationKind(status string) string {
	switch status {
	case models.OrderStatusOutForDelivery:
		return models.NotifOrderShipped
	case models.OrderStatusDelivered:
		return models.NotifOrderDelivered
	case models.OrderStatusPickedUp:
		return models.NotifOrderPickedUp
	case models.OrderStatusCompleted:
		return models.NotifOrderCompleted
	case models.OrderStatusCancelled:
		return models.NotifOrderCancelled
	}
	return ""
}

// Cancel is a convenience wrapper around Transition.
func (s *OrderService) Cancel(orderID uint, note string) (*models.Order, error) {
	return s.Transition(orderID, models.OrderStatusCancelled, note)
}

type OrderItemInput struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes"`
}

type CreateOrderInput struct {
	Code            string           `json:"code"`
	CustomerID      uint             `json:"customer_id" binding:"required"`
	Items           []OrderItemInput `json:"items" binding:"required"`
	DiscountCode    string           `json:"discount_code"`
	DiscountAmount  float64          `json:"discount_amount"`
	Tax             float64          `json:"tax"`
	DeliveryFee     float64          `json:"delivery_fee"`
	Tip             float64          `json:"tip"`
	FulfillmentType string           `json:"fulfillment_type"`
	Address         string           `json:"address"`
	ShippingMethod  string           `json:"shipping_method"`
}

// CreateOrder validates the line items and money breakdown, computes the
// total and writes the order with its first timeline entry ("placed").
func (s *OrderService) CreateOrder(in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("item %q: quantity must be at least 1", it.Name)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("item %q: price must not be negative", it.Name)
		}
		subtotal += it.Price * float64(it.Quantity)
		items = append(items, models.OrderItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Notes:    it.Notes,
		})
	}
	subtotal = utils.Cents(subtotal)

	if in.DiscountAmount < 0 || in.Tax < 0 || in.DeliveryFee < 0 || in.Tip < 0 {
		return nil, fmt.Errorf("discount, tax, fee and tip must not be negative")
	}
	if in.DiscountAmount > subtotal {
		return nil, fmt.Errorf("discount %.2f exceeds subtotal %.2f", in.DiscountAmount, subtotal)
	}

	var customer models.Customer
	if err := s.db.First(&customer, in.CustomerID).Error; err != nil {
		return nil, err
	}

	fulfillment := in.FulfillmentType
	if fulfillment == "" {
		fulfillment = models.FulfillmentDelivery
	}
	if fulfillment == models.FulfillmentDelivery && strings.TrimSpace(in.Address) == "" {
		return nil, fmt.Errorf("delivery orders require an address")
	}
	method := in.ShippingMethod
	if method == "" {
		method = models.ShippingStandard
	}

	code := in.Code
	if code == "" {
		code = "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	}

	now := time.Now()
	order := models.Order{
		Code:            code,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		Items:           items,
		Subtotal:        subtotal,
		DiscountCode:    in.DiscountCode,
		DiscountAmount:  utils.Cents(in.DiscountAmount),
		Tax:             utils.Cents(in.Tax),
		DeliveryFee:     utils.Cents(in.DeliveryFee),
		Tip:             utils.Cents(in.Tip),
		Status:          models.OrderStatusPlaced,
		PaymentStatus:   models.PaymentStatusPending,
		FulfillmentType: fulfillment,
		Address:         in.Address,
		ShippingMethod:  method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Total = ComputeTotal(&order)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderEvent{
			OrderID:   order.ID,
			Status:    models.OrderStatusPlaced,
			Note:      "order placed",
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ComputeTotal derives the order total from its money components,
// rounded to the cent.
func ComputeTotal(order *models.Order) float64 {
	return utils.Cents(order.Subtotal - order.DiscountAmount + order.Tax + order.DeliveryFee + order.Tip)
}

// CheckTotals verifies the reconciliation invariant: the stored total must
// equal the sum of its components and the subtotal the sum of line totals.
func CheckTotals(order *models.Order) error {
	var lines float64
	for i := range order.Items {
		lines += order.Items[i].LineTotal()
	}
	if len(order.Items) > 0 && !utils.SameAmount(lines, order.Subtotal) {
		return fmt.Errorf("subtotal %.2f does not match line items %.2f", order.Subtotal, lines)
	}
	if want := ComputeTotal(order); !utils.SameAmount(order.Total, want) {
		return fmt.Errorf("total %.2f does not reconcile, expected %.2f", order.Total, want)
	}
	return nil
}

// AddNote appends a staff note. Notes are append-only.
func (s *OrderService) AddNote(orderID uint, author, message string) (*models.OrderNote, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("note message must not be empty")
	}
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	note := models.OrderNote{
		OrderID:   order.ID,
		Author:    author,
		Message:   message,
		CreatedAt: time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note).Error; err != nil {
			return err
		}
		return tx.Model(&order).Update("updated_at", note.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// GetOrder loads an order with items and timeline.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders, optionally filtered by status. Archived
// orders are excluded unless asked for.
func (s *OrderService) ListOrders(status string, includeArchived bool) ([]models.Order, error) {
	q := s.db.Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
