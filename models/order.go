package models

import (
	"time"
)

// Order status vocabulary. This is the single source of truth; legacy
// list-view vocabularies (processing/on_hold/...) are not modeled.
const (
	OrderStatusPlaced         = "placed"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusPickedUp       = "picked_up"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Payment status
const (
	PaymentStatusPending           = "pending"
	PaymentStatusPaid              = "paid"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
	PaymentStatusFailed            = "failed"
)

// Fulfillment types
const (
	FulfillmentDelivery = "delivery"
	FulfillmentPickup   = "pickup"
	FulfillmentDineIn   = "dine_in"
)

// Shipping methods, ordered by SLA window
const (
	ShippingOvernight = "overnight"
	ShippingExpress   = "express"
	ShippingStandard  = "standard"
	ShippingEconomy   = "economy"
)

type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Code          string `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	CustomerID    uint   `gorm:"not null;index" json:"customer_id"`
	CustomerName  string `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(100)" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(20)" json:"customer_phone"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal       float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	DiscountCode   string  `gorm:"type:varchar(30)" json:"discount_code,omitempty"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_amount"`
	Tax            float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	DeliveryFee    float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"delivery_fee"`
	Tip            float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"tip"`
	Total          float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`

	Status        string `gorm:"type:varchar(20);not null;default:'placed';index" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`

	FulfillmentType string     `gorm:"type:varchar(10);not null;default:'delivery'" json:"fulfillment_type"`
	Address         string     `gorm:"type:text" json:"address,omitempty"`
	ShippingMethod  string     `gorm:"type:varchar(10);not null;default:'standard'" json:"shipping_method"`
	EstimatedAt     *time.Time `json:"estimated_at,omitempty"`

	Archived bool `gorm:"not null;default:false;index" json:"archived"`

	Timeline []OrderEvent `gorm:"foreignKey:OrderID" json:"timeline,omitempty"`
	Notes    []OrderNote  `gorm:"foreignKey:OrderID" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether no further status transition is possible.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// Item returns the line item with the given id, or nil.
func (o *Order) Item(itemID uint) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
