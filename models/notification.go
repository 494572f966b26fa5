package models

import (
	"time"
)

// Notification kinds requested by the order workflow.
const (
	NotifOrderDelivered = "order_delivered"
	NotifOrderPickedUp  = "order_picked_up"
	NotifOrderCompleted = "order_completed"
	NotifOrderCancelled = "order_cancelled"
	NotifOrderShipped   = "order_shipped"
	NotifReturnApproved = "return_approved"
	NotifReturnRejected = "return_rejected"
	NotifReturnRefunded = "return_refunded"
	NotifOrderEmail     = "order_email"
)

// Notification is a recorded dispatch request. Actual delivery (email/SMS)
// is the dispatcher's job; the core only records that it asked.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Customer   Customer  `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Kind       string    `gorm:"type:varchar(30);not null" json:"kind"`
	Payload    string    `gorm:"type:text" json:"payload,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
