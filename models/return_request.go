package models

import (
	"time"
)

// Return (RMA) status vocabulary
const (
	ReturnStatusPending        = "pending"
	ReturnStatusApproved       = "approved"
	ReturnStatusAwaitingReturn = "awaiting_return"
	ReturnStatusReceived       = "received"
	ReturnStatusRefunded       = "refunded"
	ReturnStatusRejected       = "rejected"
)

// Refund methods
const (
	RefundOriginalPayment = "original_payment"
	RefundStoreCredit     = "store_credit"
)

// ReturnRequest is a customer return (RMA) against one original order.
// Terminal states are refunded and rejected.
type ReturnRequest struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Code          string `gorm:"type:varchar(30);not null;uniqueIndex" json:"code"`
	OrderID       uint   `gorm:"not null;index" json:"order_id"`
	Order         Order  `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CustomerID    uint   `gorm:"not null;index" json:"customer_id"`
	CustomerName  string `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(100)" json:"customer_email"`

	Items []ReturnItem `gorm:"foreignKey:ReturnID" json:"items"`

	Status        string  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RefundAmount  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"refund_amount"`
	RestockingFee float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"restocking_fee"`
	RefundMethod  string  `gorm:"type:varchar(20);not null;default:'original_payment'" json:"refund_method"`

	LabelID         string `gorm:"type:varchar(50)" json:"label_id,omitempty"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`

	ReceivedAt          *time.Time `json:"received_at,omitempty"`
	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
	RefundTransactionID string     `gorm:"type:varchar(50)" json:"refund_transaction_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the RMA can no longer change state.
func (r *ReturnRequest) IsTerminal() bool {
	return r.Status == ReturnStatusRefunded || r.Status == ReturnStatusRejected
}

// ReturnItem ties a returned quantity to one original line item.
type ReturnItem struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ReturnID    uint          `gorm:"not null;index" json:"return_id"`
	Return      ReturnRequest `gorm:"foreignKey:ReturnID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	OrderItemID uint          `gorm:"not null;index" json:"order_item_id"`
	Quantity    int           `gorm:"not null" json:"quantity"`
	Reason      string        `gorm:"type:varchar(50);not null" json:"reason"`
	Price       float64       `gorm:"type:decimal(10,2);not null" json:"price"`
}
