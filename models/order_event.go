package models

import (
	"time"
)

// OrderEvent is one entry of an order's status timeline. Rows are
// append-only: they are never updated or deleted.
type OrderEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Order     Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
