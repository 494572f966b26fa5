package models

import (
	"time"
)

// Urgency classes derived from a queue entry's due time.
const (
	UrgencyOverdue = "overdue"
	UrgencyUrgent  = "urgent"
	UrgencyNormal  = "normal"
)

// QueueEntry is an order waiting to be picked. Entries are removed when a
// fulfillment task is started for the order or the order is cancelled.
type QueueEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;uniqueIndex" json:"order_id"`
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"order"`
	Priority   string    `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	DueAt      time.Time `gorm:"not null;index" json:"due_at"`
	EnqueuedAt time.Time `gorm:"not null" json:"enqueued_at"`
}
