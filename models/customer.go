package models

import (
	"time"
)

// Customer is the read-only CRM record the order workflow consumes.
// Segmentation and analytics live in the CRM service, not here.
type Customer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Email       string    `gorm:"type:varchar(100);not null;index" json:"email"`
	Phone       string    `gorm:"type:varchar(20)" json:"phone"`
	TotalOrders int       `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent  float64   `gorm:"type:decimal(12,2);not null;default:0.00" json:"total_spent"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
