package models

import (
	"time"
)

// Shipment is the completed-shipment record written when a fulfillment
// task reaches the shipped stage.
type Shipment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	Order          Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Carrier        string    `gorm:"type:varchar(50);not null" json:"carrier"`
	TrackingNumber string    `gorm:"type:varchar(50);not null" json:"tracking_number"`
	LabelURL       string    `gorm:"type:varchar(255)" json:"label_url,omitempty"`
	ItemsCount     int       `gorm:"not null" json:"items_count"`
	ShippedAt      time.Time `gorm:"not null" json:"shipped_at"`
}
