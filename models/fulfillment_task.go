package models

import (
	"time"
)

// Task stages
const (
	TaskStagePicking  = "picking"
	TaskStagePacking  = "packing"
	TaskStageLabeling = "labeling"
	TaskStageShipped  = "shipped"
)

// Task priorities
const (
	PriorityRush   = "rush"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// PriorityRank maps a priority to its sort weight, highest first.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityRush:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// FulfillmentTask wraps an order while it is being picked/packed.
// It exists only while the order is in an active (non-terminal) status
// and is deleted once the shipment record is written.
type FulfillmentTask struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	OrderID    uint       `gorm:"not null;uniqueIndex" json:"order_id"`
	Order      Order      `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Priority   string     `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	DueAt      time.Time  `gorm:"not null" json:"due_at"`
	AssignedTo *string    `gorm:"type:varchar(100)" json:"assigned_to,omitempty"`
	Stage      string     `gorm:"type:varchar(10);not null;default:'picking'" json:"stage"`
	Items      []TaskItem `gorm:"foreignKey:TaskID" json:"items"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// AllPicked reports whether every item of the task has been picked.
func (t *FulfillmentTask) AllPicked() bool {
	for _, it := range t.Items {
		if !it.Picked {
			return false
		}
	}
	return true
}

// TaskItem is the per-line-item pick flag of a fulfillment task.
type TaskItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TaskID      uint            `gorm:"not null;index" json:"task_id"`
	Task        FulfillmentTask `gorm:"foreignKey:TaskID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	OrderItemID uint            `gorm:"not null" json:"order_item_id"`
	Picked      bool            `gorm:"not null;default:false" json:"picked"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}
