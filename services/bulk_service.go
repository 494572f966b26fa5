package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/events"
	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// Bulk action types
const (
	BulkUpdateStatus = "update_status"
	BulkArchive      = "archive"
	BulkDelete       = "delete"
	BulkExport       = "export"
	BulkEmail        = "email"
	BulkPrint        = "print"
)

// BulkAction is one action applied across a set of selected orders.
type BulkAction struct {
	Type      string `json:"type" binding:"required"`
	NewStatus string `json:"new_status,omitempty"`
	Note      string `json:"note,omitempty"`
	Template  string `json:"template,omitempty"`
}

// BulkResult aggregates per-order outcomes. Each order is processed
// independently and atomically; one failure never aborts the batch and
// never leaves an order half-mutated.
type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
	Payload   interface{}   `json:"payload,omitempty"`
}

// BulkService applies one action to many orders through the single
// central state machine.
type BulkService struct {
	db          *gorm.DB
	orders      *OrderService
	fulfillment *FulfillmentService
	notifier    Notifier
}

func NewBulkService(db *gorm.DB, orders *OrderService, fulfillment *FulfillmentService, notifier Notifier) *BulkService {
	return &BulkService{db: db, orders: orders, fulfillment: fulfillment, notifier: notifier}
}

// Apply runs the action over the id set and reports the aggregate result.
func (s *BulkService) Apply(action BulkAction, orderIDs []uint) (BulkResult, error) {
	result := BulkResult{Succeeded: []uint{}, Failed: []BulkFailure{}}

	switch action.Type {
	case BulkUpdateStatus:
		if action.NewStatus == "" {
			return result, fmt.Errorf("update_status requires new_status")
		}
		for _, id := range orderIDs {
			if _, err := s.orders.Transition(id, action.NewStatus, action.Note); err != nil {
				result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, id)
		}

	case BulkArchive:
		for _, id := range orderIDs {
			if err := s.archive(id); err != nil {
				result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, id)
		}

	case BulkDelete:
		for _, id := range orderIDs {
			if err := s.delete(id); err != nil {
				result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, id)
		}

	case BulkExport:
		exported := make([]models.Order, 0, len(orderIDs))
		for _, id := range orderIDs {
			order, err := s.orders.GetOrder(id)
			if err != nil {
				result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
				continue
			}
			exported = append(exported, *order)
			result.Succeeded = append(result.Succeeded, id)
		}
		result.Payload = exported

	case BulkEmail:
		template := action.Template
		if template == "" {
			template = models.NotifOrderEmail
		}
		for _, id := range orderIDs {
			if err := s.email(id, template); err != nil {
				result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
				continue
			}
			result.Succeeded = append(result.Succeeded, id)
		}

	case BulkPrint:
		lists := s.fulfillment.PickLists(orderIDs)
		for _, list := range lists.Lists {
			result.Succeeded = append(result.Succeeded, list.OrderID)
		}
		result.Failed = append(result.Failed, lists.Failed...)
		result.Payload = lists.Lists

	default:
		return result, fmt.Errorf("unknown bulk action %q", action.Type)
	}

	events.BroadcastMessage(events.Message{
		Event: events.EventBulkCompleted,
		Data: map[string]interface{}{
			"action":    action.Type,
			"succeeded": len(result.Succeeded),
			"failed":    len(result.Failed),
		},
	})
	return result, nil
}

func (s *BulkService) archive(orderID uint) error {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return err
	}
	return s.db.Model(&order).Update("archived", true).Error
}

// delete removes an order with its children. Deleting an id that no
// longer exists is a no-op, so retried bulk deletes stay idempotent.
func (s *BulkService) delete(orderID uint) error {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.QueueEntry{}).Error; err != nil {
			return err
		}
		var task models.FulfillmentTask
		if err := tx.Where("order_id = ?", orderID).First(&task).Error; err == nil {
			if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&task).Error; err != nil {
				return err
			}
		}
		for _, m := range []interface{}{&models.OrderEvent{}, &models.OrderNote{}, &models.OrderItem{}} {
			if err := tx.Where("order_id = ?", orderID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&order).Error
	})
}

func (s *BulkService) email(orderID uint, template string) error {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return err
	}
	if err := s.notifier.Notify(order.CustomerID, template, map[string]interface{}{
		"order_code": order.Code,
		"total":      utils.FormatAmount(order.Total),
	}); err != nil {
		return fmt.Errorf("%w: notify(%s): %v", ErrExternalService, template, err)
	}
	return nil
}
