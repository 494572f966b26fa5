package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/events"
	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// Shipping SLA windows, strictly increasing. Due time of a queued order is
// its creation time plus the window of its shipping method.
var shippingSLA = map[string]time.Duration{
	models.ShippingOvernight: 12 * time.Hour,
	models.ShippingExpress:   24 * time.Hour,
	models.ShippingStandard:  72 * time.Hour,
	models.ShippingEconomy:   120 * time.Hour,
}

// UrgentWindow is how close to the due time an entry counts as urgent.
const UrgentWindow = 4 * time.Hour

// FulfillmentService manages the pick/pack/ship pipeline: the waiting
// queue, active tasks and completed shipments.
type FulfillmentService struct {
	db     *gorm.DB
	orders *OrderService

	// Now is the clock; tests override it for deterministic urgency.
	Now func() time.Time
}

func NewFulfillmentService(db *gorm.DB, orders *OrderService) *FulfillmentService {
	return &FulfillmentService{db: db, orders: orders, Now: time.Now}
}

// Enqueue puts a confirmed or preparing delivery order into the waiting
// line. Pickup and dine-in orders never ship, so they are rejected.
func (s *FulfillmentService) Enqueue(orderID uint, priority string) (*models.QueueEntry, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.FulfillmentType != models.FulfillmentDelivery {
		return nil, fmt.Errorf("%w: %s orders do not enter the ship queue", ErrInvalidTransition, order.FulfillmentType)
	}
	if order.Status != models.OrderStatusConfirmed && order.Status != models.OrderStatusPreparing {
		return nil, fmt.Errorf("%w: cannot queue order in status %s", ErrInvalidTransition, order.Status)
	}

	var existing models.QueueEntry
	if err := s.db.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		return nil, ErrAlreadyQueued
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sla, ok := shippingSLA[order.ShippingMethod]
	if !ok {
		sla = shippingSLA[models.ShippingStandard]
	}
	if priority == "" {
		priority = models.PriorityNormal
	}
	if models.PriorityRank(priority) == 0 {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}

	entry := models.QueueEntry{
		OrderID:    order.ID,
		Priority:   priority,
		DueAt:      order.CreatedAt.Add(sla),
		EnqueuedAt: s.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	entry.Order = *order

	if entries, err := s.Queue(); err == nil {
		events.BroadcastQueueUpdate(entries)
	}
	return &entry, nil
}

// Urgency classifies a due time against the clock.
func (s *FulfillmentService) Urgency(dueAt time.Time) string {
	now := s.Now()
	if now.After(dueAt) {
		return models.UrgencyOverdue
	}
	if dueAt.Sub(now) < UrgentWindow {
		return models.UrgencyUrgent
	}
	return models.UrgencyNormal
}

// Queue returns the waiting line ordered by due time ascending, ties
// broken by priority rank (rush first).
func (s *FulfillmentService) Queue() ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := s.db.Preload("Order").Preload("Order.Items").Find(&entries).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].DueAt.Equal(entries[j].DueAt) {
			return entries[i].DueAt.Before(entries[j].DueAt)
		}
		return models.PriorityRank(entries[i].Priority) > models.PriorityRank(entries[j].Priority)
	})
	return entries, nil
}

// Start pulls an order out of the queue and opens a fulfillment task in
// the picking stage with every item unpicked. If the order was confirmed
// it moves to preparing, so the state machine tracks the floor.
func (s *FulfillmentService) Start(orderID uint, worker string) (*models.FulfillmentTask, error) {
	var entry models.QueueEntry
	if err := s.db.Where("order_id = ?", orderID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotInQueue
		}
		return nil, err
	}

	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		// Cancelled while waiting; drop the stale entry.
		s.db.Delete(&entry)
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}

	now := s.Now()
	task := models.FulfillmentTask{
		OrderID:    order.ID,
		Priority:   entry.Priority,
		DueAt:      entry.DueAt,
		AssignedTo: &worker,
		Stage:      models.TaskStagePicking,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	for _, it := range order.Items {
		task.Items = append(task.Items, models.TaskItem{
			OrderItemID: it.ID,
			Picked:      false,
			UpdatedAt:   now,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusConfirmed {
		if _, err := s.orders.Transition(order.ID, models.OrderStatusPreparing, "picking started by "+worker); err != nil {
			return nil, err
		}
	}

	events.BroadcastTaskUpdate(task)
	return &task, nil
}

// MarkItemPicked flips one pick flag of an active task.
func (s *FulfillmentService) MarkItemPicked(taskID, orderItemID uint) (*models.FulfillmentTask, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	var target *models.TaskItem
	for i := range task.Items {
		if task.Items[i].OrderItemID == orderItemID {
			target = &task.Items[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: order item %d", ErrUnknownItem, orderItemID)
	}

	now := s.Now()
	if err := s.db.Model(target).Updates(map[string]interface{}{
		"picked":     true,
		"updated_at": now,
	}).Error; err != nil {
		return nil, err
	}
	target.Picked = true
	target.UpdatedAt = now

	events.BroadcastTaskUpdate(*task)
	return task, nil
}

// AdvanceInput carries the shipment details required for the final
// labeling -> shipped step. The carrier call is the caller's business;
// the workflow only insists the result is present before shipping.
type AdvanceInput struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// Advance moves a task one stage forward: picking -> packing (only when
// every item is picked), packing -> labeling, labeling -> shipped. On
// shipped it writes the completed-shipment record, transitions the order
// out for delivery and removes the task from active tracking.
func (s *FulfillmentService) Advance(taskID uint, in AdvanceInput) (*models.FulfillmentTask, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	switch task.Stage {
	case models.TaskStagePicking:
		if !task.AllPicked() {
			return nil, ErrIncompletePick
		}
		return task, s.setStage(task, models.TaskStagePacking, now)

	case models.TaskStagePacking:
		return task, s.setStage(task, models.TaskStageLabeling, now)

	case models.TaskStageLabeling:
		if strings.TrimSpace(in.Carrier) == "" || strings.TrimSpace(in.TrackingNumber) == "" {
			return nil, ErrShipmentRequired
		}
		return task, s.ship(task, in, now)
	}
	return nil, fmt.Errorf("%w: task already %s", ErrInvalidTransition, task.Stage)
}

func (s *FulfillmentService) setStage(task *models.FulfillmentTask, stage string, now time.Time) error {
	if err := s.db.Model(task).Updates(map[string]interface{}{
		"stage":      stage,
		"updated_at": now,
	}).Error; err != nil {
		return err
	}
	task.Stage = stage
	task.UpdatedAt = now
	events.BroadcastTaskUpdate(*task)
	return nil
}

// releaseFulfillment drops the queue entry and any active task of an
// order. Cancellation runs it inside its own transaction so no pipeline
// state outlives a terminal order.
func releaseFulfillment(tx *gorm.DB, orderID uint) error {
	var task models.FulfillmentTask
	err := tx.Where("order_id = ?", orderID).First(&task).Error
	switch {
	case err == nil:
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&task).Error; err != nil {
			return err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return tx.Where("order_id = ?", orderID).Delete(&models.QueueEntry{}).Error
}

func (s *FulfillmentService) ship(task *models.FulfillmentTask, in AdvanceInput, now time.Time) error {
	// The shipment record and the task deletion must not happen for an
	// order the state machine will refuse, so check the status up front.
	order, err := s.orders.GetOrder(task.OrderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusPreparing {
		return fmt.Errorf("%w: cannot ship order in status %s", ErrInvalidTransition, order.Status)
	}

	shipment := models.Shipment{
		OrderID:        task.OrderID,
		Carrier:        in.Carrier,
		TrackingNumber: in.TrackingNumber,
		LabelURL:       in.LabelURL,
		ItemsCount:     len(task.Items),
		ShippedAt:      now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shipment).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.FulfillmentTask{}, task.ID).Error
	})
	if err != nil {
		return err
	}

	// Packing done means the order is ready, then it leaves with the
	// carrier. Both steps run through the central state machine.
	if _, err := s.orders.Transition(task.OrderID, models.OrderStatusReady, "packed and labeled"); err != nil && !errors.Is(err, ErrExternalService) {
		return err
	}
	note := fmt.Sprintf("shipped via %s (%s)", in.Carrier, in.TrackingNumber)
	if _, err := s.orders.Transition(task.OrderID, models.OrderStatusOutForDelivery, note); err != nil && !errors.Is(err, ErrExternalService) {
		return err
	}

	task.Stage = models.TaskStageShipped
	task.UpdatedAt = now
	events.BroadcastShipment(shipment)
	return nil
}

// GetTask loads a task with its pick flags.
func (s *FulfillmentService) GetTask(taskID uint) (*models.FulfillmentTask, error) {
	var task models.FulfillmentTask
	if err := s.db.Preload("Items").First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskForOrder returns the active task wrapping an order, if any.
func (s *FulfillmentService) TaskForOrder(orderID uint) (*models.FulfillmentTask, error) {
	var task models.FulfillmentTask
	if err := s.db.Preload("Items").Where("order_id = ?", orderID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns all active tasks.
func (s *FulfillmentService) ListTasks() ([]models.FulfillmentTask, error) {
	var tasks []models.FulfillmentTask
	if err := s.db.Preload("Items").Order("due_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListShipments returns completed shipment records, newest first.
func (s *FulfillmentService) ListShipments() ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := s.db.Order("shipped_at DESC").Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// BulkFailure reports one failed id of a batch operation.
type BulkFailure struct {
	OrderID uint   `json:"order_id"`
	Reason  string `json:"reason"`
}

// StartAllResult aggregates a bulk start: every id is processed
// independently, failures never abort the batch.
type StartAllResult struct {
	Started []uint        `json:"started"`
	Failed  []BulkFailure `json:"failed"`
}

// StartAll applies Start to each order id, collecting per-id failures.
func (s *FulfillmentService) StartAll(orderIDs []uint, worker string) StartAllResult {
	result := StartAllResult{Started: []uint{}, Failed: []BulkFailure{}}
	for _, id := range orderIDs {
		if _, err := s.Start(id, worker); err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
			continue
		}
		result.Started = append(result.Started, id)
	}
	return result
}

// PickList is the printable picking sheet for one order.
type PickList struct {
	OrderID   uint           `json:"order_id"`
	OrderCode string         `json:"order_code"`
	Priority  string         `json:"priority,omitempty"`
	DueAt     *time.Time     `json:"due_at,omitempty"`
	Items     []PickListItem `json:"items"`
	Total     string         `json:"total"`
}

type PickListItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// PickListsResult aggregates a bulk pick-list build.
type PickListsResult struct {
	Lists  []PickList    `json:"lists"`
	Failed []BulkFailure `json:"failed"`
}

// PickLists builds printable pick lists for the given orders. Orders that
// cannot be loaded are reported and skipped.
func (s *FulfillmentService) PickLists(orderIDs []uint) PickListsResult {
	result := PickListsResult{Lists: []PickList{}, Failed: []BulkFailure{}}
	for _, id := range orderIDs {
		order, err := s.orders.GetOrder(id)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: id, Reason: err.Error()})
			continue
		}
		list := PickList{
			OrderID:   order.ID,
			OrderCode: order.Code,
			Total:     utils.FormatAmount(order.Total),
		}
		if entry := s.queueEntryFor(order.ID); entry != nil {
			list.Priority = entry.Priority
			due := entry.DueAt
			list.DueAt = &due
		}
		for _, it := range order.Items {
			list.Items = append(list.Items, PickListItem{
				Name:     it.Name,
				Quantity: it.Quantity,
				Notes:    it.Notes,
			})
		}
		result.Lists = append(result.Lists, list)
	}
	return result
}

func (s *FulfillmentService) queueEntryFor(orderID uint) *models.QueueEntry {
	var entry models.QueueEntry
	if err := s.db.Where("order_id = ?", orderID).First(&entry).Error; err != nil {
		return nil
	}
	return &entry
}
