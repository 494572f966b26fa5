package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/services"
	"github.com/yeremiapane/commerce-admin/utils"
)

type FulfillmentController struct {
	DB          *gorm.DB
	Fulfillment *services.FulfillmentService
	Carrier     services.CarrierService
}

func NewFulfillmentController(db *gorm.DB, fulfillment *services.FulfillmentService, carrier services.CarrierService) *FulfillmentController {
	return &FulfillmentController{DB: db, Fulfillment: fulfillment, Carrier: carrier}
}

// queueEntryView decorates a queue entry with its urgency class.
type queueEntryView struct {
	models.QueueEntry
	Urgency string `json:"urgency"`
}

// GetQueue -> waiting line ordered by due time, with urgency per entry
func (fc *FulfillmentController) GetQueue(c *gin.Context) {
	entries, err := fc.Fulfillment.Queue()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	views := make([]queueEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, queueEntryView{QueueEntry: e, Urgency: fc.Fulfillment.Urgency(e.DueAt)})
	}
	utils.RespondJSON(c, http.StatusOK, "Fulfillment queue", views)
}

// EnqueueOrder -> add a confirmed/preparing delivery order to the queue
func (fc *FulfillmentController) EnqueueOrder(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var body struct {
		Priority string `json:"priority"`
	}
	_ = c.ShouldBindJSON(&body)

	entry, err := fc.Fulfillment.Enqueue(id, body.Priority)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order queued", entry)
}

// StartTask -> pull an order from the queue into a picking task
func (fc *FulfillmentController) StartTask(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var body struct {
		Worker string `json:"worker" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := fc.Fulfillment.Start(id, body.Worker)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Fulfillment started", task)
}

// StartAll -> start every id independently, report per-id failures
func (fc *FulfillmentController) StartAll(c *gin.Context) {
	var body struct {
		OrderIDs []uint `json:"order_ids" binding:"required"`
		Worker   string `json:"worker" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := fc.Fulfillment.StartAll(body.OrderIDs, body.Worker)
	utils.RespondJSON(c, http.StatusOK, "Bulk start processed", result)
}

// PrintPickLists -> printable pick lists for a set of orders
func (fc *FulfillmentController) PrintPickLists(c *gin.Context) {
	var body struct {
		OrderIDs []uint `json:"order_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := fc.Fulfillment.PickLists(body.OrderIDs)
	utils.RespondJSON(c, http.StatusOK, "Pick lists", result)
}

// MarkItemPicked -> flip one pick flag on a task
func (fc *FulfillmentController) MarkItemPicked(c *gin.Context) {
	taskID, ok := uintParam(c, "task_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid task id"))
		return
	}
	itemID, ok := uintParam(c, "item_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid item id"))
		return
	}

	task, err := fc.Fulfillment.MarkItemPicked(taskID, itemID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item picked", task)
}

// AdvanceTask -> move a task one stage forward. For the final step the
// shipment is created with the carrier first unless the caller already
// supplies a tracking number.
func (fc *FulfillmentController) AdvanceTask(c *gin.Context) {
	taskID, ok := uintParam(c, "task_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid task id"))
		return
	}

	var body struct {
		Carrier        string  `json:"carrier"`
		TrackingNumber string  `json:"tracking_number"`
		WeightKg       float64 `json:"weight_kg"`
		Dimensions     string  `json:"dimensions"`
	}
	_ = c.ShouldBindJSON(&body)

	in := services.AdvanceInput{Carrier: body.Carrier, TrackingNumber: body.TrackingNumber}

	task, err := fc.Fulfillment.GetTask(taskID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	if task.Stage == models.TaskStageLabeling && in.TrackingNumber == "" && in.Carrier != "" {
		var order models.Order
		if err := fc.DB.Preload("Items").First(&order, task.OrderID).Error; err != nil {
			utils.RespondError(c, statusFor(err), err)
			return
		}
		info, err := fc.Carrier.CreateShipment(&order, services.ShipmentRequest{
			Carrier:    body.Carrier,
			WeightKg:   body.WeightKg,
			Dimensions: body.Dimensions,
		})
		if err != nil {
			err = fmt.Errorf("%w: createShipment: %v", services.ErrExternalService, err)
			utils.RespondError(c, statusFor(err), err)
			return
		}
		in.TrackingNumber = info.TrackingNumber
		in.LabelURL = info.LabelURL
	}

	task, err = fc.Fulfillment.Advance(taskID, in)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Task advanced", task)
}

// GetTasks -> all active tasks
func (fc *FulfillmentController) GetTasks(c *gin.Context) {
	tasks, err := fc.Fulfillment.ListTasks()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active tasks", tasks)
}

// GetTaskByOrder -> the active task wrapping an order, if any
func (fc *FulfillmentController) GetTaskByOrder(c *gin.Context) {
	orderID, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	task, err := fc.Fulfillment.TaskForOrder(orderID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active task", task)
}

// GetShipments -> completed shipment records
func (fc *FulfillmentController) GetShipments(c *gin.Context) {
	shipments, err := fc.Fulfillment.ListShipments()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shipments", shipments)
}
