package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/events"
	"github.com/yeremiapane/commerce-admin/services"
	"github.com/yeremiapane/commerce-admin/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

// GetAllOrders -> list orders, optional ?status= and ?archived=true
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"
	orders, err := oc.Orders.ListOrders(c.Query("status"), includeArchived)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// CreateOrder -> create an order in status 'placed'
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body services.CreateOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(body)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> detail of one order with items, timeline and notes
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}
	order, err := oc.Orders.GetOrder(id)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> run one transition of the state machine
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Transition(id, body.Status, body.Note)
	if err != nil {
		// An external-service failure after commit still changed the order.
		if order != nil {
			events.BroadcastOrderUpdate(*order)
		}
		utils.RespondError(c, statusFor(err), err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CancelOrder -> cancel from any non-terminal status
func (oc *OrderController) CancelOrder(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&body)

	order, err := oc.Orders.Cancel(id, body.Note)
	if err != nil {
		if order != nil {
			events.BroadcastOrderUpdate(*order)
		}
		utils.RespondError(c, statusFor(err), err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// AddOrderNote -> append a staff note
func (oc *OrderController) AddOrderNote(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var body struct {
		Author  string `json:"author" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	note, err := oc.Orders.AddNote(id, body.Author, body.Message)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Note added", note)
}

// GetOrderTimeline -> the append-only status history
func (oc *OrderController) GetOrderTimeline(c *gin.Context) {
	id, ok := uintParam(c, "order_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}
	order, err := oc.Orders.GetOrder(id)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order timeline", order.Timeline)
}
