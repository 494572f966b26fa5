package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/services"
	"github.com/yeremiapane/commerce-admin/utils"
)

type ReturnController struct {
	DB      *gorm.DB
	Returns *services.ReturnService
}

func NewReturnController(db *gorm.DB, returns *services.ReturnService) *ReturnController {
	return &ReturnController{DB: db, Returns: returns}
}

// GetAllReturns -> list RMAs, optional ?status=
func (rc *ReturnController) GetAllReturns(c *gin.Context) {
	rmas, err := rc.Returns.List(c.Query("status"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of returns", rmas)
}

// GetReturnByID -> one RMA with its items
func (rc *ReturnController) GetReturnByID(c *gin.Context) {
	id, ok := uintParam(c, "return_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid return id"))
		return
	}
	rma, err := rc.Returns.Get(id)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Return detail", rma)
}

// SubmitReturn -> open an RMA against an order
func (rc *ReturnController) SubmitReturn(c *gin.Context) {
	var body services.SubmitReturnInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	rma, err := rc.Returns.Submit(body)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Return submitted", rma)
}

// ApproveReturn -> approve a pending RMA with an optional restocking fee
func (rc *ReturnController) ApproveReturn(c *gin.Context) {
	id, ok := uintParam(c, "return_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid return id"))
		return
	}

	var body struct {
		RestockingFee float64 `json:"restocking_fee"`
	}
	_ = c.ShouldBindJSON(&body)

	rma, err := rc.Returns.Approve(id, body.RestockingFee)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Return approved", rma)
}

// RejectReturn -> decline a pending RMA, reason required
func (rc *ReturnController) RejectReturn(c *gin.Context) {
	id, ok := uintParam(c, "return_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid return id"))
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	rma, err := rc.Returns.Reject(id, body.Reason)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Return rejected", rma)
}

// MarkReturnReceived -> goods arrived back at the warehouse
func (rc *ReturnController) MarkReturnReceived(c *gin.Context) {
	id, ok := uintParam(c, "return_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid return id"))
		return
	}

	rma, err := rc.Returns.MarkReceived(id)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Return received", rma)
}

// ProcessRefund -> pay out refund minus restocking fee, close the RMA
func (rc *ReturnController) ProcessRefund(c *gin.Context) {
	id, ok := uintParam(c, "return_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid return id"))
		return
	}

	var body struct {
		TransactionID string `json:"transaction_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	rma, err := rc.Returns.ProcessRefund(id, body.TransactionID)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Refund processed", rma)
}
