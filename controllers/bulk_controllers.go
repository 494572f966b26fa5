package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/services"
	"github.com/yeremiapane/commerce-admin/utils"
)

type BulkController struct {
	DB   *gorm.DB
	Bulk *services.BulkService
}

func NewBulkController(db *gorm.DB, bulk *services.BulkService) *BulkController {
	return &BulkController{DB: db, Bulk: bulk}
}

// ApplyBulkAction -> run one action over a set of selected orders.
// The response always carries the aggregate result, even when every
// single order failed; only a malformed request is an HTTP error.
func (bc *BulkController) ApplyBulkAction(c *gin.Context) {
	var body struct {
		Action   services.BulkAction `json:"action" binding:"required"`
		OrderIDs []uint              `json:"order_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := bc.Bulk.Apply(body.Action, body.OrderIDs)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bulk action processed", result)
}
