package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> recorded dispatch requests, newest first,
// optional ?customer_id=
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	q := nc.DB.Order("created_at DESC")
	if customerID := c.Query("customer_id"); customerID != "" {
		q = q.Where("customer_id = ?", customerID)
	}

	var notifications []models.Notification
	if err := q.Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifications)
}
