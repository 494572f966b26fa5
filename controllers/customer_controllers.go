package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// CustomerController serves the read-only CRM lookups the order screens
// need. Customer records are written by the CRM, never here.
type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers -> list customers, optional ?q= on name/email
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	q := cc.DB.Order("name ASC")
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var customers []models.Customer
	if err := q.Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// GetCustomerByID -> profile plus the customer's orders
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := uintParam(c, "customer_id")
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid customer id"))
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	var orders []models.Order
	if err := cc.DB.Preload("Items").Where("customer_id = ?", id).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer detail", gin.H{
		"customer": customer,
		"orders":   orders,
	})
}
