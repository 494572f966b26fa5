package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderEvent{},
		&models.OrderNote{},
		&models.QueueEntry{},
		&models.FulfillmentTask{},
		&models.TaskItem{},
		&models.Shipment{},
		&models.ReturnRequest{},
		&models.ReturnItem{},
		&models.Notification{},
	)
}

// Seed loads a couple of customers and orders for local development.
// It is a no-op when customers already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	customers := []models.Customer{
		{Name: "Ava Thompson", Email: "ava.thompson@example.com", Phone: "+1-555-0101", TotalOrders: 12, TotalSpent: 940.25, CreatedAt: now, UpdatedAt: now},
		{Name: "Marcus Lee", Email: "marcus.lee@example.com", Phone: "+1-555-0102", TotalOrders: 3, TotalSpent: 188.40, CreatedAt: now, UpdatedAt: now},
	}
	if err := db.Create(&customers).Error; err != nil {
		return err
	}

	order := models.Order{
		Code:            "ORD-1001",
		CustomerID:      customers[0].ID,
		CustomerName:    customers[0].Name,
		CustomerEmail:   customers[0].Email,
		CustomerPhone:   customers[0].Phone,
		Items: []models.OrderItem{
			{Name: "Espresso Blend 1kg", Price: 24.50, Quantity: 1, CreatedAt: now, UpdatedAt: now},
			{Name: "Pour-Over Kettle", Price: 21.45, Quantity: 1, CreatedAt: now, UpdatedAt: now},
		},
		Subtotal:        45.95,
		DiscountCode:    "WELCOME10",
		DiscountAmount:  4.60,
		Tax:             3.41,
		DeliveryFee:     3.99,
		Tip:             5.00,
		Total:           53.75,
		Status:          models.OrderStatusPlaced,
		PaymentStatus:   models.PaymentStatusPaid,
		FulfillmentType: models.FulfillmentDelivery,
		Address:         "12 Harbor Street, Portland, OR",
		ShippingMethod:  models.ShippingExpress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&order).Error; err != nil {
		return err
	}
	if err := db.Create(&models.OrderEvent{
		OrderID: order.ID, Status: models.OrderStatusPlaced, Note: "order placed", CreatedAt: now,
	}).Error; err != nil {
		return err
	}

	utils.InfoLogger.Printf("seeded %d customers and 1 order", len(customers))
	return nil
}
