package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/config"
	"github.com/yeremiapane/commerce-admin/controllers"
	"github.com/yeremiapane/commerce-admin/events"
	"github.com/yeremiapane/commerce-admin/middlewares"
	"github.com/yeremiapane/commerce-admin/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(rateLimiter.RateLimit())

	// Service wiring: every status change funnels through the one
	// order service so the transition table is checked centrally.
	notifier := services.NewRecordingNotifier(db)
	carrier := services.NewStubCarrier()
	orderSvc := services.NewOrderService(db, notifier)
	fulfillmentSvc := services.NewFulfillmentService(db, orderSvc)
	returnSvc := services.NewReturnService(db, notifier, config.RefundPolicy())
	bulkSvc := services.NewBulkService(db, orderSvc, fulfillmentSvc, notifier)

	customerCtrl := controllers.NewCustomerController(db)
	orderCtrl := controllers.NewOrderController(db, orderSvc)
	fulfillmentCtrl := controllers.NewFulfillmentController(db, fulfillmentSvc, carrier)
	returnCtrl := controllers.NewReturnController(db, returnSvc)
	bulkCtrl := controllers.NewBulkController(db, bulkSvc)
	notificationCtrl := controllers.NewNotificationController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Dashboard clients subscribe here for live updates
	r.GET("/events/ws", events.Handler)

	api := r.Group("/api/v1")
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		api.GET("/customers", customerCtrl.GetAllCustomers)
		api.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)

		api.GET("/orders", orderCtrl.GetAllOrders)
		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		api.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
		api.POST("/orders/:order_id/notes", orderCtrl.AddOrderNote)
		api.GET("/orders/:order_id/timeline", orderCtrl.GetOrderTimeline)

		api.GET("/fulfillment/queue", fulfillmentCtrl.GetQueue)
		api.POST("/fulfillment/queue/:order_id", fulfillmentCtrl.EnqueueOrder)
		api.POST("/fulfillment/start/:order_id", fulfillmentCtrl.StartTask)
		api.POST("/fulfillment/start-all", fulfillmentCtrl.StartAll)
		api.POST("/fulfillment/pick-lists", fulfillmentCtrl.PrintPickLists)
		api.GET("/fulfillment/tasks", fulfillmentCtrl.GetTasks)
		api.GET("/fulfillment/tasks/by-order/:order_id", fulfillmentCtrl.GetTaskByOrder)
		api.POST("/fulfillment/tasks/:task_id/items/:item_id/picked", fulfillmentCtrl.MarkItemPicked)
		api.POST("/fulfillment/tasks/:task_id/advance", fulfillmentCtrl.AdvanceTask)
		api.GET("/fulfillment/shipments", fulfillmentCtrl.GetShipments)

		api.GET("/returns", returnCtrl.GetAllReturns)
		api.POST("/returns", returnCtrl.SubmitReturn)
		api.GET("/returns/:return_id", returnCtrl.GetReturnByID)
		api.POST("/returns/:return_id/approve", returnCtrl.ApproveReturn)
		api.POST("/returns/:return_id/reject", returnCtrl.RejectReturn)
		api.POST("/returns/:return_id/received", returnCtrl.MarkReturnReceived)
		api.POST("/returns/:return_id/refund", returnCtrl.ProcessRefund)

		api.GET("/notifications", notificationCtrl.GetAllNotifications)

		// Bulk actions can delete, keep them on the strict limiter
		bulk := api.Group("/")
		bulk.Use(middlewares.NewStrictRateLimiter())
		{
			bulk.POST("/orders/bulk", bulkCtrl.ApplyBulkAction)
		}
	}

	return r
}
