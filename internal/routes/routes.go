package routes

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/authz"
	"stockroom/internal/handlers"
	"stockroom/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	saleHandler *handlers.SaleHandler,
	stockLogHandler *handlers.StockLogHandler,
	notificationHandler *handlers.NotificationHandler,
	reportHandler *handlers.ReportHandler,
	aiHandler *handlers.AIHandler,
	wsHandler *handlers.WSHandler,
) *gin.Engine {

	// ---- public
	auth := r.Group("/auth")
	{
		auth.POST("/request_code", authHandler.RequestCode)
		auth.POST("/verify_code", authHandler.VerifyCode)
		auth.POST("/google", authHandler.GoogleSignIn)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// token travels in the query string, the handler checks it itself
	r.GET("/ws/notifications", wsHandler.Notifications)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))

	r.GET("/users/me", userHandler.Me)

	// USERS (admin)
	users := r.Group("/users", middleware.RequireRoles(authz.RoleAdmin))
	{
		users.POST("/", userHandler.Create)
		users.GET("/", userHandler.List)
		users.GET("/count", userHandler.Count)
		users.POST("/bulk_import", userHandler.BulkImport)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
		users.POST("/:id/set_password", userHandler.SetPassword)
	}

	// PRODUCTS
	products := r.Group("/products")
	{
		products.POST("/", productHandler.Create)
		products.GET("/", productHandler.List)
		products.GET("/low_stock", productHandler.LowStock)
		products.POST("/bulk_import", productHandler.BulkImport)
		products.GET("/:id", productHandler.GetByID)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", middleware.RequireRoles(authz.RoleAdmin), productHandler.Delete)
		products.POST("/:id/adjust_stock", productHandler.AdjustStock)
	}

	// SALES
	sales := r.Group("/sales")
	{
		sales.POST("/", saleHandler.Record)
		sales.GET("/", saleHandler.List)
	}

	// STOCK LOGS
	r.GET("/stock_logs", stockLogHandler.List)

	// NOTIFICATIONS
	notifications := r.Group("/notifications")
	{
		notifications.GET("/", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", middleware.RequireRoles(authz.RoleAdmin), notificationHandler.Delete)
	}

	// REPORTS (admin)
	reports := r.Group("/reports", middleware.RequireRoles(authz.RoleAdmin))
	{
		reports.GET("/inventory", reportHandler.Inventory)
		reports.GET("/low_stock", reportHandler.LowStock)
		reports.GET("/stock_logs", reportHandler.StockLogs)
	}

	// AI (admin)
	ai := r.Group("/ai", middleware.RequireRoles(authz.RoleAdmin))
	{
		ai.POST("/inventory_insights", aiHandler.InventoryInsights)
		ai.POST("/sales_report", aiHandler.SalesReport)
		ai.GET("/reports", aiHandler.ListReports)
		ai.POST("/detect_anomalies", aiHandler.DetectAnomalies)
		ai.GET("/anomalies", aiHandler.ListAnomalies)
	}

	return r
}
