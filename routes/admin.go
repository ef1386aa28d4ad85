package routes

import (
	"github.com/gin-gonic/gin"

	adminControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/admin"
	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
	orderControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/order"
	paymentControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/payment"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-key middleware.
func SetupAdminRoutes(r *gin.Engine, deps Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(deps.DB))
			orderAdmin.GET("/export-excel", adminControllers.ExportOrdersToExcel(deps.DB))

			// Lattice-validated status moves (confirm, ship, cancel, ...)
			orderAdmin.PUT("/:orderRef/status", orderControllers.UpdateOrderStatusHandler(deps.DB, deps.Log))

			// Audited manual payment confirmation for bank transfer/COD/WhatsApp
			orderAdmin.POST("/:orderRef/confirm-payment", paymentControllers.ConfirmManualHandler(deps.Gateway))

			// Live order feed for the dashboard
			orderAdmin.GET("/ws", orderControllers.OrderWebSocketHandler)
		}

		cartMgmt := adminGroup.Group("/user-cart")
		{
			cartMgmt.GET("/:user_id", cartControllers.GetAdminUserCart(deps.DB, deps.Pricing))
		}
	}
}
