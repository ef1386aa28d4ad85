package routes

import (
	"github.com/gin-gonic/gin"

	checkoutControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/checkout"
	orderControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/order"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/middleware"
)

func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	// Checkout: registered users and guests submit through the same handler;
	// the actor is resolved from the JWT context or the guest_id query.
	r.POST("/user/checkout", middleware.ValidateToken,
		checkoutControllers.CheckoutHandler(deps.DB, deps.Gateway, deps.Pricing, deps.Log))
	r.POST("/guest/checkout",
		checkoutControllers.CheckoutHandler(deps.DB, deps.Gateway, deps.Pricing, deps.Log))

	orders := r.Group("/orders")
	{
		// Confirmation page lookup by external ref
		orders.GET("/:orderRef", orderControllers.GetOrderHandler(deps.DB))
	}

	// Orders of the authenticated user
	r.GET("/user/orders", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(deps.DB))
}
