package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
	productControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/product"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/middleware"
)

// SetupCartRoutes registers the "/user/cart/*" (JWT) and "/guest/cart/*"
// endpoints plus public product browsing.
func SetupCartRoutes(r *gin.Engine, deps Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCartSummary(deps.DB, deps.Pricing))
			cartGroup.POST("/", cartControllers.AddCartItem(deps.DB))
			cartGroup.PUT("/:product_id", cartControllers.UpdateCartItemQuantity(deps.DB))
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(deps.DB))
			cartGroup.DELETE("/", cartControllers.ClearUserCart(deps.DB))
		}
	}

	guestGroup := r.Group("/guest")
	{
		cartGroup := guestGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetGuestCartSummary(deps.DB, deps.Pricing))
			cartGroup.POST("/", cartControllers.AddGuestCartItem(deps.DB))
			cartGroup.PUT("/:product_id", cartControllers.UpdateGuestCartItemQuantity(deps.DB))
			cartGroup.DELETE("/:product_id", cartControllers.DeleteGuestCartItem(deps.DB))
			cartGroup.DELETE("/", cartControllers.ClearGuestCart(deps.DB))
		}
	}

	// Public product browsing
	r.GET("/products", productControllers.GetProducts(deps.DB))
	r.GET("/products/:id", productControllers.GetProductByID(deps.DB))
}
