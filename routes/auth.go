package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/auth"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, deps Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", auth.CreateGuestUser(deps.DB))

		// One-shot guest cart handover after login
		authGroup.POST("/merge-cart", middleware.ValidateToken, auth.MergeGuestCart(deps.DB, deps.Log))
	}
}
