package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/payments"
)

// Deps carries everything the route groups need wired in.
type Deps struct {
	DB      *gorm.DB
	Gateway *payments.Gateway
	Pricing cartControllers.PricingConfig
	Log     *zap.Logger
}

// SetupRoutes is the single entry point that wires up all route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, deps)

	// User + guest cart routes
	SetupCartRoutes(r, deps)

	// Orders and checkout
	SetupOrderRoutes(r, deps)

	// Payment initiation, callback and webhooks
	SetupPaymentRoutes(r, deps)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, deps)
}
