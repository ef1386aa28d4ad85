package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
	orderControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/order"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/payments"
)

// CheckoutHandler turns the actor's cart into an order and starts payment
// with the selected method. If payment initiation fails the order survives in
// pending state and the client is told to retry payment against it.
func CheckoutHandler(db *gorm.DB, gw *payments.Gateway, pricing cartControllers.PricingConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := resolveActor(c)
		if !ok {
			return
		}

		var input orderControllers.CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		method, err := payments.ParseMethod(input.PaymentMethod)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := orderControllers.CreateOrder(db, actor, input, pricing)
		if err != nil {
			respondCreateError(c, err)
			return
		}

		initiation, err := gw.Initiate(c.Request.Context(), order, method, payments.Contact{
			Name:  input.CustomerName,
			Email: input.CustomerEmail,
			Phone: input.CustomerPhone,
		})
		if err != nil {
			log.Warn("checkout payment initiation failed",
				zap.String("order_ref", order.OrderRef),
				zap.String("method", string(method)),
				zap.Error(err))
			respondInitiateError(c, order.OrderRef, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"order":   order,
			"payment": initiation,
		})
	}
}

func resolveActor(c *gin.Context) (cartControllers.Actor, bool) {
	if userIDVal, exists := c.Get("user_id"); exists {
		if userID, ok := userIDVal.(string); ok && userID != "" {
			return cartControllers.UserActor(userID), true
		}
	}
	if guestID := c.Query("guest_id"); guestID != "" {
		return cartControllers.GuestActor(guestID), true
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	return cartControllers.Actor{}, false
}

func respondCreateError(c *gin.Context, err error) {
	var stockChanged *orderControllers.StockChangedError
	switch {
	case errors.Is(err, orderControllers.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.As(err, &stockChanged):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "stock changed, please review your cart",
			"product":   stockChanged.ProductName,
			"available": stockChanged.Available,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
	}
}

// respondInitiateError always includes the order ref: the order exists and
// stays pending, so the client can retry payment without re-checkout.
func respondInitiateError(c *gin.Context, orderRef string, err error) {
	var unavailable *payments.MethodUnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"order_ref": orderRef,
		})
	case errors.Is(err, payments.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "payment provider unavailable, please retry",
			"order_ref": orderRef,
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "payment could not be started, please retry",
			"order_ref": orderRef,
		})
	}
}
