package orderControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

// CheckoutInput is the delivery and contact detail the customer submits with
// checkout. The payment method is validated by the payment facade, not here.
type CheckoutInput struct {
	CustomerName  string         `json:"customer_name" binding:"required"`
	CustomerEmail string         `json:"customer_email" binding:"required,email"`
	CustomerPhone string         `json:"customer_phone" binding:"required"`
	Address       models.Address `json:"delivery_address"`
	Notes         string         `json:"notes"`
	PaymentMethod string         `json:"payment_method" binding:"required"`
}

// generateOrderRef builds the external-facing order identifier: readable
// timestamp plus a random suffix so collisions are negligible.
func generateOrderRef() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + time.Now().Format("20060102-150405") + "-" + suffix
}

// CreateOrder freezes the actor's cart into an immutable order. Inside one
// transaction every product row is locked, stock is re-checked at the last
// second and decremented, lines are snapshotted with the current effective
// price, and the cart is cleared. Any line failing the stock check rolls the
// whole creation back: no partial order, no stray decrements.
func CreateOrder(db *gorm.DB, actor cartControllers.Actor, input CheckoutInput, pricing cartControllers.PricingConfig) (*models.Order, error) {
	var cart models.Cart
	if err := db.Preload("Items").Where("owner_id = ?", actor.ID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartEmpty
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	order := models.Order{
		OrderRef:      generateOrderRef(),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Address:       input.Address,
		Notes:         input.Notes,
		PaymentMethod: strings.ToLower(input.PaymentMethod),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}
	if !actor.Guest {
		userID := actor.ID
		order.UserID = &userID
	}

	lineIDs := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		lineIDs = append(lineIDs, item.ID)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		var items []models.OrderItem

		for _, item := range cart.Items {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &StockChangedError{ProductID: item.ProductID, Requested: item.Quantity}
				}
				return err
			}

			if product.Stock < item.Quantity {
				return &StockChangedError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Stock,
				}
			}

			product.Stock -= item.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			unit := product.EffectivePrice()
			lineSubtotal := unit * float64(item.Quantity)
			subtotal += lineSubtotal

			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   unit,
				Quantity:    item.Quantity,
				Subtotal:    lineSubtotal,
			})
		}

		order.Items = items
		order.DeliveryFee = pricing.DeliveryFeeFor(subtotal)
		order.TotalAmount = subtotal + order.DeliveryFee

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Clear only the lines that became the order; anything the customer
		// added since the cart was read survives for the next checkout.
		return tx.Where("id IN ?", lineIDs).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	Broadcast("order.created", order)
	return &order, nil
}

// UpdateOrderStatus is the single choke point for order status changes. The
// transition is validated against the lattice under a row lock so concurrent
// callers serialize on the order.
func UpdateOrderStatus(db *gorm.DB, orderRef string, next models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_ref = ?", orderRef).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !order.Status.CanTransitionTo(next) {
			return &InvalidTransitionError{From: order.Status, To: next}
		}

		order.Status = next
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}

	Broadcast("order.status", order)
	return &order, nil
}

// GetByRef returns the order header with its ordered lines.
func GetByRef(db *gorm.DB, orderRef string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items").Where("order_ref = ?", orderRef).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// -------- Handlers --------

// GET /orders/:orderRef
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := GetByRef(db, c.Param("orderRef"))
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /user/orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /admin/orders/:orderRef/status
func UpdateOrderStatusHandler(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("orderRef")

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		next, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := UpdateOrderStatus(db, orderRef, next)
		if err != nil {
			var invalid *InvalidTransitionError
			switch {
			case errors.Is(err, ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case errors.As(err, &invalid):
				// Lattice violations are integrity errors worth alerting on,
				// not user mistakes to swallow.
				log.Error("rejected order status transition",
					zap.String("order_ref", orderRef),
					zap.String("from", string(invalid.From)),
					zap.String("to", string(invalid.To)))
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
