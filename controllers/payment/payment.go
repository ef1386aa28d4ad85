package paymentControllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	orderControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/order"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
	"github.com/UfereSamuel/hi5ve-marketplace-sub001/payments"
)

// GET /payment/methods?amount=2500
func MethodsHandler(gw *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, err := strconv.ParseFloat(c.Query("amount"), 64)
		if err != nil || amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "valid amount is required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"methods": gw.AvailableMethods(amount)})
	}
}

// GET /payment/callback/:provider
//
// The provider redirects the browser here after a hosted payment. Query
// parameters are treated as hints; the authoritative status comes from the
// provider's verify API inside HandleCallback. The browser always ends up on
// a success or failure page, never a raw error.
func CallbackHandler(gw *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := make(map[string]string)
		for key, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		target, err := gw.HandleCallback(c.Request.Context(), c.Param("provider"), query)
		if err != nil {
			// HandleCallback already logged the detail; the user gets the
			// failure page with a generic message.
			c.Redirect(http.StatusFound, target)
			return
		}
		c.Redirect(http.StatusFound, target)
	}
}

// POST /payment/webhook/:provider
//
// Returns 200 only after a successful reconciliation or a confirmed
// idempotent no-op, so the provider's retry policy is respected. Signature
// and reference problems are 400 (retrying cannot fix them); provider or
// database trouble is 500 (retry may succeed).
func WebhookHandler(gw *payments.Gateway, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		outcome, err := gw.HandleWebhook(c.Request.Context(), c.Param("provider"), body, c.Request.Header)
		if err != nil {
			switch {
			case errors.Is(err, payments.ErrSignatureInvalid),
				errors.Is(err, payments.ErrUnknownReference),
				errors.Is(err, payments.ErrAmountMismatch):
				c.JSON(http.StatusBadRequest, gin.H{"error": "webhook rejected"})
			case errors.Is(err, payments.ErrProviderUnavailable):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "verification unavailable"})
			default:
				log.Error("webhook processing failed",
					zap.String("provider", c.Param("provider")),
					zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
			}
			return
		}

		c.JSON(http.StatusOK, outcome)
	}
}

type RetryPaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

// POST /payment/retry/:orderRef
//
// Creates a fresh payment attempt for an existing pending order, e.g. after
// a declined card or an abandoned redirect. The order itself is untouched.
func RetryHandler(db *gorm.DB, gw *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RetryPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		method, err := payments.ParseMethod(req.Method)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := orderControllers.GetByRef(db, c.Param("orderRef"))
		if err != nil {
			if errors.Is(err, orderControllers.ErrOrderNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		if order.PaymentStatus != models.PaymentStatusPending {
			c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
			return
		}

		initiation, err := gw.Initiate(c.Request.Context(), order, method, payments.Contact{
			Name:  order.CustomerName,
			Email: order.CustomerEmail,
			Phone: order.CustomerPhone,
		})
		if err != nil {
			respondInitiateError(c, err)
			return
		}
		c.JSON(http.StatusOK, initiation)
	}
}

type ConfirmManualRequest struct {
	ConfirmedBy string `json:"confirmed_by" binding:"required"`
	Note        string `json:"note"`
}

// POST /admin/orders/:orderRef/confirm-payment
//
// The audited confirmation for manual methods (bank transfer, COD, WhatsApp):
// the admin action that stands in for a provider's "paid" signal. Requires
// the confirming actor so the audit trail names a person.
func ConfirmManualHandler(gw *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmManualRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		outcome, err := gw.ConfirmManual(c.Request.Context(), c.Param("orderRef"), req.ConfirmedBy, req.Note)
		if err != nil {
			if errors.Is(err, payments.ErrUnknownReference) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no confirmable payment attempt for order"})
				return
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, outcome)
	}
}

func respondInitiateError(c *gin.Context, err error) {
	var unavailable *payments.MethodUnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrProviderUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable, please retry"})
	case errors.Is(err, payments.ErrOrderNotPayable):
		c.JSON(http.StatusConflict, gin.H{"error": "order is not awaiting payment"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment could not be started, please retry"})
	}
}
