package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/payment"
)

func SetupPaymentRoutes(r *gin.Engine, deps Deps) {
	payment := r.Group("/payment")
	{
		// Methods the checkout UI may offer for an amount
		payment.GET("/methods", paymentControllers.MethodsHandler(deps.Gateway))

		// Fresh attempt against an existing pending order
		payment.POST("/retry/:orderRef", paymentControllers.RetryHandler(deps.DB, deps.Gateway))

		// Synchronous redirect leg after a hosted payment
		payment.GET("/callback/:provider", paymentControllers.CallbackHandler(deps.Gateway))

		// Asynchronous provider webhooks; signatures are validated inside the
		// provider adapters, against the raw body
		payment.POST("/webhook/:provider", paymentControllers.WebhookHandler(deps.Gateway, deps.Log))
	}
}
