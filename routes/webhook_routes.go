package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/quickstay/booking/config/db"
	"github.com/quickstay/booking/controllers/webhook_controller"
	"github.com/quickstay/booking/logger"
)

func RegisterWebhookRoutes(router *gin.Engine) {
	webhookController, err := webhook_controller.NewWebhookController(db.DB)
	if err != nil {
		// Without a verifier secret the webhook cannot be trusted at all,
		// so the route is simply not mounted.
		logger.ErrorLogger.Errorf("Webhook routes not registered: %v", err)
		return
	}

	router.POST("/api/clerk", webhookController.Handle)
}
