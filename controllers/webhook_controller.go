package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/services"
)

// maxWebhookBody matches the processor's documented event size ceiling.
const maxWebhookBody = 65536

type WebhookController struct {
	webhookService services.WebhookService
	logger         *zap.Logger
}

func NewWebhookController(svc services.WebhookService, logger *zap.Logger) *WebhookController {
	return &WebhookController{webhookService: svc, logger: logger}
}

// HandleStripe handles POST /api/webhook/stripe. The body is read raw; the
// signature covers the exact bytes.
func (wc *WebhookController) HandleStripe(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		wc.logger.Warn("Failed to read webhook body", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	result, svcErr := wc.webhookService.HandleEvent(ctx.Request.Context(), payload, ctx.GetHeader("Stripe-Signature"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	wc.logger.Debug("Webhook processed",
		zap.String("event_id", result.EventID),
		zap.String("type", result.EventType),
		zap.Bool("handled", result.Handled),
		zap.String("outcome", string(result.Outcome)),
	)
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}
