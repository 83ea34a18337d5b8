package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/modules/payments"
)

type WebhookHandler struct {
	Logger     *slog.Logger
	Gateway    payments.Gateway
	WebhookSvc *payments.WebhookService
}

func NewWebhookHandler(logger *slog.Logger, gw payments.Gateway, svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Gateway: gw, WebhookSvc: svc}
}

// POST /api/stripe/webhook
// The signature covers the exact raw bytes, so the body is read before
// any parsing and passed through untouched.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	ev, err := h.Gateway.VerifyEvent(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.Logger.Warn("webhook signature rejected", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature or payload"})
		return
	}

	if err := h.WebhookSvc.Handle(c.Request.Context(), ev); err != nil {
		// Non-2xx makes the provider redeliver; appliers are safe to
		// re-run.
		h.Logger.Error("webhook apply failed", "event_id", ev.ID, "type", ev.Type, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
