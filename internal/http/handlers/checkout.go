package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/http/validation"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/shared/apperr"
)

type CheckoutHandler struct {
	Payments       *payments.Service
	FrontendOrigin string
}

func NewCheckoutHandler(svc *payments.Service, frontendOrigin string) *CheckoutHandler {
	return &CheckoutHandler{Payments: svc, FrontendOrigin: frontendOrigin}
}

type createCheckoutInput struct {
	ItemID         string `json:"itemId" binding:"required"`
	Email          string `json:"email" binding:"required,email,max=255"`
	IdempotencyKey string `json:"idempotencyKey" binding:"omitempty,max=64"`
}

// POST /api/stripe/checkout
// Public: buyers check out without an account.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var in createCheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid checkout request.", fields))
		return
	}

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = h.FrontendOrigin
	}

	res, err := h.Payments.CreateCheckout(c.Request.Context(), payments.CreateCheckoutInput{
		ItemID:         in.ItemID,
		BuyerEmail:     in.Email,
		SuccessURL:     origin + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      origin + "/checkout/cancelled",
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       res.CheckoutURL,
		"sessionId": res.SessionID,
		"orderId":   res.OrderID,
	})
}

// GET /api/stripe/checkout/verify?session_id=...
// Success-page fallback: confirms against the provider rather than
// trusting the redirect, in case the webhook has not landed yet.
func (h *CheckoutHandler) Verify(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		middleware.Fail(c, apperr.InvalidErr("session_id is required.", map[string]string{"session_id": "required"}))
		return
	}

	o, err := h.Payments.VerifyCheckoutSession(c.Request.Context(), sessionID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": presentOrder(o)})
}

type createIntentInput struct {
	ItemID         string `json:"itemId" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email,max=255"`
	IdempotencyKey string `json:"idempotencyKey" binding:"omitempty,max=64"`
}

// POST /api/stripe/payment-intent
// Direct-intent flow for embedded payment elements. The order row
// materializes from the success webhook, not here.
func (h *CheckoutHandler) CreateIntent(c *gin.Context) {
	var in createIntentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fields := validation.FromBindError(err, &in)
		middleware.Fail(c, apperr.InvalidErr("Invalid payment request.", fields))
		return
	}

	res, err := h.Payments.CreatePaymentIntent(c.Request.Context(), payments.CreateIntentInput{
		ItemID:         in.ItemID,
		BuyerEmail:     in.Email,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret":    res.ClientSecret,
		"paymentIntentId": res.PaymentIntentID,
	})
}
