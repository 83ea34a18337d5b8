package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nyozov/services/internal/http/middleware"
	"github.com/nyozov/services/internal/http/validation"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/shared/apperr"
)

type RefundHandler struct {
	Orders  *orders.Repo
	Refunds *payments.RefundService
}

func NewRefundHandler(repo *orders.Repo, svc *payments.RefundService) *RefundHandler {
	return &RefundHandler{Orders: repo, Refunds: svc}
}

type refundInput struct {
	Amount            *string `json:"amount" binding:"omitempty"`
	RefundPlatformFee *bool   `json:"refundPlatformFee" binding:"omitempty"`
}

// POST /api/orders/:id/refund
// Only the seller who owns the item's store may refund its orders.
func (h *RefundHandler) Refund(c *gin.Context) {
	subject, _ := middleware.CurrentSubject(c)
	orderID := c.Param("id")

	// Body is optional: an empty body means a full refund.
	var in refundInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			fields := validation.FromBindError(err, &in)
			middleware.Fail(c, apperr.InvalidErr("Invalid refund request.", fields))
			return
		}
	}

	o, err := h.Orders.Get(c.Request.Context(), orderID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if o.Item.Store.User.ExternalID != subject {
		middleware.Fail(c, apperr.ForbiddenErr("You do not own this order's store."))
		return
	}

	input := payments.RefundInput{OrderID: orderID, RefundPlatformFee: in.RefundPlatformFee}
	if in.Amount != nil {
		amt, err := decimal.NewFromString(*in.Amount)
		if err != nil {
			middleware.Fail(c, apperr.InvalidErr("Invalid refund amount.", map[string]string{"amount": "must be a decimal string"}))
			return
		}
		input.Amount = &amt
	}

	res, err := h.Refunds.RefundOrder(c.Request.Context(), input)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"refund": gin.H{
			"id":     res.Refund.ID,
			"amount": payments.FromCents(res.Refund.AmountCents).StringFixed(2),
			"status": res.Refund.Status,
		},
		"order": presentOrder(res.Order),
	})
}
