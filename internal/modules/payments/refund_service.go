package payments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/email"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/shared/apperr"
)

type RefundService struct {
	db     *gorm.DB
	gw     Gateway
	mail   email.Sender // nil disables buyer emails
	logger *slog.Logger
}

func NewRefundService(db *gorm.DB, gw Gateway, mail email.Sender, logger *slog.Logger) *RefundService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefundService{db: db, gw: gw, mail: mail, logger: logger}
}

type RefundInput struct {
	OrderID string

	// Amount in major units; nil refunds the full order amount.
	Amount *decimal.Decimal

	// RefundPlatformFee defaults to true: the platform returns its own
	// cut along with the seller's payout reversal.
	RefundPlatformFee *bool
}

type RefundResult struct {
	Refund Refund
	Order  orders.Order
}

// RefundOrder issues a one-shot full or partial refund with the seller
// transfer reversed. The refund is terminal: a second call on a refunded
// order fails and leaves state unchanged. The gateway call and the local
// status write are not one transaction; if the write fails after the
// gateway succeeded, re-querying the gateway is the recovery path.
func (s *RefundService) RefundOrder(ctx context.Context, in RefundInput) (RefundResult, error) {
	var o orders.Order
	if err := s.db.WithContext(ctx).
		Preload("Item.Store.User").
		First(&o, "id = ?", in.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RefundResult{}, apperr.NotFoundErr("Order not found.")
		}
		return RefundResult{}, apperr.PersistenceErr(err)
	}

	switch o.Status {
	case orders.StatusRefunded, orders.StatusPartiallyRefunded:
		return RefundResult{}, apperr.AlreadyRefundedErr("Order has already been refunded.")
	case orders.StatusPaid:
		// refundable
	default:
		return RefundResult{}, apperr.InvalidErr("Only paid orders can be refunded.", nil)
	}

	if o.PaymentID == nil || *o.PaymentID == "" {
		return RefundResult{}, apperr.NoChargeFoundErr("Order has no payment to refund.")
	}

	owner := o.Item.Store.User
	if owner.StripeAccountID == nil || *owner.StripeAccountID == "" {
		return RefundResult{}, apperr.SellerNotPayableErr("Store owner has no payment account.")
	}

	var amountCents int64
	if in.Amount != nil {
		if in.Amount.LessThanOrEqual(decimal.Zero) {
			return RefundResult{}, apperr.InvalidErr("Refund amount must be positive.", map[string]string{"amount": "must be positive"})
		}
		if in.Amount.GreaterThan(o.Amount) {
			return RefundResult{}, apperr.InvalidErr("Refund amount exceeds the order amount.", map[string]string{"amount": "exceeds order amount"})
		}
		amountCents = AmountCents(*in.Amount)
	}

	// An intent that never produced a successful charge cannot be refunded.
	intent, err := s.gw.GetPaymentIntent(ctx, *o.PaymentID)
	if err != nil {
		return RefundResult{}, apperr.GatewayErr("Failed to retrieve payment.", err)
	}
	if intent.LatestChargeID == "" {
		return RefundResult{}, apperr.NoChargeFoundErr("No charge found for this payment.")
	}

	refundAppFee := true
	if in.RefundPlatformFee != nil {
		refundAppFee = *in.RefundPlatformFee
	}

	ref, err := s.gw.CreateRefund(ctx, RefundParams{
		ChargeID:             intent.LatestChargeID,
		AmountCents:          amountCents,
		ReverseTransfer:      true,
		RefundApplicationFee: refundAppFee,
	})
	if err != nil {
		return RefundResult{}, apperr.GatewayErr("Failed to create refund.", err)
	}

	// The gateway-reported refunded amount decides the resulting status.
	refunded := FromCents(ref.AmountCents)
	newStatus := orders.StatusPartiallyRefunded
	if refunded.Equal(o.Amount) {
		newStatus = orders.StatusRefunded
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&orders.Order{}).
		Where("id = ? AND status = ?", o.ID, orders.StatusPaid).
		Updates(map[string]any{
			"status":        newStatus,
			"refund_id":     ref.ID,
			"refund_amount": refunded,
			"refunded_at":   now,
			"updated_at":    now,
		})
	if res.Error != nil {
		s.logger.ErrorContext(ctx, "refund persisted at gateway but order update failed",
			"order_id", o.ID, "refund_id", ref.ID, "err", res.Error)
		return RefundResult{}, apperr.PersistenceErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// A concurrent refund won between our read and write; surface it.
		return RefundResult{}, apperr.AlreadyRefundedErr("Order has already been refunded.")
	}

	o.Status = newStatus
	o.RefundID = &ref.ID
	o.RefundAmount = &refunded
	o.RefundedAt = &now
	o.UpdatedAt = now

	s.logger.InfoContext(ctx, "order refunded",
		"order_id", o.ID, "refund_id", ref.ID, "amount", refunded.String(), "status", newStatus)

	// Fire-and-forget: a mail failure must not fail the refund.
	if s.mail != nil && o.BuyerEmail != "" {
		if err := email.SendRefundNotice(ctx, s.mail, o.BuyerEmail, o.ID, refunded.StringFixed(2)); err != nil {
			s.logger.ErrorContext(ctx, "refund notice email failed", "order_id", o.ID, "err", err)
		}
	}

	return RefundResult{Refund: ref, Order: o}, nil
}
