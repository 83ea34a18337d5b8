package payments_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/email"
	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/testutil"
)

// paidOrder runs the checkout flow to a paid order with a payment id.
func paidOrder(t *testing.T, db *gorm.DB, gw *fakeGateway) orders.Order {
	t.Helper()

	item := seedItem(t, db)
	svc := payments.NewService(db, gw, nil)

	gw.session = payments.CheckoutSession{ID: "cs_ref", URL: "u"}
	_, err := svc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID: item.ID, BuyerEmail: "buyer@example.com",
	})
	require.NoError(t, err)

	o, err := svc.UpdateOrderStatus(context.Background(), "cs_ref", orders.StatusPaid, "pi_ref")
	require.NoError(t, err)
	return o
}

func TestRefundOrderFull(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		intent: payments.PaymentIntent{ID: "pi_ref", LatestChargeID: "ch_ref"},
		refund: payments.Refund{ID: "re_1", AmountCents: 10000, Status: "succeeded"},
	}
	o := paidOrder(t, db, gw)

	svc := payments.NewRefundService(db, gw, nil, nil)
	res, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID})
	require.NoError(t, err)

	assert.Equal(t, orders.StatusRefunded, res.Order.Status)
	require.NotNil(t, res.Order.RefundAmount)
	assert.Equal(t, "100.00", res.Order.RefundAmount.StringFixed(2))

	// The gateway call reversed the seller transfer and took no amount,
	// which the provider treats as a full refund.
	require.Len(t, gw.refundCalls, 1)
	assert.True(t, gw.refundCalls[0].ReverseTransfer)
	assert.True(t, gw.refundCalls[0].RefundApplicationFee)
	assert.Equal(t, int64(0), gw.refundCalls[0].AmountCents)
	assert.Equal(t, "ch_ref", gw.refundCalls[0].ChargeID)
}

func TestRefundOrderPartial(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		intent: payments.PaymentIntent{ID: "pi_ref", LatestChargeID: "ch_ref"},
		refund: payments.Refund{ID: "re_2", Status: "succeeded"},
	}
	o := paidOrder(t, db, gw)

	amount := decimal.RequireFromString("30.00")
	svc := payments.NewRefundService(db, gw, nil, nil)
	res, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID, Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPartiallyRefunded, res.Order.Status)
	require.NotNil(t, res.Order.RefundAmount)
	assert.Equal(t, "30.00", res.Order.RefundAmount.StringFixed(2))
	require.Len(t, gw.refundCalls, 1)
	assert.Equal(t, int64(3000), gw.refundCalls[0].AmountCents)
}

func TestRefundOrderIsOneShot(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		intent: payments.PaymentIntent{ID: "pi_ref", LatestChargeID: "ch_ref"},
		refund: payments.Refund{ID: "re_3", AmountCents: 10000, Status: "succeeded"},
	}
	o := paidOrder(t, db, gw)

	svc := payments.NewRefundService(db, gw, nil, nil)
	_, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID})
	require.NoError(t, err)

	_, err = svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID})
	assert.True(t, apperr.IsKind(err, apperr.AlreadyRefunded))

	// State unchanged, and no second gateway refund was attempted.
	var after orders.Order
	require.NoError(t, db.First(&after, "id = ?", o.ID).Error)
	assert.Equal(t, orders.StatusRefunded, after.Status)
	assert.Len(t, gw.refundCalls, 1)
}

func TestRefundOrderValidatesAmount(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		intent: payments.PaymentIntent{ID: "pi_ref", LatestChargeID: "ch_ref"},
	}
	o := paidOrder(t, db, gw)
	svc := payments.NewRefundService(db, gw, nil, nil)

	neg := decimal.RequireFromString("-5")
	_, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID, Amount: &neg})
	assert.True(t, apperr.IsKind(err, apperr.Invalid))

	over := decimal.RequireFromString("100.01")
	_, err = svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID, Amount: &over})
	assert.True(t, apperr.IsKind(err, apperr.Invalid))

	assert.Empty(t, gw.refundCalls)
}

func TestRefundOrderNoCharge(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		// The intent never produced a charge.
		intent: payments.PaymentIntent{ID: "pi_ref"},
	}
	o := paidOrder(t, db, gw)

	svc := payments.NewRefundService(db, gw, nil, nil)
	_, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID})
	assert.True(t, apperr.IsKind(err, apperr.NoChargeFound))
}

type recordingSender struct {
	sent []email.Message
}

func (s *recordingSender) Send(_ context.Context, m email.Message) error {
	s.sent = append(s.sent, m)
	return nil
}

func TestRefundOrderEmailsBuyer(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		intent: payments.PaymentIntent{ID: "pi_ref", LatestChargeID: "ch_ref"},
		refund: payments.Refund{ID: "re_4", AmountCents: 3000, Status: "succeeded"},
	}
	o := paidOrder(t, db, gw)

	sender := &recordingSender{}
	amount := decimal.RequireFromString("30.00")
	svc := payments.NewRefundService(db, gw, sender, nil)
	_, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID, Amount: &amount})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "buyer@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "$30.00")
	assert.Contains(t, sender.sent[0].Text, o.ID)
}

func TestRefundOrderMailFailureDoesNotFailRefund(t *testing.T) {
	db := testutil.OpenDB(t)
	gw := &fakeGateway{
		intent: payments.PaymentIntent{ID: "pi_ref", LatestChargeID: "ch_ref"},
		refund: payments.Refund{ID: "re_5", AmountCents: 10000, Status: "succeeded"},
	}
	o := paidOrder(t, db, gw)

	svc := payments.NewRefundService(db, gw, failingSender{}, nil)
	res, err := svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusRefunded, res.Order.Status)
}

func TestRefundOrderRejectsPending(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	gw := &fakeGateway{session: payments.CheckoutSession{ID: "cs_pend", URL: "u"}}
	paySvc := payments.NewService(db, gw, nil)

	res, err := paySvc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID: item.ID, BuyerEmail: "b@example.com",
	})
	require.NoError(t, err)

	svc := payments.NewRefundService(db, gw, nil, nil)
	_, err = svc.RefundOrder(context.Background(), payments.RefundInput{OrderID: res.OrderID})
	assert.True(t, apperr.IsKind(err, apperr.Invalid))
}
