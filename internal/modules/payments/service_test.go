package payments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyozov/services/internal/modules/orders"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/testutil"
)

func TestCreateCheckoutPersistsPendingOrder(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	gw := &fakeGateway{session: payments.CheckoutSession{
		ID:  "cs_test_1",
		URL: "https://pay.example/cs_test_1",
	}}
	svc := payments.NewService(db, gw, nil)

	res, err := svc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID:     item.ID,
		BuyerEmail: "buyer@example.com",
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_test_1", res.CheckoutURL)

	o, err := svc.OrderBySessionID(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, "buyer@example.com", o.BuyerEmail)
	assert.Equal(t, "100.00", o.Amount.StringFixed(2))
	assert.Equal(t, "10.00", o.PlatformFee.StringFixed(2))
	assert.Nil(t, o.PaymentID)
}

func TestCreateCheckoutReplayReusesOrder(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	gw := &fakeGateway{session: payments.CheckoutSession{ID: "cs_replay", URL: "https://pay.example/cs_replay"}}
	svc := payments.NewService(db, gw, nil)

	in := payments.CreateCheckoutInput{
		ItemID:         item.ID,
		BuyerEmail:     "buyer@example.com",
		IdempotencyKey: "idem-1",
	}
	first, err := svc.CreateCheckout(context.Background(), in)
	require.NoError(t, err)

	// The gateway replays the same session for the same idempotency key;
	// the second call must converge on the first order row.
	second, err := svc.CreateCheckout(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)

	var count int64
	require.NoError(t, db.Model(&orders.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateCheckoutSellerNotPayable(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	svc := payments.NewService(db, &fakeGateway{}, nil)

	// Onboarding started but never finished.
	require.NoError(t, db.Model(&users.User{}).
		Where("1 = 1").Update("stripe_onboarding_complete", false).Error)

	_, err := svc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID: item.ID, BuyerEmail: "b@example.com",
	})
	assert.True(t, apperr.IsKind(err, apperr.SellerNotPayable))

	// No account at all.
	require.NoError(t, db.Model(&users.User{}).
		Where("1 = 1").Update("stripe_account_id", nil).Error)

	_, err = svc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID: item.ID, BuyerEmail: "b@example.com",
	})
	assert.True(t, apperr.IsKind(err, apperr.SellerNotPayable))
}

func TestCreateOrderFromIntentIsIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	svc := payments.NewService(db, &fakeGateway{}, nil)

	intent := payments.PaymentIntent{
		ID:           "pi_test_1",
		ReceiptEmail: "buyer@example.com",
		Metadata:     map[string]string{"itemId": item.ID, "platformFee": "1000"},
	}

	var firstID string
	for i := 0; i < 3; i++ {
		o, created, err := svc.CreateOrderFromIntent(context.Background(), intent)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusPaid, o.Status)
		if i == 0 {
			firstID = o.ID
			assert.True(t, created)
		} else {
			assert.Equal(t, firstID, o.ID)
			assert.False(t, created)
		}
	}

	var count int64
	require.NoError(t, db.Model(&orders.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrderFromIntentSnapshotsShipping(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	svc := payments.NewService(db, &fakeGateway{}, nil)

	o, _, err := svc.CreateOrderFromIntent(context.Background(), payments.PaymentIntent{
		ID:           "pi_ship",
		ReceiptEmail: "buyer@example.com",
		Metadata:     map[string]string{"itemId": item.ID},
		Shipping: &payments.ShippingDetails{
			Name:  "Ada Lovelace",
			Line1: "12 Analytical Way",
			City:  "London",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(o.ShippingAddress), "Ada Lovelace")
}

func TestCreateOrderFromIntentMissingMetadata(t *testing.T) {
	db := testutil.OpenDB(t)
	seedItem(t, db)

	svc := payments.NewService(db, &fakeGateway{}, nil)

	_, _, err := svc.CreateOrderFromIntent(context.Background(), payments.PaymentIntent{
		ID: "pi_no_meta",
	})
	assert.True(t, apperr.IsKind(err, apperr.MissingMetadata))
}

func TestUpdateOrderStatusSkipsForbiddenTransition(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	gw := &fakeGateway{session: payments.CheckoutSession{ID: "cs_up", URL: "u"}}
	svc := payments.NewService(db, gw, nil)

	_, err := svc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID: item.ID, BuyerEmail: "b@example.com",
	})
	require.NoError(t, err)

	o, err := svc.UpdateOrderStatus(context.Background(), "cs_up", orders.StatusPaid, "pi_up")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, o.Status)
	require.NotNil(t, o.PaymentID)
	assert.Equal(t, "pi_up", *o.PaymentID)

	// Re-applying the same transition is a silent no-op.
	again, err := svc.UpdateOrderStatus(context.Background(), "cs_up", orders.StatusPaid, "pi_up")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, again.Status)

	// A paid order cannot go back to cancelled.
	back, err := svc.UpdateOrderStatus(context.Background(), "cs_up", orders.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, back.Status)
}

func TestVerifyCheckoutSessionReconcilesPaid(t *testing.T) {
	db := testutil.OpenDB(t)
	item := seedItem(t, db)

	gw := &fakeGateway{session: payments.CheckoutSession{
		ID:            "cs_verify",
		URL:           "u",
		PaymentStatus: "unpaid",
	}}
	svc := payments.NewService(db, gw, nil)

	_, err := svc.CreateCheckout(context.Background(), payments.CreateCheckoutInput{
		ItemID: item.ID, BuyerEmail: "b@example.com",
	})
	require.NoError(t, err)

	// Still unpaid at the gateway: order stays pending.
	o, err := svc.VerifyCheckoutSession(context.Background(), "cs_verify")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, o.Status)

	// The gateway now reports paid.
	gw.session.PaymentStatus = "paid"
	gw.session.PaymentIntentID = "pi_verify"

	o, err = svc.VerifyCheckoutSession(context.Background(), "cs_verify")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, o.Status)
	require.NotNil(t, o.PaymentID)
	assert.Equal(t, "pi_verify", *o.PaymentID)
}
