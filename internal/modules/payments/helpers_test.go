package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/items"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/modules/stores"
	"github.com/nyozov/services/internal/modules/users"
)

// fakeGateway is an in-memory payments.Gateway. Tests program the
// responses and inspect the recorded calls.
type fakeGateway struct {
	session payments.CheckoutSession
	intent  payments.PaymentIntent
	refund  payments.Refund

	sessionErr error
	intentErr  error
	refundErr  error

	createSessionCalls int
	createAccountCalls int
	refundCalls        []payments.RefundParams

	account payments.Account
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, _ payments.CheckoutSessionParams) (payments.CheckoutSession, error) {
	f.createSessionCalls++
	return f.session, f.sessionErr
}

func (f *fakeGateway) GetCheckoutSession(_ context.Context, _ string) (payments.CheckoutSession, error) {
	return f.session, f.sessionErr
}

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, _ payments.PaymentIntentParams) (payments.PaymentIntent, error) {
	return f.intent, f.intentErr
}

func (f *fakeGateway) GetPaymentIntent(_ context.Context, _ string) (payments.PaymentIntent, error) {
	return f.intent, f.intentErr
}

func (f *fakeGateway) CreateRefund(_ context.Context, p payments.RefundParams) (payments.Refund, error) {
	f.refundCalls = append(f.refundCalls, p)
	if f.refundErr != nil {
		return payments.Refund{}, f.refundErr
	}
	r := f.refund
	if r.AmountCents == 0 && p.AmountCents > 0 {
		r.AmountCents = p.AmountCents
	}
	return r, nil
}

func (f *fakeGateway) CreateAccount(_ context.Context, _ string) (payments.Account, error) {
	f.createAccountCalls++
	return f.account, nil
}

func (f *fakeGateway) GetAccount(_ context.Context, _ string) (payments.Account, error) {
	return f.account, nil
}

func (f *fakeGateway) CreateAccountLink(_ context.Context, _, _, _ string) (string, error) {
	return "https://connect.example/onboard", nil
}

func (f *fakeGateway) CreateLoginLink(_ context.Context, _ string) (string, error) {
	return "https://connect.example/dashboard", nil
}

func (f *fakeGateway) VerifyEvent(_ []byte, _ string) (payments.Event, error) {
	return payments.Event{}, nil
}

// seedItem creates a payable seller with one store and one item priced
// at 100.00.
func seedItem(t *testing.T, db *gorm.DB) items.Item {
	t.Helper()
	return seedItemPriced(t, db, decimal.NewFromInt(100))
}

func seedItemPriced(t *testing.T, db *gorm.DB, price decimal.Decimal) items.Item {
	t.Helper()

	now := time.Now()
	acct := "acct_" + uuid.NewString()[:8]
	u := users.User{
		ID:                       uuid.NewString(),
		ExternalID:               "ext_" + uuid.NewString()[:8],
		Email:                    "seller@example.com",
		StripeAccountID:          &acct,
		StripeOnboardingComplete: true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	require.NoError(t, db.Create(&u).Error)

	st := stores.Store{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Name:      "Test Store",
		Slug:      "test-store-" + uuid.NewString()[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&st).Error)

	it := items.Item{
		ID:        uuid.NewString(),
		StoreID:   st.ID,
		Name:      "Handmade Mug",
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&it).Error)

	return it
}
