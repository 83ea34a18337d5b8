package connect_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nyozov/services/internal/modules/connect"
	"github.com/nyozov/services/internal/modules/payments"
	"github.com/nyozov/services/internal/modules/users"
	"github.com/nyozov/services/internal/shared/apperr"
	"github.com/nyozov/services/internal/testutil"
)

type fakeGateway struct {
	account            payments.Account
	createAccountCalls int
}

func (f *fakeGateway) CreateCheckoutSession(context.Context, payments.CheckoutSessionParams) (payments.CheckoutSession, error) {
	return payments.CheckoutSession{}, nil
}
func (f *fakeGateway) GetCheckoutSession(context.Context, string) (payments.CheckoutSession, error) {
	return payments.CheckoutSession{}, nil
}
func (f *fakeGateway) CreatePaymentIntent(context.Context, payments.PaymentIntentParams) (payments.PaymentIntent, error) {
	return payments.PaymentIntent{}, nil
}
func (f *fakeGateway) GetPaymentIntent(context.Context, string) (payments.PaymentIntent, error) {
	return payments.PaymentIntent{}, nil
}
func (f *fakeGateway) CreateRefund(context.Context, payments.RefundParams) (payments.Refund, error) {
	return payments.Refund{}, nil
}
func (f *fakeGateway) CreateAccount(context.Context, string) (payments.Account, error) {
	f.createAccountCalls++
	return f.account, nil
}
func (f *fakeGateway) GetAccount(context.Context, string) (payments.Account, error) {
	return f.account, nil
}
func (f *fakeGateway) CreateAccountLink(_ context.Context, _, refreshURL, returnURL string) (string, error) {
	return "https://connect.example/onboard?refresh=" + refreshURL + "&return=" + returnURL, nil
}
func (f *fakeGateway) CreateLoginLink(context.Context, string) (string, error) {
	return "https://connect.example/dashboard", nil
}
func (f *fakeGateway) VerifyEvent([]byte, string) (payments.Event, error) {
	return payments.Event{}, nil
}

func seedUser(t *testing.T, db *gorm.DB) users.User {
	t.Helper()
	now := time.Now()
	u := users.User{
		ID:         uuid.NewString(),
		ExternalID: "ext_seller",
		Email:      "seller@example.com",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestEnsureAccountCreatesOnce(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db)

	gw := &fakeGateway{account: payments.Account{ID: "acct_1"}}
	svc := connect.NewService(db, gw, users.NewService(db), nil)

	id1, err := svc.EnsureAccount(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, "acct_1", id1)

	// Second call reuses the persisted account.
	id2, err := svc.EnsureAccount(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, "acct_1", id2)
	assert.Equal(t, 1, gw.createAccountCalls)
}

func TestAccountStatusLatchesOnboarding(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db)

	gw := &fakeGateway{account: payments.Account{ID: "acct_2"}}
	svc := connect.NewService(db, gw, users.NewService(db), nil)

	// No account yet: an all-false view, not an error.
	st, err := svc.AccountStatus(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.False(t, st.HasAccount)

	_, err = svc.EnsureAccount(context.Background(), u.ExternalID)
	require.NoError(t, err)

	// Details not submitted yet.
	st, err = svc.AccountStatus(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.True(t, st.HasAccount)
	assert.False(t, st.OnboardingComplete)

	// Provider reports submitted: the flag latches.
	gw.account.DetailsSubmitted = true
	gw.account.ChargesEnabled = true

	st, err = svc.AccountStatus(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.True(t, st.OnboardingComplete)

	var persisted users.User
	require.NoError(t, db.First(&persisted, "id = ?", u.ID).Error)
	assert.True(t, persisted.StripeOnboardingComplete)

	// Latched even if the provider later reports not submitted.
	gw.account.DetailsSubmitted = false
	st, err = svc.AccountStatus(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.True(t, st.OnboardingComplete)
}

func TestDashboardLinkRequiresAccount(t *testing.T) {
	db := testutil.OpenDB(t)
	u := seedUser(t, db)

	gw := &fakeGateway{account: payments.Account{ID: "acct_3"}}
	svc := connect.NewService(db, gw, users.NewService(db), nil)

	_, err := svc.DashboardLink(context.Background(), u.ExternalID)
	assert.True(t, apperr.IsKind(err, apperr.Invalid))

	_, err = svc.EnsureAccount(context.Background(), u.ExternalID)
	require.NoError(t, err)

	url, err := svc.DashboardLink(context.Background(), u.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example/dashboard", url)
}
