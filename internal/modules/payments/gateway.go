package payments

import "context"

// Event kinds dispatched by the webhook service. Values follow the
// provider's wire names.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventIntentSucceeded   = "payment_intent.succeeded"
	EventIntentFailed      = "payment_intent.payment_failed"
	EventIntentCanceled    = "payment_intent.canceled"
)

// CheckoutSessionParams configures a destination charge: the buyer pays
// the full amount on the platform account, PlatformFeeCents stays as the
// application fee, the remainder transfers to Destination. Optional
// fields are only forwarded when set.
type CheckoutSessionParams struct {
	BuyerEmail       string
	ItemName         string
	ItemDescription  string // optional
	ImageURL         string // optional
	AmountCents      int64
	PlatformFeeCents int64
	Destination      string
	SuccessURL       string
	CancelURL        string
	IdempotencyKey   string // optional
	Metadata         map[string]string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string // "paid" | "unpaid" | "no_payment_required"
	PaymentIntentID string
}

type PaymentIntentParams struct {
	AmountCents      int64
	PlatformFeeCents int64
	Destination      string
	BuyerEmail       string // optional
	IdempotencyKey   string // optional
	Metadata         map[string]string
}

type PaymentIntent struct {
	ID             string
	ClientSecret   string
	AmountCents    int64
	Status         string
	ReceiptEmail   string
	Metadata       map[string]string
	LatestChargeID string
	Shipping       *ShippingDetails
}

type ShippingDetails struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// RefundParams: AmountCents 0 means refund the full charge.
// ReverseTransfer claws back the seller payout; RefundApplicationFee
// claws back the platform's own fee.
type RefundParams struct {
	ChargeID             string
	AmountCents          int64
	ReverseTransfer      bool
	RefundApplicationFee bool
}

type Refund struct {
	ID          string
	AmountCents int64
	Status      string
}

type Account struct {
	ID               string
	DetailsSubmitted bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
}

// Event is a verified provider notification. Exactly one of Session or
// Intent is set, depending on Type.
type Event struct {
	ID      string
	Type    string
	Session *CheckoutSession
	Intent  *PaymentIntent
}

// Gateway wraps the external payment provider's remote API. One
// implementation per provider; constructed once at startup and injected.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (PaymentIntent, error)
	CreateRefund(ctx context.Context, p RefundParams) (Refund, error)

	CreateAccount(ctx context.Context, email string) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreateLoginLink(ctx context.Context, accountID string) (string, error)

	// VerifyEvent checks the signature over the exact raw bytes before
	// any field is trusted.
	VerifyEvent(payload []byte, sigHeader string) (Event, error)
}
