package stripegw

import (
	"context"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/nyozov/services/internal/modules/payments"
)

// Gateway implements payments.Gateway against Stripe. The API client is
// constructed here and injected wherever needed; nothing goes through
// the SDK's package-level singleton.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api, webhookSecret: webhookSecret}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, p payments.CheckoutSessionParams) (payments.CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(p.ItemName),
	}
	// Optional fields are only forwarded when present.
	if p.ItemDescription != "" {
		product.Description = stripe.String(p.ItemDescription)
	}
	if p.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{p.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(p.BuyerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(string(stripe.CurrencyUSD)),
					ProductData: product,
					UnitAmount:  stripe.Int64(p.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.PlatformFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.Destination),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return payments.CheckoutSession{}, err
	}
	return mapSession(sess), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, id string) (payments.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return payments.CheckoutSession{}, err
	}
	return mapSession(sess), nil
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, p payments.PaymentIntentParams) (payments.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(p.AmountCents),
		Currency:             stripe.String(string(stripe.CurrencyUSD)),
		ApplicationFeeAmount: stripe.Int64(p.PlatformFeeCents),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.Destination),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if p.BuyerEmail != "" {
		params.ReceiptEmail = stripe.String(p.BuyerEmail)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return payments.PaymentIntent{}, err
	}
	return mapIntent(pi), nil
}

func (g *Gateway) GetPaymentIntent(ctx context.Context, id string) (payments.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return payments.PaymentIntent{}, err
	}
	return mapIntent(pi), nil
}

func (g *Gateway) CreateRefund(ctx context.Context, p payments.RefundParams) (payments.Refund, error) {
	params := &stripe.RefundParams{
		Charge:               stripe.String(p.ChargeID),
		ReverseTransfer:      stripe.Bool(p.ReverseTransfer),
		RefundApplicationFee: stripe.Bool(p.RefundApplicationFee),
	}
	params.Context = ctx
	if p.AmountCents > 0 {
		params.Amount = stripe.Int64(p.AmountCents)
	}

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return payments.Refund{}, err
	}
	return payments.Refund{ID: r.ID, AmountCents: r.Amount, Status: string(r.Status)}, nil
}

func (g *Gateway) CreateAccount(ctx context.Context, email string) (payments.Account, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	params.Context = ctx

	a, err := g.api.Accounts.New(params)
	if err != nil {
		return payments.Account{}, err
	}
	return mapAccount(a), nil
}

func (g *Gateway) GetAccount(ctx context.Context, id string) (payments.Account, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	a, err := g.api.Accounts.GetByID(id, params)
	if err != nil {
		return payments.Account{}, err
	}
	return mapAccount(a), nil
}

func (g *Gateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := g.api.AccountLinks.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func (g *Gateway) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.LoginLinkParams{Account: stripe.String(accountID)}
	params.Context = ctx

	link, err := g.api.LoginLinks.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

func mapSession(s *stripe.CheckoutSession) payments.CheckoutSession {
	out := payments.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}

func mapIntent(pi *stripe.PaymentIntent) payments.PaymentIntent {
	out := payments.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Status:       string(pi.Status),
		ReceiptEmail: pi.ReceiptEmail,
		Metadata:     pi.Metadata,
	}
	if pi.LatestCharge != nil {
		out.LatestChargeID = pi.LatestCharge.ID
	}
	if pi.Shipping != nil {
		sd := &payments.ShippingDetails{Name: pi.Shipping.Name}
		if pi.Shipping.Address != nil {
			sd.Line1 = pi.Shipping.Address.Line1
			sd.Line2 = pi.Shipping.Address.Line2
			sd.City = pi.Shipping.Address.City
			sd.State = pi.Shipping.Address.State
			sd.PostalCode = pi.Shipping.Address.PostalCode
			sd.Country = pi.Shipping.Address.Country
		}
		out.Shipping = sd
	}
	return out
}

func mapAccount(a *stripe.Account) payments.Account {
	return payments.Account{
		ID:               a.ID,
		DetailsSubmitted: a.DetailsSubmitted,
		ChargesEnabled:   a.ChargesEnabled,
		PayoutsEnabled:   a.PayoutsEnabled,
	}
}
