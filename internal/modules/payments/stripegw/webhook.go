package stripegw

import (
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/nyozov/services/internal/modules/payments"
)

var errNoWebhookSecret = errors.New("webhook signing secret not configured")

// VerifyEvent validates the Stripe-Signature header against the exact
// raw request bytes and only then decodes the payload.
func (g *Gateway) VerifyEvent(payload []byte, sigHeader string) (payments.Event, error) {
	if g.webhookSecret == "" {
		return payments.Event{}, errNoWebhookSecret
	}

	ev, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return payments.Event{}, err
	}

	out := payments.Event{ID: ev.ID, Type: string(ev.Type)}

	switch out.Type {
	case payments.EventCheckoutCompleted, payments.EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return payments.Event{}, fmt.Errorf("decode %s: %w", out.Type, err)
		}
		s := mapSession(&sess)
		out.Session = &s
	case payments.EventIntentSucceeded, payments.EventIntentFailed, payments.EventIntentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return payments.Event{}, fmt.Errorf("decode %s: %w", out.Type, err)
		}
		i := mapIntent(&pi)
		out.Intent = &i
	}

	return out, nil
}
