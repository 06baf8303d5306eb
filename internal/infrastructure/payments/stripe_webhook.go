package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

type StripeWebhookVerifier struct {
	secret string
}

var _ interfaces.IWebhookVerifier = (*StripeWebhookVerifier)(nil)

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{secret: secret}
}

func (v *StripeWebhookVerifier) Provider() string { return "stripe" }

func (v *StripeWebhookVerifier) VerifyAndParse(payload []byte, headers http.Header) (*interfaces.GatewayEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, headers.Get("Stripe-Signature"), v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Printf("[webhook][stripe] signature rejected err=%v", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidWebhookSignature, err)
	}

	out := &interfaces.GatewayEvent{Provider: v.Provider(), EventID: event.ID, Type: string(event.Type)}
	switch event.Type {
	case "payment_intent.amount_capturable_updated",
		"payment_intent.succeeded",
		"payment_intent.payment_failed",
		"payment_intent.canceled",
		"payment_intent.processing":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("[webhook][stripe] unreadable payment intent event_id=%s err=%v", event.ID, err)
			return nil, nil
		}
		out.GatewayRef = pi.ID
		out.BookingID = pi.Metadata["booking_id"]
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			log.Printf("[webhook][stripe] unreadable charge event_id=%s err=%v", event.ID, err)
			return nil, nil
		}
		if ch.PaymentIntent != nil {
			out.GatewayRef = ch.PaymentIntent.ID
		}
		out.BookingID = ch.Metadata["booking_id"]
	default:
		return nil, nil
	}
	if out.GatewayRef == "" && out.BookingID == "" {
		return nil, nil
	}
	return out, nil
}
