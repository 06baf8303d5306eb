package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

var ErrMissingStripeSecretKey = errors.New("missing STRIPE_SECRET_KEY")

// StripeGateway authorizes with manual-capture PaymentIntents confirmed
// off-session against the customer's saved payment method.
type StripeGateway struct {
	client *client.API
}

var _ interfaces.IPaymentGateway = (*StripeGateway)(nil)

func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if strings.TrimSpace(secretKey) == "" {
		log.Printf("[payment][stripe] missing STRIPE_SECRET_KEY")
		return nil, ErrMissingStripeSecretKey
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	log.Printf("[payment][stripe] client initialized")
	return &StripeGateway{client: sc}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) Authorize(ctx context.Context, req interfaces.AuthorizeRequest) (interfaces.GatewayResult, error) {
	log.Printf("[payment][stripe] authorize start booking_id=%s amount=%d key=%s", req.BookingID, req.AmountMinor, req.IdempotencyKey)
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.PaymentMethodRef),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String(req.Description),
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("customer_id", req.CustomerID)
	params.AddMetadata("idempotency_key", req.IdempotencyKey)
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.Context = ctx

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		log.Printf("[payment][stripe] authorize failed booking_id=%s err=%v", req.BookingID, err)
		return interfaces.GatewayResult{}, mapStripeError(err)
	}
	res := stripeResult(pi)
	log.Printf("[payment][stripe] authorize done booking_id=%s ref=%s status=%s", req.BookingID, res.GatewayRef, pi.Status)
	return res, nil
}

func (g *StripeGateway) Capture(ctx context.Context, req interfaces.CaptureRequest) (interfaces.GatewayResult, error) {
	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(req.AmountMinor),
	}
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.Context = ctx

	pi, err := g.client.PaymentIntents.Capture(req.GatewayRef, params)
	if err != nil {
		log.Printf("[payment][stripe] capture failed ref=%s err=%v", req.GatewayRef, err)
		return interfaces.GatewayResult{}, mapStripeError(err)
	}
	return stripeResult(pi), nil
}

func (g *StripeGateway) Cancel(ctx context.Context, gatewayRef, idempotencyKey string) (interfaces.GatewayResult, error) {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	}
	params.SetIdempotencyKey(idempotencyKey)
	params.Context = ctx

	pi, err := g.client.PaymentIntents.Cancel(gatewayRef, params)
	if err != nil {
		log.Printf("[payment][stripe] cancel failed ref=%s err=%v", gatewayRef, err)
		return interfaces.GatewayResult{}, mapStripeError(err)
	}
	return stripeResult(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, gatewayRef, idempotencyKey string) (interfaces.GatewayResult, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(gatewayRef)}
	params.SetIdempotencyKey(idempotencyKey)
	params.Context = ctx

	r, err := g.client.Refunds.New(params)
	if err != nil {
		log.Printf("[payment][stripe] refund failed ref=%s err=%v", gatewayRef, err)
		return interfaces.GatewayResult{}, mapStripeError(err)
	}
	status := interfaces.GatewayStatusRefunded
	switch r.Status {
	case stripe.RefundStatusPending, stripe.RefundStatusRequiresAction:
		status = interfaces.GatewayStatusPending
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		return interfaces.GatewayResult{}, interfaces.NewTerminalError("refund_"+string(r.Status), "refund not completed", nil)
	}
	return interfaces.GatewayResult{GatewayRef: gatewayRef, Status: status, AmountMinor: r.Amount}, nil
}

func (g *StripeGateway) GetStatus(ctx context.Context, gatewayRef string) (interfaces.GatewayResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.Context = ctx

	pi, err := g.client.PaymentIntents.Get(gatewayRef, params)
	if err != nil {
		return interfaces.GatewayResult{}, mapStripeError(err)
	}
	return stripeResult(pi), nil
}

// Lookup searches by the idempotency key stored in metadata. Search is
// eventually consistent, so a very fresh intent may not be found yet; callers
// only look up attempts older than the pending-authorization window.
func (g *StripeGateway) Lookup(ctx context.Context, idempotencyKey string) (interfaces.GatewayResult, bool, error) {
	params := &stripe.PaymentIntentSearchParams{}
	params.Query = fmt.Sprintf("metadata['idempotency_key']:'%s'", strings.ReplaceAll(idempotencyKey, "'", ""))
	params.Context = ctx

	iter := g.client.PaymentIntents.Search(params)
	if iter.Next() {
		return stripeResult(iter.PaymentIntent()), true, nil
	}
	if err := iter.Err(); err != nil {
		return interfaces.GatewayResult{}, false, mapStripeError(err)
	}
	return interfaces.GatewayResult{}, false, nil
}

func stripeResult(pi *stripe.PaymentIntent) interfaces.GatewayResult {
	res := interfaces.GatewayResult{GatewayRef: pi.ID, AmountMinor: pi.Amount}
	switch pi.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		res.Status = interfaces.GatewayStatusAuthorized
		if pi.AmountCapturable > 0 {
			res.AmountMinor = pi.AmountCapturable
		}
	case stripe.PaymentIntentStatusSucceeded:
		res.Status = interfaces.GatewayStatusCaptured
		res.AmountMinor = pi.AmountReceived
		if pi.LatestCharge != nil && pi.LatestCharge.Refunded {
			res.Status = interfaces.GatewayStatusRefunded
		}
	case stripe.PaymentIntentStatusCanceled:
		res.Status = interfaces.GatewayStatusCanceled
	case stripe.PaymentIntentStatusProcessing:
		res.Status = interfaces.GatewayStatusPending
	default:
		// requires_payment_method / requires_action: off-session cannot recover.
		res.Status = interfaces.GatewayStatusFailed
		res.FailureCode = string(pi.Status)
		if pi.LastPaymentError != nil {
			res.FailureCode = stripeErrorCode(pi.LastPaymentError)
		}
	}
	return res
}

func stripeErrorCode(e *stripe.Error) string {
	switch {
	case e.DeclineCode != "":
		return string(e.DeclineCode)
	case e.Code != "":
		return string(e.Code)
	default:
		return string(e.Type)
	}
}

// mapStripeError classifies Stripe failures. Server-side and rate-limit
// failures are transient; card and request errors are terminal.
func mapStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return interfaces.NewTransientError("network_error", err.Error(), err)
	}
	code := stripeErrorCode(se)
	switch {
	case se.HTTPStatusCode >= http.StatusInternalServerError,
		se.HTTPStatusCode == http.StatusTooManyRequests,
		se.Type == stripe.ErrorTypeAPI,
		se.Type == stripe.ErrorTypeIdempotency,
		se.Code == stripe.ErrorCodeIdempotencyKeyInUse,
		se.Code == stripe.ErrorCodeLockTimeout:
		return interfaces.NewTransientError(code, se.Msg, err)
	}
	return interfaces.NewTerminalError(code, se.Msg, err)
}
