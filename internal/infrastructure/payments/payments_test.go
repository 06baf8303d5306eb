package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

func TestMockGateway_Lifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewMockGateway()

	auth, err := g.Authorize(ctx, interfaces.AuthorizeRequest{
		BookingID: "bk-1", AmountMinor: 5000, Currency: "gbp",
		PaymentMethodRef: "pm_card_visa", IdempotencyKey: "bk-1:auth:2:1",
	})
	require.NoError(t, err)
	assert.Equal(t, interfaces.GatewayStatusAuthorized, auth.Status)

	replay, err := g.Authorize(ctx, interfaces.AuthorizeRequest{BookingID: "bk-1", AmountMinor: 5000, IdempotencyKey: "bk-1:auth:2:1"})
	require.NoError(t, err)
	assert.Equal(t, auth.GatewayRef, replay.GatewayRef)

	found, ok, err := g.Lookup(ctx, "bk-1:auth:2:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, auth.GatewayRef, found.GatewayRef)

	_, err = g.Capture(ctx, interfaces.CaptureRequest{GatewayRef: auth.GatewayRef, AmountMinor: 6000})
	assert.True(t, errors.Is(err, interfaces.ErrGatewayTerminal))

	captured, err := g.Capture(ctx, interfaces.CaptureRequest{GatewayRef: auth.GatewayRef, AmountMinor: 4500})
	require.NoError(t, err)
	assert.Equal(t, interfaces.GatewayStatusCaptured, captured.Status)
	assert.Equal(t, int64(4500), captured.AmountMinor)

	_, err = g.Cancel(ctx, auth.GatewayRef, "k")
	assert.True(t, errors.Is(err, interfaces.ErrGatewayTerminal))

	ref, err := g.Refund(ctx, auth.GatewayRef, "k")
	require.NoError(t, err)
	assert.Equal(t, interfaces.GatewayStatusRefunded, ref.Status)

	st, err := g.GetStatus(ctx, auth.GatewayRef)
	require.NoError(t, err)
	assert.Equal(t, interfaces.GatewayStatusRefunded, st.Status)
}

func TestMockGateway_Failures(t *testing.T) {
	ctx := context.Background()
	g := NewMockGateway()

	_, err := g.Authorize(ctx, interfaces.AuthorizeRequest{PaymentMethodRef: "pm_decline_insufficient", IdempotencyKey: "a"})
	assert.True(t, errors.Is(err, interfaces.ErrGatewayTerminal))
	assert.Equal(t, "card_declined", interfaces.GatewayErrorCode(err))

	_, err = g.Authorize(ctx, interfaces.AuthorizeRequest{PaymentMethodRef: "pm_transient", IdempotencyKey: "b"})
	assert.True(t, errors.Is(err, interfaces.ErrGatewayTransient))

	_, ok, err := g.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = g.GetStatus(ctx, "mock_missing")
	assert.True(t, errors.Is(err, interfaces.ErrGatewayTerminal))
}

func TestNewGateway(t *testing.T) {
	_, err := NewGateway(GatewaySettings{Name: "stripe"})
	assert.ErrorIs(t, err, ErrMissingStripeSecretKey)

	_, err = NewGateway(GatewaySettings{Name: "mercadopago"})
	assert.ErrorIs(t, err, ErrMissingMercadoPagoAccessToken)

	_, err = NewGateway(GatewaySettings{Name: "paypal"})
	assert.Error(t, err)

	g, err := NewGateway(GatewaySettings{Name: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())

	verifiers := NewWebhookVerifiers(GatewaySettings{StripeWebhookSecret: "whsec_x"})
	assert.Len(t, verifiers, 1)
	assert.Contains(t, verifiers, "stripe")
}

func TestMapStripeError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		transient bool
		code      string
	}{
		{"network", errors.New("dial tcp: timeout"), true, "network_error"},
		{"server", &stripe.Error{HTTPStatusCode: 500, Type: stripe.ErrorTypeAPI}, true, "api_error"},
		{"rate limited", &stripe.Error{HTTPStatusCode: 429, Code: stripe.ErrorCodeRateLimit}, true, "rate_limit"},
		{"declined", &stripe.Error{HTTPStatusCode: 402, Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined, DeclineCode: stripe.DeclineCodeInsufficientFunds}, false, "insufficient_funds"},
		{"bad request", &stripe.Error{HTTPStatusCode: 400, Type: stripe.ErrorTypeInvalidRequest, Code: stripe.ErrorCodeResourceMissing}, false, "resource_missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapStripeError(tc.err)
			assert.Equal(t, tc.transient, errors.Is(got, interfaces.ErrGatewayTransient))
			assert.Equal(t, tc.code, interfaces.GatewayErrorCode(got))
		})
	}
}

func TestStripeResult(t *testing.T) {
	res := stripeResult(&stripe.PaymentIntent{ID: "pi_1", Amount: 5000, AmountCapturable: 5000, Status: stripe.PaymentIntentStatusRequiresCapture})
	assert.Equal(t, interfaces.GatewayStatusAuthorized, res.Status)

	res = stripeResult(&stripe.PaymentIntent{ID: "pi_1", Amount: 5000, AmountReceived: 4500, Status: stripe.PaymentIntentStatusSucceeded})
	assert.Equal(t, interfaces.GatewayStatusCaptured, res.Status)
	assert.Equal(t, int64(4500), res.AmountMinor)

	res = stripeResult(&stripe.PaymentIntent{
		ID:               "pi_1",
		Status:           stripe.PaymentIntentStatusRequiresPaymentMethod,
		LastPaymentError: &stripe.Error{Code: stripe.ErrorCodeCardDeclined, DeclineCode: stripe.DeclineCodeExpiredCard},
	})
	assert.Equal(t, interfaces.GatewayStatusFailed, res.Status)
	assert.Equal(t, "expired_card", res.FailureCode)
}

func TestMercadoPagoResult(t *testing.T) {
	cases := map[string]interfaces.GatewayStatus{
		"authorized": interfaces.GatewayStatusAuthorized,
		"approved":   interfaces.GatewayStatusCaptured,
		"in_process": interfaces.GatewayStatusPending,
		"cancelled":  interfaces.GatewayStatusCanceled,
		"refunded":   interfaces.GatewayStatusRefunded,
		"rejected":   interfaces.GatewayStatusFailed,
	}
	for status, want := range cases {
		res := mercadoPagoResult(&payment.Response{ID: 42, Status: status, StatusDetail: "cc_rejected_insufficient_amount", TransactionAmount: 45.5})
		assert.Equal(t, want, res.Status, status)
		assert.Equal(t, "42", res.GatewayRef)
		assert.Equal(t, int64(4550), res.AmountMinor)
	}

	_, err := mercadoPagoID("pi_abc")
	assert.True(t, errors.Is(err, interfaces.ErrGatewayTerminal))
	assert.Equal(t, int64(1999), floatToMinor(minorToFloat(1999)))
}

func TestStripeWebhookVerifier(t *testing.T) {
	v := NewStripeWebhookVerifier("whsec_test")
	sign := func(body string) http.Header {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   []byte(body),
			Secret:    "whsec_test",
			Timestamp: time.Now(),
		})
		h := http.Header{}
		h.Set("Stripe-Signature", signed.Header)
		return h
	}

	t.Run("payment intent event", func(t *testing.T) {
		body := `{"id":"evt_1","object":"event","type":"payment_intent.amount_capturable_updated","data":{"object":{"id":"pi_1","object":"payment_intent","metadata":{"booking_id":"bk-1"}}}}`
		ev, err := v.VerifyAndParse([]byte(body), sign(body))
		require.NoError(t, err)
		require.NotNil(t, ev)
		assert.Equal(t, "evt_1", ev.EventID)
		assert.Equal(t, "pi_1", ev.GatewayRef)
		assert.Equal(t, "bk-1", ev.BookingID)
	})

	t.Run("charge refunded", func(t *testing.T) {
		body := `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_9","metadata":{}}}}`
		ev, err := v.VerifyAndParse([]byte(body), sign(body))
		require.NoError(t, err)
		require.NotNil(t, ev)
		assert.Equal(t, "pi_9", ev.GatewayRef)
	})

	t.Run("ignored type", func(t *testing.T) {
		body := `{"id":"evt_3","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`
		ev, err := v.VerifyAndParse([]byte(body), sign(body))
		require.NoError(t, err)
		assert.Nil(t, ev)
	})

	t.Run("bad signature", func(t *testing.T) {
		body := `{"id":"evt_4","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`
		h := http.Header{}
		h.Set("Stripe-Signature", "t=1,v1=deadbeef")
		_, err := v.VerifyAndParse([]byte(body), h)
		assert.ErrorIs(t, err, interfaces.ErrInvalidWebhookSignature)
	})
}

func TestMercadoPagoWebhookVerifier(t *testing.T) {
	v := NewMercadoPagoWebhookVerifier("mp_secret")
	body := []byte(`{"id":9001,"type":"payment","action":"payment.updated","data":{"id":"123456"}}`)
	headers := func(sig string) http.Header {
		h := http.Header{}
		h.Set("x-request-id", "req-1")
		h.Set("x-signature", sig)
		return h
	}
	valid := "ts=1700000000,v1=" + v.sign(mercadoPagoManifest("123456", "req-1", "1700000000"))

	ev, err := v.VerifyAndParse(body, headers(valid))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "123456", ev.GatewayRef)
	assert.Equal(t, "9001", ev.EventID)
	assert.Equal(t, "payment.updated", ev.Type)

	_, err = v.VerifyAndParse(body, headers("ts=1700000000,v1=00ff"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidWebhookSignature)

	_, err = v.VerifyAndParse(body, headers(""))
	assert.ErrorIs(t, err, interfaces.ErrInvalidWebhookSignature)

	other := []byte(`{"id":1,"type":"merchant_order","data":{"id":"77"}}`)
	sig := "ts=1,v1=" + v.sign(mercadoPagoManifest("77", "req-1", "1"))
	ev, err = v.VerifyAndParse(other, headers(sig))
	require.NoError(t, err)
	assert.Nil(t, ev)
}
