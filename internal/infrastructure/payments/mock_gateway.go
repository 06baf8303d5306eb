package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MockGateway is an in-process gateway for local runs and demos. Payment
// methods starting with "pm_decline" are declined and "pm_transient" fail
// with a retryable error; everything else is approved. Replayed idempotency
// keys return the original result.
type MockGateway struct {
	mu      sync.Mutex
	intents map[string]*mockIntent
	byKey   map[string]string
}

type mockIntent struct {
	ref      string
	status   interfaces.GatewayStatus
	amount   int64
	captured int64
}

var _ interfaces.IPaymentGateway = (*MockGateway)(nil)

func NewMockGateway() *MockGateway {
	log.Printf("[payment][mock] mock gateway enabled")
	return &MockGateway{intents: map[string]*mockIntent{}, byKey: map[string]string{}}
}

func (g *MockGateway) Name() string { return "mock" }

func (i *mockIntent) result() interfaces.GatewayResult {
	amount := i.amount
	if i.status == interfaces.GatewayStatusCaptured || i.status == interfaces.GatewayStatusRefunded {
		amount = i.captured
	}
	return interfaces.GatewayResult{GatewayRef: i.ref, Status: i.status, AmountMinor: amount}
}

func (g *MockGateway) Authorize(_ context.Context, req interfaces.AuthorizeRequest) (interfaces.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ref, ok := g.byKey[req.IdempotencyKey]; ok {
		return g.intents[ref].result(), nil
	}
	switch {
	case strings.HasPrefix(req.PaymentMethodRef, "pm_transient"):
		return interfaces.GatewayResult{}, interfaces.NewTransientError("processing_error", "simulated processor outage", nil)
	case strings.HasPrefix(req.PaymentMethodRef, "pm_decline"):
		return interfaces.GatewayResult{}, interfaces.NewTerminalError("card_declined", "simulated decline", nil)
	}

	intent := &mockIntent{ref: "mock_" + uuid.NewString(), status: interfaces.GatewayStatusAuthorized, amount: req.AmountMinor}
	g.intents[intent.ref] = intent
	g.byKey[req.IdempotencyKey] = intent.ref
	log.Printf("[payment][mock] authorized booking_id=%s ref=%s amount=%d", req.BookingID, intent.ref, req.AmountMinor)
	return intent.result(), nil
}

func (g *MockGateway) intent(ref string) (*mockIntent, error) {
	intent, ok := g.intents[ref]
	if !ok {
		return nil, interfaces.NewTerminalError("resource_missing", "no such payment "+ref, nil)
	}
	return intent, nil
}

func (g *MockGateway) Capture(_ context.Context, req interfaces.CaptureRequest) (interfaces.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, err := g.intent(req.GatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	switch intent.status {
	case interfaces.GatewayStatusCaptured:
		return intent.result(), nil
	case interfaces.GatewayStatusAuthorized:
	default:
		return interfaces.GatewayResult{}, interfaces.NewTerminalError("payment_intent_unexpected_state", "cannot capture "+string(intent.status), nil)
	}
	if req.AmountMinor > intent.amount {
		return interfaces.GatewayResult{}, interfaces.NewTerminalError("amount_too_large", "capture exceeds authorization", nil)
	}
	intent.status = interfaces.GatewayStatusCaptured
	intent.captured = req.AmountMinor
	return intent.result(), nil
}

func (g *MockGateway) Cancel(_ context.Context, gatewayRef, _ string) (interfaces.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, err := g.intent(gatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	switch intent.status {
	case interfaces.GatewayStatusAuthorized, interfaces.GatewayStatusPending:
		intent.status = interfaces.GatewayStatusCanceled
	case interfaces.GatewayStatusCanceled:
	default:
		return interfaces.GatewayResult{}, interfaces.NewTerminalError("payment_intent_unexpected_state", "cannot cancel "+string(intent.status), nil)
	}
	return intent.result(), nil
}

func (g *MockGateway) Refund(_ context.Context, gatewayRef, _ string) (interfaces.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, err := g.intent(gatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	switch intent.status {
	case interfaces.GatewayStatusCaptured:
		intent.status = interfaces.GatewayStatusRefunded
	case interfaces.GatewayStatusRefunded:
	default:
		return interfaces.GatewayResult{}, interfaces.NewTerminalError("charge_not_refundable", "cannot refund "+string(intent.status), nil)
	}
	return intent.result(), nil
}

func (g *MockGateway) GetStatus(_ context.Context, gatewayRef string) (interfaces.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, err := g.intent(gatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	return intent.result(), nil
}

func (g *MockGateway) Lookup(_ context.Context, idempotencyKey string) (interfaces.GatewayResult, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ref, ok := g.byKey[idempotencyKey]
	if !ok {
		return interfaces.GatewayResult{}, false, nil
	}
	return g.intents[ref].result(), true, nil
}
