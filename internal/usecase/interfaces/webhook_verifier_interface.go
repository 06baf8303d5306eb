package interfaces

import (
	"errors"
	"net/http"
)

var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

// IWebhookVerifier authenticates a processor webhook and normalizes it.
//
// A nil event with a nil error means the event is authentic but irrelevant.
type IWebhookVerifier interface {
	Provider() string
	VerifyAndParse(payload []byte, headers http.Header) (*GatewayEvent, error)
}

// GatewayEvent is a verified, processor-neutral status-change hint. It never
// drives a transition on its own: it only triggers a reconciliation.
type GatewayEvent struct {
	Provider   string
	EventID    string
	Type       string
	BookingID  string
	GatewayRef string
}
