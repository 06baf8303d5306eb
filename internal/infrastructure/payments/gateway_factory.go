package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"fmt"
)

// GatewaySettings is the subset of configuration the gateway adapters need.
type GatewaySettings struct {
	Name                    string
	StripeSecretKey         string
	StripeWebhookSecret     string
	MercadoPagoAccessToken  string
	MercadoPagoWebhookToken string
}

// NewGateway builds the configured processor adapter.
func NewGateway(s GatewaySettings) (interfaces.IPaymentGateway, error) {
	switch s.Name {
	case "stripe":
		return NewStripeGateway(s.StripeSecretKey)
	case "mercadopago":
		return NewMercadoPagoGateway(s.MercadoPagoAccessToken)
	case "mock":
		return NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_GATEWAY %q", s.Name)
	}
}

// NewWebhookVerifiers returns the verifiers that have a secret configured,
// keyed by provider name.
func NewWebhookVerifiers(s GatewaySettings) map[string]interfaces.IWebhookVerifier {
	out := map[string]interfaces.IWebhookVerifier{}
	if s.StripeWebhookSecret != "" {
		v := NewStripeWebhookVerifier(s.StripeWebhookSecret)
		out[v.Provider()] = v
	}
	if s.MercadoPagoWebhookToken != "" {
		v := NewMercadoPagoWebhookVerifier(s.MercadoPagoWebhookToken)
		out[v.Provider()] = v
	}
	return out
}
