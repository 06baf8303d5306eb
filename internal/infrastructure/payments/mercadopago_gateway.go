package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/mperror"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"github.com/shopspring/decimal"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

// MercadoPagoGateway authorizes with capture=false payments. The idempotency
// key travels as external_reference, which is also how Lookup finds an
// attempt.
//
// PaymentMethodRef is "<payment_method_id>:<card_token>", e.g. "visa:ff8080...".
type MercadoPagoGateway struct {
	payments payment.Client
	refunds  refund.Client
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		log.Printf("[payment][mercadopago] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		log.Printf("[payment][mercadopago] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[payment][mercadopago] client initialized")

	return &MercadoPagoGateway{payments: payment.NewClient(cfg), refunds: refund.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

func (g *MercadoPagoGateway) Authorize(ctx context.Context, req interfaces.AuthorizeRequest) (interfaces.GatewayResult, error) {
	log.Printf("[payment][mercadopago] authorize start booking_id=%s amount=%d key=%s", req.BookingID, req.AmountMinor, req.IdempotencyKey)

	// The SDK generates its own idempotency header per call, so a replayed
	// attempt is deduplicated here by external_reference.
	if existing, found, err := g.Lookup(ctx, req.IdempotencyKey); err != nil {
		return interfaces.GatewayResult{}, err
	} else if found {
		log.Printf("[payment][mercadopago] authorize replay booking_id=%s ref=%s", req.BookingID, existing.GatewayRef)
		return existing, nil
	}

	methodID, token, ok := strings.Cut(req.PaymentMethodRef, ":")
	if !ok {
		methodID, token = "", req.PaymentMethodRef
	}
	resp, err := g.payments.Create(ctx, payment.Request{
		TransactionAmount: minorToFloat(req.AmountMinor),
		Description:       req.Description,
		PaymentMethodID:   methodID,
		Token:             token,
		Installments:      1,
		Capture:           false,
		BinaryMode:        true,
		ExternalReference: req.IdempotencyKey,
		Payer:             &payment.PayerRequest{Email: req.CustomerEmail},
		Metadata: map[string]any{
			"booking_id":      req.BookingID,
			"customer_id":     req.CustomerID,
			"idempotency_key": req.IdempotencyKey,
		},
	})
	if err != nil {
		log.Printf("[payment][mercadopago] sdk create failed booking_id=%s err=%v", req.BookingID, err)
		return interfaces.GatewayResult{}, mapMercadoPagoError(err)
	}
	res := mercadoPagoResult(resp)
	log.Printf("[payment][mercadopago] authorize done booking_id=%s ref=%s status=%s detail=%s", req.BookingID, res.GatewayRef, resp.Status, resp.StatusDetail)
	return res, nil
}

func (g *MercadoPagoGateway) Capture(ctx context.Context, req interfaces.CaptureRequest) (interfaces.GatewayResult, error) {
	id, err := mercadoPagoID(req.GatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	resp, err := g.payments.CaptureAmount(ctx, id, minorToFloat(req.AmountMinor))
	if err != nil {
		log.Printf("[payment][mercadopago] capture failed ref=%s err=%v", req.GatewayRef, err)
		return interfaces.GatewayResult{}, mapMercadoPagoError(err)
	}
	return mercadoPagoResult(resp), nil
}

func (g *MercadoPagoGateway) Cancel(ctx context.Context, gatewayRef, _ string) (interfaces.GatewayResult, error) {
	id, err := mercadoPagoID(gatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	resp, err := g.payments.Cancel(ctx, id)
	if err != nil {
		log.Printf("[payment][mercadopago] cancel failed ref=%s err=%v", gatewayRef, err)
		return interfaces.GatewayResult{}, mapMercadoPagoError(err)
	}
	return mercadoPagoResult(resp), nil
}

func (g *MercadoPagoGateway) Refund(ctx context.Context, gatewayRef, _ string) (interfaces.GatewayResult, error) {
	id, err := mercadoPagoID(gatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	resp, err := g.refunds.Create(ctx, id)
	if err != nil {
		log.Printf("[payment][mercadopago] refund failed ref=%s err=%v", gatewayRef, err)
		return interfaces.GatewayResult{}, mapMercadoPagoError(err)
	}
	status := interfaces.GatewayStatusRefunded
	if resp.Status != "approved" {
		status = interfaces.GatewayStatusPending
	}
	return interfaces.GatewayResult{GatewayRef: gatewayRef, Status: status, AmountMinor: floatToMinor(resp.Amount)}, nil
}

func (g *MercadoPagoGateway) GetStatus(ctx context.Context, gatewayRef string) (interfaces.GatewayResult, error) {
	id, err := mercadoPagoID(gatewayRef)
	if err != nil {
		return interfaces.GatewayResult{}, err
	}
	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		return interfaces.GatewayResult{}, mapMercadoPagoError(err)
	}
	return mercadoPagoResult(resp), nil
}

func (g *MercadoPagoGateway) Lookup(ctx context.Context, idempotencyKey string) (interfaces.GatewayResult, bool, error) {
	resp, err := g.payments.Search(ctx, payment.SearchRequest{
		Filters: map[string]string{"external_reference": idempotencyKey},
		Limit:   1,
	})
	if err != nil {
		return interfaces.GatewayResult{}, false, mapMercadoPagoError(err)
	}
	if resp == nil || len(resp.Results) == 0 {
		return interfaces.GatewayResult{}, false, nil
	}
	return mercadoPagoResult(&resp.Results[0]), true, nil
}

func mercadoPagoResult(resp *payment.Response) interfaces.GatewayResult {
	res := interfaces.GatewayResult{
		GatewayRef:  strconv.Itoa(resp.ID),
		AmountMinor: floatToMinor(resp.TransactionAmount),
	}
	switch resp.Status {
	case "authorized":
		res.Status = interfaces.GatewayStatusAuthorized
	case "approved":
		res.Status = interfaces.GatewayStatusCaptured
	case "pending", "in_process", "in_mediation":
		res.Status = interfaces.GatewayStatusPending
	case "cancelled":
		res.Status = interfaces.GatewayStatusCanceled
	case "refunded", "charged_back":
		res.Status = interfaces.GatewayStatusRefunded
	default:
		res.Status = interfaces.GatewayStatusFailed
		res.FailureCode = resp.StatusDetail
		if res.FailureCode == "" {
			res.FailureCode = resp.Status
		}
	}
	return res
}

func mercadoPagoID(ref string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return 0, interfaces.NewTerminalError("invalid_reference", "mercado pago payment id must be numeric", err)
	}
	return id, nil
}

func mapMercadoPagoError(err error) error {
	var re *mperror.ResponseError
	if errors.As(err, &re) {
		code := "http_" + strconv.Itoa(re.StatusCode)
		if re.StatusCode >= http.StatusInternalServerError || re.StatusCode == http.StatusTooManyRequests {
			return interfaces.NewTransientError(code, re.Message, err)
		}
		return interfaces.NewTerminalError(code, re.Message, err)
	}
	return interfaces.NewTransientError("network_error", err.Error(), err)
}

func minorToFloat(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}

func floatToMinor(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}
