package payments

import (
	"cleaning_payments/internal/usecase/interfaces"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// MercadoPagoWebhookVerifier checks the x-signature header ("ts=...,v1=...")
// against an HMAC-SHA256 of "id:<data.id>;request-id:<x-request-id>;ts:<ts>;".
type MercadoPagoWebhookVerifier struct {
	secret string
}

var _ interfaces.IWebhookVerifier = (*MercadoPagoWebhookVerifier)(nil)

func NewMercadoPagoWebhookVerifier(secret string) *MercadoPagoWebhookVerifier {
	return &MercadoPagoWebhookVerifier{secret: secret}
}

func (v *MercadoPagoWebhookVerifier) Provider() string { return "mercadopago" }

type mercadoPagoNotification struct {
	ID     json.RawMessage `json:"id"`
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

func rawID(raw json.RawMessage) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}

func parseMercadoPagoSignature(header string) (ts, v1 string) {
	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = val
		case "v1":
			v1 = val
		}
	}
	return ts, v1
}

func mercadoPagoManifest(dataID, requestID, ts string) string {
	return fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), requestID, ts)
}

func (v *MercadoPagoWebhookVerifier) sign(manifest string) string {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *MercadoPagoWebhookVerifier) VerifyAndParse(payload []byte, headers http.Header) (*interfaces.GatewayEvent, error) {
	var n mercadoPagoNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: malformed body", interfaces.ErrInvalidWebhookSignature)
	}
	dataID := rawID(n.Data.ID)

	ts, v1 := parseMercadoPagoSignature(headers.Get("x-signature"))
	if ts == "" || v1 == "" {
		return nil, fmt.Errorf("%w: missing x-signature parts", interfaces.ErrInvalidWebhookSignature)
	}
	expected := v.sign(mercadoPagoManifest(dataID, headers.Get("x-request-id"), ts))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		log.Printf("[webhook][mercadopago] signature mismatch data_id=%s", dataID)
		return nil, interfaces.ErrInvalidWebhookSignature
	}

	if n.Type != "payment" || dataID == "" {
		return nil, nil
	}
	eventID := rawID(n.ID)
	if eventID == "" {
		eventID = dataID + ":" + ts
	}
	return &interfaces.GatewayEvent{
		Provider:   v.Provider(),
		EventID:    eventID,
		Type:       n.Action,
		GatewayRef: dataID,
	}, nil
}
