package handlers

import (
	"cleaning_payments/internal/usecase"
	"cleaning_payments/internal/usecase/interfaces"
	"cleaning_payments/pkg"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody is well above the size of any processor event; larger
// bodies are refused rather than truncated.
const maxWebhookBody = 1 << 18

var (
	errWebhookSignature = pkg.NewDomainErrorSimple("INVALID_SIGNATURE", "Webhook signature verification failed", http.StatusBadRequest)
	errWebhookTooLarge  = pkg.NewDomainErrorSimple("PAYLOAD_TOO_LARGE", "Webhook body too large", http.StatusRequestEntityTooLarge)
)

// WebhookHandler turns verified processor events into reconciliations. The
// event content is only a hint: Reconcile re-reads the processor before any
// state changes, so duplicated or reordered deliveries are harmless.
type WebhookHandler struct {
	verifiers map[string]interfaces.IWebhookVerifier
	bookings  usecase.IBookingUseCase
	machine   usecase.IPaymentStateMachine
}

func NewWebhookHandler(verifiers map[string]interfaces.IWebhookVerifier, bookings usecase.IBookingUseCase, machine usecase.IPaymentStateMachine) *WebhookHandler {
	return &WebhookHandler{verifiers: verifiers, bookings: bookings, machine: machine}
}

// Handle godoc
// @Summary      Processor webhook
// @Tags         webhooks
// @Accept       json
// @Param        provider  path  string  true  "stripe or mercadopago"
// @Success      200
// @Failure      400  {object}  pkg.HTTPError
// @Failure      413  {object}  pkg.HTTPError
// @Router       /webhooks/{provider} [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	provider := c.Param("provider")
	verifier, ok := h.verifiers[provider]
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Printf("[webhook][handler] body over limit provider=%s limit=%d", provider, tooLarge.Limit)
			abortWith(c, errWebhookTooLarge)
			return
		}
		abortWith(c, errInvalidPayload)
		return
	}
	event, err := verifier.VerifyAndParse(payload, c.Request.Header)
	if err != nil {
		abortWith(c, errWebhookSignature)
		return
	}
	if event == nil {
		c.Status(http.StatusOK)
		return
	}

	ctx := c.Request.Context()
	bookingID := event.BookingID
	if bookingID == "" {
		b, err := h.bookings.FindByGatewayRef(ctx, event.GatewayRef)
		if err != nil {
			if errors.Is(err, usecase.ErrBookingNotFound) {
				log.Printf("[webhook][handler] no booking for event provider=%s event_id=%s ref=%s", provider, event.EventID, event.GatewayRef)
				c.Status(http.StatusOK)
				return
			}
			log.Printf("[webhook][handler] lookup failed provider=%s ref=%s err=%v", provider, event.GatewayRef, err)
			c.Status(http.StatusInternalServerError)
			return
		}
		bookingID = b.ID
	}

	log.Printf("[webhook][handler] reconcile provider=%s event_id=%s type=%s booking_id=%s", provider, event.EventID, event.Type, bookingID)
	by := usecase.WebhookInitiator
	by.ID = event.EventID
	if _, err := h.machine.Reconcile(ctx, bookingID, by); err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound), errors.Is(err, usecase.ErrInvalidTransition):
			c.Status(http.StatusOK)
		case errors.Is(err, usecase.ErrConcurrencyConflict), errors.Is(err, interfaces.ErrGatewayTransient):
			// Non-2xx makes the processor redeliver later.
			c.Status(http.StatusServiceUnavailable)
		default:
			log.Printf("[webhook][handler] reconcile failed booking_id=%s err=%v", bookingID, err)
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusOK)
}
