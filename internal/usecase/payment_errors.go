package usecase

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"errors"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidTransition    = errors.New("invalid payment state transition")
	ErrConcurrencyConflict  = errors.New("booking payment operation already in progress")
	ErrAmountMismatch       = errors.New("capture amount differs from authorized amount")
	ErrOutsideCaptureWindow = errors.New("outside capture window")
	ErrRetryNotDue          = errors.New("payment retry not due yet")
	ErrRateNotFound         = errors.New("no rate configured")
	ErrOverrideNotFound     = interfaces.ErrPricingOverrideNotFound

	// errCapturedAtGateway means a hold could not be released because the
	// gateway already took the money.
	errCapturedAtGateway = errors.New("payment already captured at gateway")
)

// Initiator is who asked for an operation; it is recorded on every ledger entry.
type Initiator struct {
	Actor entities.Actor
	ID    string
}

var (
	SchedulerInitiator = Initiator{Actor: entities.ActorSystem, ID: "scheduler"}
	WebhookInitiator   = Initiator{Actor: entities.ActorWebhook}
)

func (i Initiator) orSystem() Initiator {
	if i.Actor == "" {
		return Initiator{Actor: entities.ActorSystem}
	}
	return i
}
