package request

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidScheduledStart = errors.New("scheduled_start must be RFC3339")
	ErrInvalidAmount         = errors.New("amount_minor must be positive")
)

// CreateBookingRequest is the public booking payload. The customer is
// identified by the caller; authentication lives in front of this service.
type CreateBookingRequest struct {
	CustomerID       string `json:"customer_id" binding:"required"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	ServiceType      string `json:"service_type" binding:"required"`
	CleaningType     string `json:"cleaning_type"`
	Address          string `json:"address" binding:"required"`
	ScheduledStart   string `json:"scheduled_start" binding:"required"`
	DurationMinutes  int    `json:"duration_minutes" binding:"required"`
	PaymentMethodRef string `json:"payment_method_ref"`
}

func (r CreateBookingRequest) ResolveScheduledStart() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(r.ScheduledStart))
	if err != nil {
		return time.Time{}, ErrInvalidScheduledStart
	}
	return t.UTC(), nil
}

type CaptureRequest struct {
	Force bool `json:"force"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

func (r ReasonRequest) ResolveReason(fallback string) string {
	if v := strings.TrimSpace(r.Reason); v != "" {
		return v
	}
	return fallback
}

type AdjustAmountRequest struct {
	AmountMinor int64  `json:"amount_minor" binding:"required"`
	Reason      string `json:"reason"`
}

func (r AdjustAmountRequest) Validate() error {
	if r.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

type PaymentMethodRequest struct {
	PaymentMethodRef string `json:"payment_method_ref" binding:"required"`
}
