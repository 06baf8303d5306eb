package entities

import "time"

// Booking is a scheduled cleaning service together with its payment state.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (payment_state-scheduled_start-index): payment_state, scheduled_start
//   - GSI2 (gateway_ref-index): gateway_ref
//
// Monetary representation:
//   - All amounts are integer minor units (pence) in Currency.
//   - AmountMinor is the resolved charge; AuthorizedAmountMinor is what the
//     gateway actually holds; ApprovedCaptureMinor is an admin-approved capture
//     amount used after a manual review (0 when unset).
//
// LedgerSeq is the sequence number of the most recent LedgerEntry. Every state
// write is conditional on it, so the row and the ledger never disagree.

type Booking struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	CustomerEmail  string    `json:"customer_email,omitempty"`
	CustomerPhone  string    `json:"customer_phone,omitempty"`
	ServiceType    string    `json:"service_type"`
	CleaningType   string    `json:"cleaning_type,omitempty"`
	Address        string    `json:"address"`
	ScheduledStart time.Time `json:"scheduled_start"`
	DurationMins   int       `json:"duration_minutes"`

	Currency              string `json:"currency"`
	AmountMinor           int64  `json:"amount_minor"`
	AuthorizedAmountMinor int64  `json:"authorized_amount_minor,omitempty"`
	ApprovedCaptureMinor  int64  `json:"approved_capture_minor,omitempty"`
	PaymentMethodRef      string `json:"payment_method_ref,omitempty"`

	PaymentState   PaymentState `json:"payment_state"`
	GatewayRef     string       `json:"gateway_ref,omitempty"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`

	AuthAttempts     int        `json:"auth_attempts"`
	CaptureAttempts  int        `json:"capture_attempts"`
	NextAttemptAt    *time.Time `json:"next_attempt_at,omitempty"`
	FailureReason    string     `json:"failure_reason,omitempty"`
	FailureRetryable bool       `json:"failure_retryable"`

	NeedsReview  bool   `json:"needs_review"`
	ReviewReason string `json:"review_reason,omitempty"`
	Cancelled    bool   `json:"cancelled"`

	LedgerSeq int       `json:"ledger_seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduledEnd is the end of the service slot.
func (b Booking) ScheduledEnd() time.Time {
	return b.ScheduledStart.Add(time.Duration(b.DurationMins) * time.Minute)
}

// RetryDue reports whether a retryable failure or capture retry may run at now.
func (b Booking) RetryDue(now time.Time) bool {
	return b.NextAttemptAt == nil || !now.Before(*b.NextAttemptAt)
}

// ExpectedCaptureMinor is the amount a capture should transfer given a fresh
// recomputation. An admin-approved amount wins over the recomputed one.
func (b Booking) ExpectedCaptureMinor(recomputed int64) int64 {
	if b.ApprovedCaptureMinor > 0 {
		return b.ApprovedCaptureMinor
	}
	return recomputed
}
