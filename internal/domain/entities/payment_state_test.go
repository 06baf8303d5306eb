package entities

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from PaymentState
		to   PaymentState
		want bool
	}{
		{PaymentStateUnbilled, PaymentStateAuthorizing, true},
		{PaymentStateAuthorizing, PaymentStateAuthorized, true},
		{PaymentStateAuthorized, PaymentStateCapturing, true},
		{PaymentStateCapturing, PaymentStateCaptured, true},
		{PaymentStateCaptured, PaymentStateRefunded, true},
		{PaymentStateAuthorizing, PaymentStateFailed, true},
		{PaymentStateCapturing, PaymentStateFailed, true},
		{PaymentStateAuthorized, PaymentStateCancelled, true},
		{PaymentStateFailed, PaymentStateAuthorizing, true},
		{PaymentStateFailed, PaymentStateUnbilled, true},

		{PaymentStateUnbilled, PaymentStateAuthorized, false},
		{PaymentStateUnbilled, PaymentStateCaptured, false},
		{PaymentStateAuthorized, PaymentStateCaptured, false},
		{PaymentStateCapturing, PaymentStateCancelled, false},
		{PaymentStateCaptured, PaymentStateCancelled, false},
		{PaymentStateCaptured, PaymentStateFailed, false},
		{PaymentStateCancelled, PaymentStateAuthorizing, false},
		{PaymentStateRefunded, PaymentStateCaptured, false},
		{PaymentState("unpaid"), PaymentStateAuthorizing, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPaymentState_TerminalAndValid(t *testing.T) {
	if !PaymentStateCancelled.IsTerminal() || !PaymentStateRefunded.IsTerminal() {
		t.Fatalf("cancelled and refunded must be terminal")
	}
	if PaymentStateFailed.IsTerminal() || PaymentStateCaptured.IsTerminal() {
		t.Fatalf("failed and captured are not terminal")
	}
	if PaymentState("Not Paid").IsValid() {
		t.Fatalf("free-text status must not be valid")
	}
}

func TestPaymentState_CustomerStatus(t *testing.T) {
	cases := map[PaymentState]string{
		PaymentStateUnbilled:    "pending",
		PaymentStateAuthorizing: "pending",
		PaymentStateAuthorized:  "confirmed",
		PaymentStateCapturing:   "confirmed",
		PaymentStateCaptured:    "confirmed",
		PaymentStateFailed:      "failed",
		PaymentStateCancelled:   "cancelled",
		PaymentStateRefunded:    "refunded",
	}
	for state, want := range cases {
		if got := state.CustomerStatus(); got != want {
			t.Fatalf("%s: expected %q, got %q", state, want, got)
		}
	}
}

func TestBooking_RetryDueAndExpectedCapture(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := Booking{}
	if !b.RetryDue(now) {
		t.Fatalf("no next attempt means due")
	}
	later := now.Add(time.Minute)
	b.NextAttemptAt = &later
	if b.RetryDue(now) {
		t.Fatalf("expected not due before next attempt")
	}
	if !b.RetryDue(later) {
		t.Fatalf("expected due at next attempt")
	}

	if got := b.ExpectedCaptureMinor(5000); got != 5000 {
		t.Fatalf("expected recomputed amount, got %d", got)
	}
	b.ApprovedCaptureMinor = 4500
	if got := b.ExpectedCaptureMinor(5000); got != 4500 {
		t.Fatalf("expected approved amount, got %d", got)
	}
}
