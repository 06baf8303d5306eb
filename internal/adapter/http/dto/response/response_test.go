package response

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cleaning_payments/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func TestFromBookingForCustomer_HidesInternals(t *testing.T) {
	b := entities.Booking{
		ID:            "bk-1",
		AmountMinor:   6250,
		Currency:      "gbp",
		PaymentState:  entities.PaymentStateFailed,
		FailureReason: "insufficient_funds",
		GatewayRef:    "pi_123",
	}
	resp := FromBookingForCustomer(b)
	if resp.PaymentStatus != "failed" || resp.Amount != "62.50" {
		t.Fatalf("unexpected response %+v", resp)
	}

	raw, _ := json.Marshal(resp)
	for _, leak := range []string{"insufficient_funds", "pi_123", "authorizing"} {
		if strings.Contains(string(raw), leak) {
			t.Fatalf("customer view leaks %q: %s", leak, raw)
		}
	}

	if got := FromBookingForCustomer(entities.Booking{PaymentState: entities.PaymentStateCapturing}).PaymentStatus; got != "confirmed" {
		t.Fatalf("expected confirmed, got %q", got)
	}
}

func TestFromBookingForAdmin(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	resp := FromBookingForAdmin(
		entities.Booking{ID: "bk-1", PaymentState: entities.PaymentStateAuthorized},
		[]entities.LedgerEntry{{Seq: 1, NewState: entities.PaymentStateUnbilled, At: at}, {Seq: 2, PreviousState: entities.PaymentStateUnbilled, NewState: entities.PaymentStateAuthorizing, At: at}},
		[]entities.NotificationOutboxItem{{ID: "ob-1", Status: entities.OutboxStatusPending}},
	)
	if resp.CustomerStatus != "confirmed" || len(resp.History) != 2 || resp.History[1].NewState != "authorizing" || len(resp.Notifications) != 1 {
		t.Fatalf("unexpected admin response %+v", resp)
	}
}

func TestFromQuote(t *testing.T) {
	q := entities.RateQuote{HourlyRate: decimal.RequireFromString("17.99"), Currency: "gbp", Source: entities.QuoteSourceBaseRate}
	resp := FromQuote(q, 90, 2699)
	if resp.Amount != "26.99" || resp.DurationMinutes != 90 {
		t.Fatalf("unexpected quote %+v", resp)
	}
}
