package repository

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"fmt"
	"time"
)

// checkedBooking rejects rows whose payment state is not a known one.
func checkedBooking(b entities.Booking) (entities.Booking, error) {
	if !b.PaymentState.IsValid() {
		return entities.Booking{}, fmt.Errorf("%w: booking_id=%s state=%q", interfaces.ErrUnknownPaymentState, b.ID, b.PaymentState)
	}
	return b, nil
}

// activePaymentStates are the states the scheduler still has work for.
var activePaymentStates = []entities.PaymentState{
	entities.PaymentStateUnbilled,
	entities.PaymentStateAuthorizing,
	entities.PaymentStateAuthorized,
	entities.PaymentStateCapturing,
	entities.PaymentStateFailed,
}

func activeStateStrings() []string {
	out := make([]string, 0, len(activePaymentStates))
	for _, s := range activePaymentStates {
		out = append(out, string(s))
	}
	return out
}

func inFlightStateStrings() []string {
	var out []string
	for _, s := range activePaymentStates {
		if s.InFlight() {
			out = append(out, string(s))
		}
	}
	return out
}

// storedCleaningType maps the domain wildcard ("") to the storage marker, so
// the column can take part in keys.
func storedCleaningType(v string) string {
	if v == "" {
		return entities.WildcardCleaningType
	}
	return v
}

func domainCleaningType(v string) string {
	if v == entities.WildcardCleaningType {
		return ""
	}
	return v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func tableOrDefault(name, def string) string {
	if name != "" {
		return name
	}
	return def
}

// sortableTimeLayout keeps a fixed fraction width so stored timestamps compare
// correctly as strings in key conditions.
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sortableTimeLayout)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t.UTC()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTimePtr(v string) *time.Time {
	if v == "" {
		return nil
	}
	t := parseTime(v)
	return &t
}

func mergeNames(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
