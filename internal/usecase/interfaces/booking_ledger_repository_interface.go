package interfaces

import (
	"cleaning_payments/internal/domain/entities"
	"context"
	"errors"
	"time"
)

// ErrStateConflict is returned when a conditional write finds the booking's
// state or ledger sequence moved since it was read.
var ErrStateConflict = errors.New("booking state changed concurrently")

// ErrUnknownPaymentState is returned when a stored booking carries a state
// outside entities.PaymentState.
var ErrUnknownPaymentState = errors.New("stored booking has unknown payment state")

// IBookingLedgerRepository is the Ledger Store: booking rows plus their
// append-only transition history.
//
// Contract:
//   - AppendTransition is the only write that changes PaymentState. It updates the
//     booking row and appends the entry in one transaction, conditional on the row
//     still being in entry.PreviousState at ledger sequence entry.Seq-1.
//   - SaveDetails writes non-state fields (retry bookkeeping, review flag, payment
//     method, amounts) conditional on state and ledger sequence being unchanged.
//   - Reads return a zero-value Booking (empty ID) when nothing matches and
//     ErrUnknownPaymentState when the stored state is not a known one.
//   - ListDue returns uncancelled bookings in an active state that start by
//     horizon, plus every Authorizing or Capturing booking whatever its start.

type IBookingLedgerRepository interface {
	CreateBooking(ctx context.Context, b entities.Booking, first entities.LedgerEntry) (entities.Booking, error)
	GetByID(ctx context.Context, id string) (entities.Booking, error)
	GetByGatewayRef(ctx context.Context, gatewayRef string) (entities.Booking, error)
	AppendTransition(ctx context.Context, b entities.Booking, entry entities.LedgerEntry) (entities.Booking, error)
	SaveDetails(ctx context.Context, b entities.Booking) (entities.Booking, error)
	GetHistory(ctx context.Context, bookingID string) ([]entities.LedgerEntry, error)
	HasPendingAuthorization(ctx context.Context, bookingID string, now time.Time, staleness time.Duration) (bool, error)
	ListDue(ctx context.Context, horizon time.Time) ([]entities.Booking, error)
}

// IBookingLocker is the per-booking mutual exclusion around the payment write
// path. Locks expire after ttl so a crashed holder cannot wedge a booking.

type IBookingLocker interface {
	Acquire(ctx context.Context, bookingID, owner string, now time.Time, ttl time.Duration) (bool, error)
	Release(ctx context.Context, bookingID, owner string) error
}
