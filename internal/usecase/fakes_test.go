package usecase

import (
	"context"
	"sync"
	"time"

	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
)

// memoryLedger is an in-process IBookingLedgerRepository with the same
// compare-and-set semantics as the SQL and DynamoDB stores.
type memoryLedger struct {
	mu       sync.Mutex
	bookings map[string]entities.Booking
	entries  map[string][]entities.LedgerEntry
}

var _ interfaces.IBookingLedgerRepository = (*memoryLedger)(nil)

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		bookings: map[string]entities.Booking{},
		entries:  map[string][]entities.LedgerEntry{},
	}
}

func (s *memoryLedger) CreateBooking(_ context.Context, b entities.Booking, first entities.LedgerEntry) (entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.LedgerSeq = first.Seq
	s.bookings[b.ID] = b
	s.entries[b.ID] = []entities.LedgerEntry{first}
	return b, nil
}

func (s *memoryLedger) GetByID(_ context.Context, id string) (entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id], nil
}

func (s *memoryLedger) GetByGatewayRef(_ context.Context, gatewayRef string) (entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.GatewayRef == gatewayRef {
			return b, nil
		}
	}
	return entities.Booking{}, nil
}

func (s *memoryLedger) AppendTransition(_ context.Context, b entities.Booking, entry entities.LedgerEntry) (entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok || cur.PaymentState != entry.PreviousState || cur.LedgerSeq != entry.Seq-1 {
		return entities.Booking{}, interfaces.ErrStateConflict
	}
	b.LedgerSeq = entry.Seq
	s.bookings[b.ID] = b
	s.entries[b.ID] = append(s.entries[b.ID], entry)
	return b, nil
}

func (s *memoryLedger) SaveDetails(_ context.Context, b entities.Booking) (entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[b.ID]
	if !ok || cur.PaymentState != b.PaymentState || cur.LedgerSeq != b.LedgerSeq {
		return entities.Booking{}, interfaces.ErrStateConflict
	}
	s.bookings[b.ID] = b
	return b, nil
}

func (s *memoryLedger) GetHistory(_ context.Context, bookingID string) ([]entities.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.LedgerEntry(nil), s.entries[bookingID]...), nil
}

func (s *memoryLedger) HasPendingAuthorization(_ context.Context, bookingID string, now time.Time, staleness time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.entries[bookingID]
	if len(history) == 0 {
		return false, nil
	}
	last := history[len(history)-1]
	return last.NewState == entities.PaymentStateAuthorizing && now.Sub(last.At) < staleness, nil
}

func (s *memoryLedger) ListDue(_ context.Context, horizon time.Time) ([]entities.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Booking
	for _, b := range s.bookings {
		if b.Cancelled || b.PaymentState.IsTerminal() || b.PaymentState == entities.PaymentStateCaptured {
			continue
		}
		if b.PaymentState.InFlight() || !b.ScheduledStart.After(horizon) {
			out = append(out, b)
		}
	}
	return out, nil
}

// put seeds a booking whose history collapses to one entry in its current state.
func (s *memoryLedger) put(b entities.Booking) entities.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.LedgerSeq == 0 {
		b.LedgerSeq = 1
	}
	s.bookings[b.ID] = b
	s.entries[b.ID] = []entities.LedgerEntry{{
		ID:        b.ID + "-seed",
		BookingID: b.ID,
		Seq:       b.LedgerSeq,
		NewState:  b.PaymentState,
		At:        b.UpdatedAt,
		Actor:     entities.ActorSystem,
	}}
	return b
}

func (s *memoryLedger) states(bookingID string) []entities.PaymentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.PaymentState
	for _, e := range s.entries[bookingID] {
		out = append(out, e.NewState)
	}
	return out
}

type memoryLocker struct {
	mu    sync.Mutex
	held  map[string]string
	calls int
}

var _ interfaces.IBookingLocker = (*memoryLocker)(nil)

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: map[string]string{}}
}

func (l *memoryLocker) Acquire(_ context.Context, bookingID, owner string, _ time.Time, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if _, busy := l.held[bookingID]; busy {
		return false, nil
	}
	l.held[bookingID] = owner
	return true, nil
}

func (l *memoryLocker) Release(_ context.Context, bookingID, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[bookingID] == owner {
		delete(l.held, bookingID)
	}
	return nil
}

// fixedPricing answers every lookup with one hourly rate.
type fixedPricing struct {
	rate decimal.Decimal
}

func (p fixedPricing) ResolveRate(_ context.Context, customerID, serviceType, cleaningType string) (entities.RateQuote, error) {
	return entities.RateQuote{
		CustomerID:   customerID,
		ServiceType:  serviceType,
		CleaningType: cleaningType,
		Source:       entities.QuoteSourceBaseRate,
		HourlyRate:   p.rate,
		Currency:     "gbp",
	}, nil
}

func (p fixedPricing) Quote(ctx context.Context, customerID, serviceType, cleaningType string, durationMins int) (entities.RateQuote, int64, error) {
	q, _ := p.ResolveRate(ctx, customerID, serviceType, cleaningType)
	return q, q.ChargeMinor(durationMins), nil
}

func (fixedPricing) ListOverrides(context.Context, string) ([]entities.PricingOverride, error) {
	return nil, nil
}

func (fixedPricing) UpsertOverride(_ context.Context, o entities.PricingOverride) (entities.PricingOverride, error) {
	return o, nil
}

func (fixedPricing) DeleteOverride(context.Context, string) error { return nil }

func (fixedPricing) UpsertBaseRate(_ context.Context, r entities.BaseRate) (entities.BaseRate, error) {
	return r, nil
}

type recordedEvent struct {
	bookingID string
	event     entities.NotificationEvent
	payload   map[string]string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Enqueue(_ context.Context, b entities.Booking, event entities.NotificationEvent, payload map[string]string) ([]entities.NotificationOutboxItem, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{bookingID: b.ID, event: event, payload: payload})
	return nil, nil
}

func (n *recordingNotifier) count(event entities.NotificationEvent) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.event == event {
			c++
		}
	}
	return c
}
