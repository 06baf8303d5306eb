package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	mock_interfaces "cleaning_payments/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type machineFixture struct {
	machine  *PaymentStateMachine
	store    *memoryLedger
	notifier *recordingNotifier
	clock    *testClock
	gateway  *mock_interfaces.MockIPaymentGateway
}

var admin = Initiator{Actor: entities.ActorAdmin, ID: "admin-1"}

func newMachineFixture(t *testing.T, hourlyRate string) machineFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	store := newMemoryLedger()
	notifier := &recordingNotifier{}
	gw := mock_interfaces.NewMockIPaymentGateway(ctrl)
	m := NewPaymentStateMachine(store, newMemoryLocker(), gw, fixedPricing{rate: decimal.RequireFromString(hourlyRate)}, notifier, DefaultPaymentPolicy()).
		WithClock(clock.now)
	return machineFixture{machine: m, store: store, notifier: notifier, clock: clock, gateway: gw}
}

// seedBooking stores a two-hour regular clean for 50.00 GBP starting 20h
// after the fixture clock.
func (f machineFixture) seedBooking(state entities.PaymentState, mutate func(b *entities.Booking)) entities.Booking {
	now := f.clock.now()
	b := entities.Booking{
		ID:               "bk-1",
		CustomerID:       "cust-1",
		CustomerEmail:    "ana@example.com",
		ServiceType:      "regular",
		ScheduledStart:   now.Add(20 * time.Hour),
		DurationMins:     120,
		Currency:         "gbp",
		AmountMinor:      5000,
		PaymentMethodRef: "pm_card_visa",
		PaymentState:     state,
		LedgerSeq:        1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if mutate != nil {
		mutate(&b)
	}
	return f.store.put(b)
}

func assertLedgerMatchesRow(t *testing.T, store *memoryLedger, bookingID string) {
	t.Helper()
	b, _ := store.GetByID(context.Background(), bookingID)
	history, _ := store.GetHistory(context.Background(), bookingID)
	if len(history) == 0 {
		t.Fatalf("expected ledger entries for %s", bookingID)
	}
	last := history[len(history)-1]
	if last.NewState != b.PaymentState {
		t.Fatalf("expected last ledger state %s to match row %s", last.NewState, b.PaymentState)
	}
	if last.Seq != b.LedgerSeq {
		t.Fatalf("expected ledger seq %d to match row %d", last.Seq, b.LedgerSeq)
	}
	for i := 1; i < len(history); i++ {
		if history[i].Seq != history[i-1].Seq+1 {
			t.Fatalf("expected contiguous ledger, got %d after %d", history[i].Seq, history[i-1].Seq)
		}
		if history[i].PreviousState != history[i-1].NewState {
			t.Fatalf("expected entry %d to start from %s, got %s", history[i].Seq, history[i-1].NewState, history[i].PreviousState)
		}
	}
}

func TestPaymentStateMachine_AuthorizeThenCapture(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateUnbilled, nil)

	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req interfaces.AuthorizeRequest) (interfaces.GatewayResult, error) {
			if req.IdempotencyKey != "bk-1:auth:2:1" {
				t.Fatalf("unexpected idempotency key %q", req.IdempotencyKey)
			}
			if req.AmountMinor != 5000 || req.PaymentMethodRef != "pm_card_visa" {
				t.Fatalf("unexpected authorize request %+v", req)
			}
			return interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusAuthorized, AmountMinor: 5000}, nil
		}).Times(1)

	b, err := f.machine.RequestAuthorization(context.Background(), "bk-1", SchedulerInitiator)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateAuthorized || b.GatewayRef != "pi_1" || b.AuthorizedAmountMinor != 5000 {
		t.Fatalf("unexpected booking after authorize: %+v", b)
	}
	if f.notifier.count(entities.EventReminderDue) != 1 || f.notifier.count(entities.EventAuthorizationOK) != 0 {
		t.Fatalf("expected one reminder_due notification inside the authorize lead")
	}

	f.clock.advance(19 * time.Hour)
	f.gateway.EXPECT().Capture(gomock.Any(), interfaces.CaptureRequest{
		GatewayRef:     "pi_1",
		AmountMinor:    5000,
		IdempotencyKey: "bk-1:capture:4:1",
	}).Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCaptured, AmountMinor: 5000}, nil).Times(1)

	b, err = f.machine.RequestCapture(context.Background(), "bk-1", SchedulerInitiator, CaptureOptions{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateCaptured {
		t.Fatalf("expected captured, got %s", b.PaymentState)
	}
	if f.notifier.count(entities.EventPaymentCaptured) != 1 {
		t.Fatalf("expected one payment_captured notification")
	}

	want := []entities.PaymentState{
		entities.PaymentStateUnbilled,
		entities.PaymentStateAuthorizing,
		entities.PaymentStateAuthorized,
		entities.PaymentStateCapturing,
		entities.PaymentStateCaptured,
	}
	got := f.store.states("bk-1")
	if len(got) != len(want) {
		t.Fatalf("expected states %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected states %v, got %v", want, got)
		}
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_EarlyAuthorizationConfirmsWithoutReminder(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateUnbilled, func(b *entities.Booking) {
		b.ScheduledStart = f.clock.now().Add(5 * 24 * time.Hour)
	})
	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusAuthorized, AmountMinor: 5000}, nil)

	b, err := f.machine.RequestAuthorization(context.Background(), "bk-1", admin)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateAuthorized {
		t.Fatalf("expected authorized, got %s", b.PaymentState)
	}
	if f.notifier.count(entities.EventAuthorizationOK) != 1 {
		t.Fatalf("expected one authorization_confirmed notification")
	}
	if f.notifier.count(entities.EventReminderDue) != 0 {
		t.Fatalf("expected no reminder five days before the clean")
	}
}

func TestPaymentStateMachine_AuthorizationDeclined(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateUnbilled, nil)

	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		Return(interfaces.GatewayResult{}, interfaces.NewTerminalError("card_declined", "Your card was declined.", nil)).Times(1)

	b, err := f.machine.RequestAuthorization(context.Background(), "bk-1", SchedulerInitiator)
	if !errors.Is(err, interfaces.ErrGatewayTerminal) {
		t.Fatalf("expected terminal gateway error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateFailed || b.FailureReason != "card_declined" || b.FailureRetryable {
		t.Fatalf("unexpected booking after decline: %+v", b)
	}

	failed := 0
	history, _ := f.store.GetHistory(context.Background(), "bk-1")
	for _, e := range history {
		if e.NewState == entities.PaymentStateFailed {
			failed++
			if e.Reason != "card_declined" {
				t.Fatalf("expected ledger reason card_declined, got %q", e.Reason)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failed entry, got %d", failed)
	}
	if f.notifier.count(entities.EventAuthorizationFailed) != 1 {
		t.Fatalf("expected one authorization_failed notification")
	}

	_, err = f.machine.RequestAuthorization(context.Background(), "bk-1", SchedulerInitiator)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for terminal failure, got %v", err)
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_TransientRetriesUntilBudgetExhausted(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateUnbilled, nil)

	var keys []string
	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req interfaces.AuthorizeRequest) (interfaces.GatewayResult, error) {
			keys = append(keys, req.IdempotencyKey)
			return interfaces.GatewayResult{}, interfaces.NewTransientError("timeout", "gateway timeout", nil)
		}).Times(3)
	f.gateway.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		Return(interfaces.GatewayResult{}, false, nil).Times(2)

	ctx := context.Background()
	b, err := f.machine.RequestAuthorization(ctx, "bk-1", SchedulerInitiator)
	if !errors.Is(err, interfaces.ErrGatewayTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateFailed || !b.FailureRetryable || b.NextAttemptAt == nil {
		t.Fatalf("expected retryable failure, got %+v", b)
	}
	if want := f.clock.now().Add(5 * time.Minute); !b.NextAttemptAt.Equal(want) {
		t.Fatalf("expected next attempt at %s, got %s", want, b.NextAttemptAt)
	}

	if _, err := f.machine.RequestAuthorization(ctx, "bk-1", SchedulerInitiator); !errors.Is(err, ErrRetryNotDue) {
		t.Fatalf("expected ErrRetryNotDue, got %v", err)
	}

	f.clock.advance(5 * time.Minute)
	b, _ = f.machine.RequestAuthorization(ctx, "bk-1", SchedulerInitiator)
	if b.AuthAttempts != 2 || !b.FailureRetryable {
		t.Fatalf("expected second retryable failure, got %+v", b)
	}

	f.clock.advance(10 * time.Minute)
	b, _ = f.machine.RequestAuthorization(ctx, "bk-1", SchedulerInitiator)
	if b.FailureRetryable || b.FailureReason != "retry_budget_exhausted: timeout" {
		t.Fatalf("expected exhausted budget, got %+v", b)
	}
	if f.notifier.count(entities.EventAuthorizationFailed) != 1 {
		t.Fatalf("expected authorization_failed only once the budget is spent")
	}

	want := []string{"bk-1:auth:2:1", "bk-1:auth:4:2", "bk-1:auth:6:3"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, keys)
		}
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_ConcurrentAuthorizeCallsGatewayOnce(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateUnbilled, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, interfaces.AuthorizeRequest) (interfaces.GatewayResult, error) {
			close(entered)
			<-release
			return interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusAuthorized, AmountMinor: 5000}, nil
		}).Times(1)

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.machine.RequestAuthorization(context.Background(), "bk-1", SchedulerInitiator)
	}()

	<-entered
	_, err := f.machine.RequestAuthorization(context.Background(), "bk-1", admin)
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("expected first call to succeed, got %v", firstErr)
	}
	b, _ := f.store.GetByID(context.Background(), "bk-1")
	if b.PaymentState != entities.PaymentStateAuthorized {
		t.Fatalf("expected authorized, got %s", b.PaymentState)
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_PendingAuthorizationBlocksSecondAttempt(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateAuthorizing, func(b *entities.Booking) {
		b.AuthAttempts = 1
		b.IdempotencyKey = "bk-1:auth:1:1"
	})

	_, err := f.machine.RequestAuthorization(context.Background(), "bk-1", admin)
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
	_, err = f.machine.Cancel(context.Background(), "bk-1", "customer request", admin)
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected cancel to wait for the pending authorization, got %v", err)
	}
}

func TestPaymentStateMachine_ReconcileStaleAuthorizing(t *testing.T) {
	t.Run("authorization found at gateway", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorizing, func(b *entities.Booking) {
			b.AuthAttempts = 1
			b.IdempotencyKey = "bk-1:auth:1:1"
		})
		f.clock.advance(10 * time.Minute)

		f.gateway.EXPECT().Lookup(gomock.Any(), "bk-1:auth:1:1").
			Return(interfaces.GatewayResult{GatewayRef: "pi_9", Status: interfaces.GatewayStatusAuthorized, AmountMinor: 5000}, true, nil)

		b, err := f.machine.Reconcile(context.Background(), "bk-1", SchedulerInitiator)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if b.PaymentState != entities.PaymentStateAuthorized || b.GatewayRef != "pi_9" {
			t.Fatalf("unexpected booking %+v", b)
		}
	})

	t.Run("request never reached gateway", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorizing, func(b *entities.Booking) {
			b.AuthAttempts = 1
			b.IdempotencyKey = "bk-1:auth:1:1"
		})
		f.clock.advance(10 * time.Minute)

		f.gateway.EXPECT().Lookup(gomock.Any(), "bk-1:auth:1:1").Return(interfaces.GatewayResult{}, false, nil)

		b, err := f.machine.Reconcile(context.Background(), "bk-1", SchedulerInitiator)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if b.PaymentState != entities.PaymentStateFailed || b.FailureReason != "authorization_interrupted" || !b.FailureRetryable {
			t.Fatalf("unexpected booking %+v", b)
		}
	})
}

func TestPaymentStateMachine_CaptureAmountMismatch(t *testing.T) {
	f := newMachineFixture(t, "30.00")
	f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
		b.GatewayRef = "pi_1"
		b.AuthorizedAmountMinor = 5000
		b.ScheduledStart = f.clock.now().Add(time.Hour)
	})

	ctx := context.Background()
	b, err := f.machine.RequestCapture(ctx, "bk-1", SchedulerInitiator, CaptureOptions{})
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if !b.NeedsReview || b.PaymentState != entities.PaymentStateAuthorized {
		t.Fatalf("expected booking held for review, got %+v", b)
	}
	if _, err := f.machine.RequestCapture(ctx, "bk-1", SchedulerInitiator, CaptureOptions{}); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch again, got %v", err)
	}
	if f.notifier.count(entities.EventCaptureReviewRequired) != 1 {
		t.Fatalf("expected exactly one capture_review_required notification")
	}

	if _, err := f.machine.AdjustAmount(ctx, "bk-1", 6000, "extra hour", admin); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation above authorized amount, got %v", err)
	}
	b, err = f.machine.AdjustAmount(ctx, "bk-1", 4500, "agreed discount", admin)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.NeedsReview || b.ApprovedCaptureMinor != 4500 {
		t.Fatalf("expected approved amount, got %+v", b)
	}
	history, _ := f.store.GetHistory(ctx, "bk-1")
	adjusted := history[len(history)-1]
	if adjusted.Actor != entities.ActorAdmin || adjusted.ActorID != "admin-1" || adjusted.AmountMinor != 4500 {
		t.Fatalf("expected admin adjustment of 4500 in ledger, got %+v", adjusted)
	}
	if adjusted.PreviousState != entities.PaymentStateAuthorized || adjusted.NewState != entities.PaymentStateAuthorized {
		t.Fatalf("expected adjustment to keep state, got %+v", adjusted)
	}
	if adjusted.Reason != "amount adjusted: agreed discount" {
		t.Fatalf("unexpected adjustment reason %q", adjusted.Reason)
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")

	f.gateway.EXPECT().Capture(gomock.Any(), interfaces.CaptureRequest{
		GatewayRef:     "pi_1",
		AmountMinor:    4500,
		IdempotencyKey: "bk-1:capture:3:1",
	}).Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCaptured, AmountMinor: 4500}, nil)

	b, err = f.machine.RequestCapture(ctx, "bk-1", admin, CaptureOptions{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateCaptured {
		t.Fatalf("expected captured, got %s", b.PaymentState)
	}
	history, _ = f.store.GetHistory(ctx, "bk-1")
	if last := history[len(history)-1]; last.AmountMinor != 4500 {
		t.Fatalf("expected captured amount 4500 in ledger, got %d", last.AmountMinor)
	}
}

func TestPaymentStateMachine_CaptureWindow(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
		b.GatewayRef = "pi_1"
		b.AuthorizedAmountMinor = 5000
	})

	_, err := f.machine.RequestCapture(context.Background(), "bk-1", admin, CaptureOptions{})
	if !errors.Is(err, ErrOutsideCaptureWindow) {
		t.Fatalf("expected ErrOutsideCaptureWindow, got %v", err)
	}

	f.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCaptured}, nil)
	b, err := f.machine.RequestCapture(context.Background(), "bk-1", admin, CaptureOptions{Force: true})
	if err != nil {
		t.Fatalf("expected forced capture to succeed, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateCaptured {
		t.Fatalf("expected captured, got %s", b.PaymentState)
	}
}

func TestPaymentStateMachine_CaptureTransientThenReconcile(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
		b.GatewayRef = "pi_1"
		b.AuthorizedAmountMinor = 5000
		b.ScheduledStart = f.clock.now().Add(time.Hour)
	})
	ctx := context.Background()

	f.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		Return(interfaces.GatewayResult{}, interfaces.NewTransientError("rate_limit", "slow down", nil))

	b, err := f.machine.RequestCapture(ctx, "bk-1", SchedulerInitiator, CaptureOptions{})
	if !errors.Is(err, interfaces.ErrGatewayTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateCapturing || b.NextAttemptAt == nil || b.FailureReason != "rate_limit" {
		t.Fatalf("expected capture retry scheduled, got %+v", b)
	}

	f.gateway.EXPECT().GetStatus(gomock.Any(), "pi_1").
		Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusAuthorized}, nil).Times(2)

	if _, err := f.machine.Reconcile(ctx, "bk-1", SchedulerInitiator); !errors.Is(err, ErrRetryNotDue) {
		t.Fatalf("expected ErrRetryNotDue, got %v", err)
	}

	f.clock.advance(5 * time.Minute)
	f.gateway.EXPECT().Capture(gomock.Any(), interfaces.CaptureRequest{
		GatewayRef:     "pi_1",
		AmountMinor:    5000,
		IdempotencyKey: "bk-1:capture:2:2",
	}).Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCaptured, AmountMinor: 5000}, nil)

	b, err = f.machine.Reconcile(ctx, "bk-1", SchedulerInitiator)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateCaptured || b.CaptureAttempts != 2 {
		t.Fatalf("unexpected booking %+v", b)
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_Cancel(t *testing.T) {
	t.Run("unbilled booking needs no gateway call", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateUnbilled, nil)

		b, err := f.machine.Cancel(context.Background(), "bk-1", "", Initiator{Actor: entities.ActorCustomer, ID: "cust-1"})
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if b.PaymentState != entities.PaymentStateCancelled || !b.Cancelled {
			t.Fatalf("unexpected booking %+v", b)
		}
		if f.notifier.count(entities.EventBookingCancelled) != 1 {
			t.Fatalf("expected booking_cancelled notification")
		}
	})

	t.Run("authorized booking voids the hold first", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
			b.GatewayRef = "pi_1"
			b.AuthorizedAmountMinor = 5000
		})
		f.gateway.EXPECT().Cancel(gomock.Any(), "pi_1", "bk-1:void:1:0").
			Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCanceled}, nil)

		b, err := f.machine.Cancel(context.Background(), "bk-1", "customer request", admin)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if b.PaymentState != entities.PaymentStateCancelled {
			t.Fatalf("expected cancelled, got %s", b.PaymentState)
		}
		history, _ := f.store.GetHistory(context.Background(), "bk-1")
		if last := history[len(history)-1]; last.ExternalRef != "pi_1" || last.Reason != "customer request" {
			t.Fatalf("unexpected ledger entry %+v", last)
		}
	})

	t.Run("void failure keeps booking authorized", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
			b.GatewayRef = "pi_1"
		})
		f.gateway.EXPECT().Cancel(gomock.Any(), "pi_1", gomock.Any()).
			Return(interfaces.GatewayResult{}, interfaces.NewTransientError("api_connection_error", "", nil))

		_, err := f.machine.Cancel(context.Background(), "bk-1", "customer request", admin)
		if !errors.Is(err, interfaces.ErrGatewayTransient) {
			t.Fatalf("expected transient error, got %v", err)
		}
		b, _ := f.store.GetByID(context.Background(), "bk-1")
		if b.PaymentState != entities.PaymentStateAuthorized {
			t.Fatalf("expected authorized, got %s", b.PaymentState)
		}
	})

	t.Run("refused void of a captured payment keeps the charge", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
			b.GatewayRef = "pi_1"
			b.AuthorizedAmountMinor = 5000
		})
		gomock.InOrder(
			f.gateway.EXPECT().Cancel(gomock.Any(), "pi_1", "bk-1:void:1:0").
				Return(interfaces.GatewayResult{}, interfaces.NewTerminalError("payment_intent_unexpected_state", "already captured", nil)),
			f.gateway.EXPECT().GetStatus(gomock.Any(), "pi_1").
				Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCaptured, AmountMinor: 5000}, nil).Times(2),
		)

		b, err := f.machine.Cancel(context.Background(), "bk-1", "customer request", admin)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
		if b.PaymentState != entities.PaymentStateCaptured || b.Cancelled {
			t.Fatalf("expected captured booking, got %+v", b)
		}
		history, _ := f.store.GetHistory(context.Background(), "bk-1")
		if last := history[len(history)-1]; last.NewState != entities.PaymentStateCaptured || last.AmountMinor != 5000 {
			t.Fatalf("expected captured 5000 in ledger, got %+v", last)
		}
		if f.notifier.count(entities.EventBookingCancelled) != 0 {
			t.Fatalf("expected no booking_cancelled notification")
		}
		if f.notifier.count(entities.EventPaymentCaptured) != 1 {
			t.Fatalf("expected one payment_captured notification")
		}
		assertLedgerMatchesRow(t, f.store, "bk-1")
	})

	t.Run("refused void of a canceled payment still cancels", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
			b.GatewayRef = "pi_1"
			b.AuthorizedAmountMinor = 5000
		})
		f.gateway.EXPECT().Cancel(gomock.Any(), "pi_1", gomock.Any()).
			Return(interfaces.GatewayResult{}, interfaces.NewTerminalError("payment_intent_unexpected_state", "already canceled", nil))
		f.gateway.EXPECT().GetStatus(gomock.Any(), "pi_1").
			Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCanceled}, nil)

		b, err := f.machine.Cancel(context.Background(), "bk-1", "customer request", admin)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if b.PaymentState != entities.PaymentStateCancelled {
			t.Fatalf("expected cancelled, got %s", b.PaymentState)
		}
	})

	t.Run("refused void of a live hold keeps booking authorized", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
			b.GatewayRef = "pi_1"
		})
		f.gateway.EXPECT().Cancel(gomock.Any(), "pi_1", gomock.Any()).
			Return(interfaces.GatewayResult{}, interfaces.NewTerminalError("invalid_request_error", "", nil))
		f.gateway.EXPECT().GetStatus(gomock.Any(), "pi_1").
			Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusAuthorized}, nil)

		_, err := f.machine.Cancel(context.Background(), "bk-1", "customer request", admin)
		if !errors.Is(err, interfaces.ErrGatewayTerminal) {
			t.Fatalf("expected terminal gateway error, got %v", err)
		}
		b, _ := f.store.GetByID(context.Background(), "bk-1")
		if b.PaymentState != entities.PaymentStateAuthorized {
			t.Fatalf("expected authorized, got %s", b.PaymentState)
		}
	})

	t.Run("captured booking cannot be cancelled", func(t *testing.T) {
		f := newMachineFixture(t, "25.00")
		f.seedBooking(entities.PaymentStateCaptured, nil)
		_, err := f.machine.Cancel(context.Background(), "bk-1", "", admin)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestPaymentStateMachine_Refund(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateCaptured, func(b *entities.Booking) {
		b.GatewayRef = "pi_1"
		b.AuthorizedAmountMinor = 5000
	})
	f.gateway.EXPECT().Refund(gomock.Any(), "pi_1", "bk-1:refund:2:1").
		Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusRefunded, AmountMinor: 5000}, nil)

	b, err := f.machine.Refund(context.Background(), "bk-1", "service not delivered", admin)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateRefunded {
		t.Fatalf("expected refunded, got %s", b.PaymentState)
	}
	if f.notifier.count(entities.EventPaymentRefunded) != 1 {
		t.Fatalf("expected payment_refunded notification")
	}
}

func TestPaymentStateMachine_UpdatePaymentMethodResetsFailure(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateFailed, func(b *entities.Booking) {
		b.AuthAttempts = 3
		b.FailureReason = "card_declined"
	})

	b, err := f.machine.UpdatePaymentMethod(context.Background(), "bk-1", "pm_new", Initiator{Actor: entities.ActorCustomer, ID: "cust-1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateUnbilled || b.AuthAttempts != 0 || b.PaymentMethodRef != "pm_new" || b.FailureReason != "" {
		t.Fatalf("unexpected booking %+v", b)
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_MarkFailed(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateUnbilled, nil)

	if _, err := f.machine.MarkFailed(context.Background(), "bk-1", " ", admin); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	b, err := f.machine.MarkFailed(context.Background(), "bk-1", "fraud suspected", admin)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateFailed || b.FailureRetryable || b.FailureReason != "fraud suspected" {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestPaymentStateMachine_MarkFailedAfterGatewayCapture(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	f.seedBooking(entities.PaymentStateAuthorized, func(b *entities.Booking) {
		b.GatewayRef = "pi_1"
		b.AuthorizedAmountMinor = 5000
	})
	f.gateway.EXPECT().Cancel(gomock.Any(), "pi_1", gomock.Any()).
		Return(interfaces.GatewayResult{}, interfaces.NewTerminalError("payment_intent_unexpected_state", "already captured", nil))
	f.gateway.EXPECT().GetStatus(gomock.Any(), "pi_1").
		Return(interfaces.GatewayResult{GatewayRef: "pi_1", Status: interfaces.GatewayStatusCaptured, AmountMinor: 5000}, nil).Times(2)

	b, err := f.machine.MarkFailed(context.Background(), "bk-1", "fraud suspected", admin)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if b.PaymentState != entities.PaymentStateCaptured {
		t.Fatalf("expected captured, got %s", b.PaymentState)
	}
	if f.notifier.count(entities.EventAuthorizationFailed) != 0 {
		t.Fatalf("expected no authorization_failed notification")
	}
	assertLedgerMatchesRow(t, f.store, "bk-1")
}

func TestPaymentStateMachine_UnknownBooking(t *testing.T) {
	f := newMachineFixture(t, "25.00")
	if _, err := f.machine.RequestAuthorization(context.Background(), "missing", admin); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if _, err := f.machine.RequestAuthorization(context.Background(), " ", admin); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIdempotencyKeyHelpers(t *testing.T) {
	key := idempotencyKey("bk-7", "auth", 3, 2)
	if key != "bk-7:auth:3:2" {
		t.Fatalf("unexpected key %q", key)
	}
	if got := BookingIDFromIdempotencyKey(key); got != "bk-7" {
		t.Fatalf("expected bk-7, got %q", got)
	}
}

func TestBackoffDelay(t *testing.T) {
	cases := map[int]time.Duration{
		0:  5 * time.Minute,
		1:  5 * time.Minute,
		2:  10 * time.Minute,
		3:  20 * time.Minute,
		20: 24 * time.Hour,
	}
	for attempt, want := range cases {
		if got := backoffDelay(5*time.Minute, attempt); got != want {
			t.Fatalf("attempt %d: expected %s, got %s", attempt, want, got)
		}
	}
}
