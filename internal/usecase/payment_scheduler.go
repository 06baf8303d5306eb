package usecase

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// SchedulerAction is what a tick does with one booking.
type SchedulerAction string

const (
	ActionNone      SchedulerAction = ""
	ActionAuthorize SchedulerAction = "authorize"
	ActionCapture   SchedulerAction = "capture"
	ActionReconcile SchedulerAction = "reconcile"
)

type SchedulerReport struct {
	Scanned    int `json:"scanned"`
	Authorized int `json:"authorize_runs"`
	Captured   int `json:"capture_runs"`
	Reconciled int `json:"reconcile_runs"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// PaymentScheduler finds bookings whose payment step is due and drives them
// through the state machine. Every action goes through the same locked entry
// points an admin uses, so overlapping ticks or replicas are safe.
type PaymentScheduler struct {
	store       interfaces.IBookingLedgerRepository
	machine     IPaymentStateMachine
	policy      PaymentPolicy
	concurrency int
	now         func() time.Time
}

func NewPaymentScheduler(store interfaces.IBookingLedgerRepository, machine IPaymentStateMachine, policy PaymentPolicy, concurrency int) *PaymentScheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PaymentScheduler{
		store:       store,
		machine:     machine,
		policy:      policy,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DueAction decides what, if anything, is due for b at now.
func (s *PaymentScheduler) DueAction(b entities.Booking, now time.Time) SchedulerAction {
	if b.Cancelled {
		return ActionNone
	}
	closes := b.ScheduledStart.Add(s.policy.CaptureGrace)
	switch b.PaymentState {
	case entities.PaymentStateUnbilled:
		if b.PaymentMethodRef == "" || now.After(closes) {
			return ActionNone
		}
		if !now.Before(b.ScheduledStart.Add(-s.policy.AuthorizeLead)) {
			return ActionAuthorize
		}
	case entities.PaymentStateFailed:
		if b.FailureRetryable && b.AuthAttempts < s.policy.MaxAttempts && b.RetryDue(now) && !now.After(closes) {
			return ActionAuthorize
		}
	case entities.PaymentStateAuthorizing:
		if !now.Before(b.UpdatedAt.Add(s.policy.PendingAuthStaleness)) {
			return ActionReconcile
		}
	case entities.PaymentStateAuthorized:
		if b.NeedsReview || now.After(closes) {
			return ActionNone
		}
		if !now.Before(b.ScheduledStart.Add(-s.policy.CaptureLead)) {
			return ActionCapture
		}
	case entities.PaymentStateCapturing:
		if b.NextAttemptAt != nil {
			if b.RetryDue(now) {
				return ActionReconcile
			}
			return ActionNone
		}
		if !now.Before(b.UpdatedAt.Add(s.policy.PendingAuthStaleness)) {
			return ActionReconcile
		}
	}
	return ActionNone
}

// RunOnce performs one scheduling pass. Per-booking failures are logged and
// counted; only a failing listing aborts the pass.
func (s *PaymentScheduler) RunOnce(ctx context.Context) (SchedulerReport, error) {
	now := s.now()
	due, err := s.store.ListDue(ctx, now.Add(s.policy.AuthorizeLead))
	if err != nil {
		log.Printf("[payment][scheduler] list due failed err=%v", err)
		return SchedulerReport{}, err
	}

	var (
		mu     sync.Mutex
		report = SchedulerReport{Scanned: len(due)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, b := range due {
		action := s.DueAction(b, now)
		if action == ActionNone {
			continue
		}
		bookingID := b.ID
		g.Go(func() error {
			err := s.run(gctx, bookingID, action)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				switch action {
				case ActionAuthorize:
					report.Authorized++
				case ActionCapture:
					report.Captured++
				case ActionReconcile:
					report.Reconciled++
				}
			case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrRetryNotDue), errors.Is(err, ErrOutsideCaptureWindow):
				report.Skipped++
				log.Printf("[payment][scheduler] skipped booking_id=%s action=%s reason=%v", bookingID, action, err)
			default:
				report.Errors++
				log.Printf("[payment][scheduler] action failed booking_id=%s action=%s err=%v", bookingID, action, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[payment][scheduler] tick done scanned=%d authorize=%d capture=%d reconcile=%d skipped=%d errors=%d",
		report.Scanned, report.Authorized, report.Captured, report.Reconciled, report.Skipped, report.Errors)
	return report, ctx.Err()
}

func (s *PaymentScheduler) run(ctx context.Context, bookingID string, action SchedulerAction) error {
	var err error
	switch action {
	case ActionAuthorize:
		_, err = s.machine.RequestAuthorization(ctx, bookingID, SchedulerInitiator)
	case ActionCapture:
		_, err = s.machine.RequestCapture(ctx, bookingID, SchedulerInitiator, CaptureOptions{})
	case ActionReconcile:
		_, err = s.machine.Reconcile(ctx, bookingID, SchedulerInitiator)
	}
	return err
}

// RunEvery calls fn immediately and then on every tick until ctx is done.
func RunEvery(ctx context.Context, name string, interval time.Duration, fn func(ctx context.Context) error) error {
	if interval <= 0 {
		interval = time.Minute
	}
	log.Printf("[worker][%s] started interval=%s", name, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[worker][%s] run failed err=%v", name, err)
		}
		select {
		case <-ctx.Done():
			log.Printf("[worker][%s] stopped", name)
			return nil
		case <-ticker.C:
		}
	}
}
