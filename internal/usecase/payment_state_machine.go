package usecase

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IPaymentStateMachine drives every PaymentState change of a booking.
//
// Guarantees:
//   - all operations on one booking are serialized by a per-booking lock
//   - every transition appends exactly one LedgerEntry in the same write; an
//     amount adjustment appends one that keeps the state
//   - a hold is only reported released once the gateway confirms nothing was
//     captured
//   - at most one live authorization exists per booking; a previous one is
//     voided before a new attempt
//   - once a gateway call is sent, the outcome is recorded even if the caller
//     goes away

type IPaymentStateMachine interface {
	RequestAuthorization(ctx context.Context, bookingID string, by Initiator) (entities.Booking, error)
	RequestCapture(ctx context.Context, bookingID string, by Initiator, opts CaptureOptions) (entities.Booking, error)
	Cancel(ctx context.Context, bookingID, reason string, by Initiator) (entities.Booking, error)
	MarkFailed(ctx context.Context, bookingID, reason string, by Initiator) (entities.Booking, error)
	Reconcile(ctx context.Context, bookingID string, by Initiator) (entities.Booking, error)
	Refund(ctx context.Context, bookingID, reason string, by Initiator) (entities.Booking, error)
	AdjustAmount(ctx context.Context, bookingID string, amountMinor int64, reason string, by Initiator) (entities.Booking, error)
	UpdatePaymentMethod(ctx context.Context, bookingID, paymentMethodRef string, by Initiator) (entities.Booking, error)
}

type PaymentPolicy struct {
	AuthorizeLead        time.Duration
	CaptureLead          time.Duration
	CaptureGrace         time.Duration
	GatewayTimeout       time.Duration
	LockTTL              time.Duration
	PendingAuthStaleness time.Duration
	MaxAttempts          int
	RetryBaseDelay       time.Duration
	AmountToleranceMinor int64
}

func DefaultPaymentPolicy() PaymentPolicy {
	return PaymentPolicy{
		AuthorizeLead:        24 * time.Hour,
		CaptureLead:          2 * time.Hour,
		CaptureGrace:         72 * time.Hour,
		GatewayTimeout:       10 * time.Second,
		LockTTL:              60 * time.Second,
		PendingAuthStaleness: 2 * time.Minute,
		MaxAttempts:          3,
		RetryBaseDelay:       5 * time.Minute,
		AmountToleranceMinor: 1,
	}
}

// CaptureOptions tunes RequestCapture. Force skips the capture window check and
// is only offered to admins.
type CaptureOptions struct {
	Force bool
}

type PaymentStateMachine struct {
	store    interfaces.IBookingLedgerRepository
	locker   interfaces.IBookingLocker
	gateway  interfaces.IPaymentGateway
	pricing  IPricingResolver
	notifier INotificationEnqueuer
	policy   PaymentPolicy
	now      func() time.Time
}

var _ IPaymentStateMachine = (*PaymentStateMachine)(nil)

func NewPaymentStateMachine(
	store interfaces.IBookingLedgerRepository,
	locker interfaces.IBookingLocker,
	gateway interfaces.IPaymentGateway,
	pricing IPricingResolver,
	notifier INotificationEnqueuer,
	policy PaymentPolicy,
) *PaymentStateMachine {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.LockTTL <= 0 {
		policy.LockTTL = time.Minute
	}
	return &PaymentStateMachine{
		store:    store,
		locker:   locker,
		gateway:  gateway,
		pricing:  pricing,
		notifier: notifier,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (m *PaymentStateMachine) WithClock(now func() time.Time) *PaymentStateMachine {
	m.now = now
	return m
}

// idempotencyKey is stable per operation attempt: seq is the ledger sequence
// of the transition that opened the operation, attempt counts retries of it.
func idempotencyKey(bookingID, op string, seq, attempt int) string {
	return bookingID + ":" + op + ":" + strconv.Itoa(seq) + ":" + strconv.Itoa(attempt)
}

// BookingIDFromIdempotencyKey recovers the booking id a key was derived from.
func BookingIDFromIdempotencyKey(key string) string {
	id, _, _ := strings.Cut(key, ":")
	return id
}

// backoffDelay doubles base per attempt, capped at one day.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= 24*time.Hour {
			return 24 * time.Hour
		}
	}
	return d
}

func gatewayCode(err error, fallback string) string {
	if code := interfaces.GatewayErrorCode(err); code != "" {
		return code
	}
	return fallback
}

func (m *PaymentStateMachine) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.policy.GatewayTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.policy.GatewayTimeout)
}

func (m *PaymentStateMachine) withBookingLock(ctx context.Context, bookingID string, fn func(b entities.Booking) (entities.Booking, error)) (entities.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return entities.Booking{}, fmt.Errorf("%w: booking id is required", ErrValidation)
	}

	owner := uuid.NewString()
	acquired, err := m.locker.Acquire(ctx, bookingID, owner, m.now(), m.policy.LockTTL)
	if err != nil {
		log.Printf("[payment][state] lock acquire failed booking_id=%s err=%v", bookingID, err)
		return entities.Booking{}, err
	}
	if !acquired {
		log.Printf("[payment][state] lock busy booking_id=%s", bookingID)
		return entities.Booking{}, ErrConcurrencyConflict
	}
	defer func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := m.locker.Release(rctx, bookingID, owner); err != nil {
			log.Printf("[payment][state] lock release failed booking_id=%s err=%v", bookingID, err)
		}
	}()

	b, err := m.store.GetByID(ctx, bookingID)
	if err != nil {
		return entities.Booking{}, err
	}
	if b.ID == "" {
		return entities.Booking{}, ErrBookingNotFound
	}
	return fn(b)
}

func (m *PaymentStateMachine) transition(ctx context.Context, b entities.Booking, to entities.PaymentState, by Initiator, externalRef string, amountMinor int64, reason string) (entities.Booking, error) {
	if !entities.CanTransition(b.PaymentState, to) {
		return b, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.PaymentState, to)
	}
	return m.appendEntry(ctx, b, to, by, externalRef, amountMinor, reason)
}

// recordInPlace writes a ledger entry that keeps the current state. It is how
// admin edits that change money without moving the booking get an audit row.
func (m *PaymentStateMachine) recordInPlace(ctx context.Context, b entities.Booking, by Initiator, amountMinor int64, reason string) (entities.Booking, error) {
	return m.appendEntry(ctx, b, b.PaymentState, by, b.GatewayRef, amountMinor, reason)
}

func (m *PaymentStateMachine) appendEntry(ctx context.Context, b entities.Booking, to entities.PaymentState, by Initiator, externalRef string, amountMinor int64, reason string) (entities.Booking, error) {
	from := b.PaymentState
	now := m.now()
	entry := entities.LedgerEntry{
		ID:            uuid.NewString(),
		BookingID:     b.ID,
		Seq:           b.LedgerSeq + 1,
		PreviousState: from,
		NewState:      to,
		At:            now,
		Actor:         by.Actor,
		ActorID:       by.ID,
		ExternalRef:   externalRef,
		AmountMinor:   amountMinor,
		Reason:        reason,
	}
	next := b
	next.PaymentState = to
	next.UpdatedAt = now

	saved, err := m.store.AppendTransition(ctx, next, entry)
	if err != nil {
		log.Printf("[payment][state] transition write failed booking_id=%s %s->%s err=%v", b.ID, from, to, err)
		if errors.Is(err, interfaces.ErrStateConflict) {
			return b, fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
		}
		return b, err
	}
	log.Printf("[payment][state] transition booking_id=%s seq=%d %s->%s actor=%s actor_id=%s ref=%s amount=%d reason=%q",
		b.ID, entry.Seq, from, to, by.Actor, by.ID, externalRef, amountMinor, reason)
	return saved, nil
}

func (m *PaymentStateMachine) saveDetails(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	b.UpdatedAt = m.now()
	saved, err := m.store.SaveDetails(ctx, b)
	if err != nil {
		log.Printf("[payment][state] save details failed booking_id=%s err=%v", b.ID, err)
		if errors.Is(err, interfaces.ErrStateConflict) {
			return b, fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
		}
		return b, err
	}
	return saved, nil
}

func (m *PaymentStateMachine) notify(ctx context.Context, b entities.Booking, event entities.NotificationEvent, payload map[string]string) {
	if m.notifier == nil {
		return
	}
	if _, err := m.notifier.Enqueue(context.WithoutCancel(ctx), b, event, payload); err != nil {
		log.Printf("[payment][state] notification enqueue failed booking_id=%s event=%s err=%v", b.ID, event, err)
	}
}

func (m *PaymentStateMachine) pendingAuthorization(ctx context.Context, b entities.Booking) (bool, error) {
	return m.store.HasPendingAuthorization(ctx, b.ID, m.now(), m.policy.PendingAuthStaleness)
}

// captureAmount is what a capture transfers: the admin-approved amount when
// set, otherwise the authorized amount.
func captureAmount(b entities.Booking) int64 {
	if b.ApprovedCaptureMinor > 0 {
		return b.ApprovedCaptureMinor
	}
	return b.AuthorizedAmountMinor
}

func (m *PaymentStateMachine) RequestAuthorization(ctx context.Context, bookingID string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		log.Printf("[payment][state] authorize requested booking_id=%s state=%s actor=%s", b.ID, b.PaymentState, by.Actor)
		switch b.PaymentState {
		case entities.PaymentStateUnbilled:
		case entities.PaymentStateFailed:
			if !b.FailureRetryable {
				return b, fmt.Errorf("%w: payment failed terminally, a new payment method is required", ErrInvalidTransition)
			}
			if by.Actor == entities.ActorSystem && !b.RetryDue(m.now()) {
				return b, ErrRetryNotDue
			}
		case entities.PaymentStateAuthorizing:
			pending, err := m.pendingAuthorization(ctx, b)
			if err != nil {
				return b, err
			}
			if pending {
				return b, fmt.Errorf("%w: authorization pending", ErrConcurrencyConflict)
			}
			return m.reconcileAuthorizing(ctx, b, by)
		default:
			return b, fmt.Errorf("%w: cannot authorize from %s", ErrInvalidTransition, b.PaymentState)
		}
		return m.authorize(ctx, b, by)
	})
}

func (m *PaymentStateMachine) authorize(ctx context.Context, b entities.Booking, by Initiator) (entities.Booking, error) {
	if strings.TrimSpace(b.PaymentMethodRef) == "" {
		return b, fmt.Errorf("%w: booking has no payment method", ErrValidation)
	}
	if b.AmountMinor <= 0 {
		return b, fmt.Errorf("%w: booking amount must be positive", ErrValidation)
	}

	voided, err := m.voidPrevious(ctx, b)
	if errors.Is(err, errCapturedAtGateway) {
		return m.resolveCaptured(ctx, b, by, "authorize", err)
	}
	if err != nil {
		log.Printf("[payment][state] void of previous authorization failed booking_id=%s err=%v", b.ID, err)
		return b, err
	}

	b.AuthAttempts++
	b.IdempotencyKey = idempotencyKey(b.ID, "auth", b.LedgerSeq+1, b.AuthAttempts)
	b.GatewayRef = ""
	b.AuthorizedAmountMinor = 0
	b.NextAttemptAt = nil
	b.FailureReason = ""
	b.FailureRetryable = false
	reason := fmt.Sprintf("authorization attempt %d", b.AuthAttempts)
	if voided != "" {
		reason += ", voided " + voided
	}
	b, err = m.transition(ctx, b, entities.PaymentStateAuthorizing, by, "", b.AmountMinor, reason)
	if err != nil {
		return b, err
	}

	opCtx := context.WithoutCancel(ctx)
	gctx, cancel := m.gatewayContext(opCtx)
	res, gerr := m.gateway.Authorize(gctx, interfaces.AuthorizeRequest{
		BookingID:        b.ID,
		CustomerID:       b.CustomerID,
		CustomerEmail:    b.CustomerEmail,
		AmountMinor:      b.AmountMinor,
		Currency:         b.Currency,
		PaymentMethodRef: b.PaymentMethodRef,
		IdempotencyKey:   b.IdempotencyKey,
		Description:      fmt.Sprintf("%s cleaning %s", b.ServiceType, b.ScheduledStart.UTC().Format("2006-01-02 15:04")),
	})
	cancel()

	b, err = m.applyAuthorization(opCtx, b, by, res, gerr)
	if err != nil {
		return b, err
	}
	if gerr != nil {
		return b, gerr
	}
	if b.PaymentState == entities.PaymentStateFailed {
		return b, interfaces.NewTerminalError(b.FailureReason, "authorization not approved", nil)
	}
	return b, nil
}

// applyAuthorization records the outcome of an authorization attempt, either
// from the Authorize call itself or from a later status lookup. The returned
// error is only set when the outcome could not be written.
func (m *PaymentStateMachine) applyAuthorization(ctx context.Context, b entities.Booking, by Initiator, res interfaces.GatewayResult, gerr error) (entities.Booking, error) {
	if gerr != nil {
		code := gatewayCode(gerr, "gateway_error")
		retryable := !errors.Is(gerr, interfaces.ErrGatewayTerminal)
		log.Printf("[payment][state] authorization error booking_id=%s code=%s retryable=%t err=%v", b.ID, code, retryable, gerr)
		return m.failAuthorization(ctx, b, by, code, retryable)
	}

	if res.GatewayRef != "" {
		b.GatewayRef = res.GatewayRef
	}
	switch res.Status {
	case interfaces.GatewayStatusAuthorized, interfaces.GatewayStatusCaptured:
		b.AuthorizedAmountMinor = res.AmountMinor
		if b.AuthorizedAmountMinor <= 0 {
			b.AuthorizedAmountMinor = b.AmountMinor
		}
		b.FailureReason = ""
		b.FailureRetryable = false
		b, err := m.transition(ctx, b, entities.PaymentStateAuthorized, by, b.GatewayRef, b.AuthorizedAmountMinor, "authorized")
		if err != nil {
			return b, err
		}
		event := entities.EventAuthorizationOK
		if !m.now().Before(b.ScheduledStart.Add(-m.policy.AuthorizeLead)) {
			event = entities.EventReminderDue
		}
		m.notify(ctx, b, event, nil)
		return b, nil
	case interfaces.GatewayStatusPending:
		log.Printf("[payment][state] authorization pending at gateway booking_id=%s ref=%s", b.ID, b.GatewayRef)
		return m.saveDetails(ctx, b)
	default:
		code := res.FailureCode
		if code == "" {
			code = "authorization_" + string(res.Status)
		}
		return m.failAuthorization(ctx, b, by, code, false)
	}
}

func (m *PaymentStateMachine) failAuthorization(ctx context.Context, b entities.Booking, by Initiator, reason string, retryable bool) (entities.Booking, error) {
	if retryable && b.AuthAttempts >= m.policy.MaxAttempts {
		retryable = false
		reason = "retry_budget_exhausted: " + reason
	}
	b.FailureReason = reason
	b.FailureRetryable = retryable
	b.NextAttemptAt = nil
	if retryable {
		next := m.now().Add(backoffDelay(m.policy.RetryBaseDelay, b.AuthAttempts))
		b.NextAttemptAt = &next
	}
	b, err := m.transition(ctx, b, entities.PaymentStateFailed, by, b.GatewayRef, b.AmountMinor, reason)
	if err != nil {
		return b, err
	}
	if !retryable {
		m.notify(ctx, b, entities.EventAuthorizationFailed, map[string]string{"reason": reason})
	}
	return b, nil
}

// voidPrevious releases any authorization a previous attempt may have left at
// the gateway, found by reference or by the previous idempotency key. It
// returns the voided reference.
func (m *PaymentStateMachine) voidPrevious(ctx context.Context, b entities.Booking) (string, error) {
	ref := b.GatewayRef
	if ref == "" && b.IdempotencyKey != "" {
		gctx, cancel := m.gatewayContext(ctx)
		res, found, err := m.gateway.Lookup(gctx, b.IdempotencyKey)
		cancel()
		if err != nil {
			if errors.Is(err, interfaces.ErrGatewayTerminal) {
				log.Printf("[payment][state] lookup of previous attempt rejected booking_id=%s key=%s err=%v", b.ID, b.IdempotencyKey, err)
				return "", nil
			}
			return "", err
		}
		if !found {
			return "", nil
		}
		switch res.Status {
		case interfaces.GatewayStatusCanceled, interfaces.GatewayStatusFailed, interfaces.GatewayStatusRefunded:
			return "", nil
		}
		ref = res.GatewayRef
	}
	if ref == "" {
		return "", nil
	}

	gctx, cancel := m.gatewayContext(ctx)
	_, err := m.gateway.Cancel(gctx, ref, idempotencyKey(b.ID, "void", b.LedgerSeq, 0))
	cancel()
	if err != nil {
		if errors.Is(err, interfaces.ErrGatewayTerminal) {
			log.Printf("[payment][state] void refused booking_id=%s ref=%s err=%v", b.ID, ref, err)
			return m.confirmReleased(ctx, b, ref, err)
		}
		return "", err
	}
	log.Printf("[payment][state] voided authorization booking_id=%s ref=%s", b.ID, ref)
	return ref, nil
}

// confirmReleased asks the gateway what a refused void left behind. Canceled,
// failed and unknown payments hold nothing. A captured or refunded payment
// yields errCapturedAtGateway; anything still holding funds returns voidErr.
func (m *PaymentStateMachine) confirmReleased(ctx context.Context, b entities.Booking, ref string, voidErr error) (string, error) {
	gctx, cancel := m.gatewayContext(ctx)
	res, err := m.gateway.GetStatus(gctx, ref)
	cancel()
	if err != nil {
		if errors.Is(err, interfaces.ErrGatewayTerminal) {
			log.Printf("[payment][state] refused void is unknown at gateway booking_id=%s ref=%s err=%v", b.ID, ref, err)
			return ref, nil
		}
		return "", err
	}
	switch res.Status {
	case interfaces.GatewayStatusCanceled, interfaces.GatewayStatusFailed:
		return ref, nil
	case interfaces.GatewayStatusCaptured, interfaces.GatewayStatusRefunded:
		log.Printf("[payment][state] void refused, payment already %s booking_id=%s ref=%s", res.Status, b.ID, ref)
		return ref, fmt.Errorf("%w: ref=%s status=%s", errCapturedAtGateway, ref, res.Status)
	default:
		return "", voidErr
	}
}

// resolveCaptured handles a release that failed because the money was already
// taken. An Authorized booking catches up to the gateway; any other state is
// held for manual review. The caller's operation is always rejected.
func (m *PaymentStateMachine) resolveCaptured(ctx context.Context, b entities.Booking, by Initiator, op string, cause error) (entities.Booking, error) {
	var err error
	if b.PaymentState == entities.PaymentStateAuthorized {
		b, err = m.reconcileAuthorized(ctx, b, by)
	} else {
		b.NeedsReview = true
		b.ReviewReason = cause.Error()
		b, err = m.saveDetails(ctx, b)
		if err == nil {
			m.notify(ctx, b, entities.EventCaptureReviewRequired, map[string]string{"reason": b.ReviewReason})
		}
	}
	if err != nil {
		return b, err
	}
	return b, fmt.Errorf("%w: cannot %s, %w", ErrInvalidTransition, op, cause)
}

func (m *PaymentStateMachine) RequestCapture(ctx context.Context, bookingID string, by Initiator, opts CaptureOptions) (entities.Booking, error) {
	by = by.orSystem()
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		log.Printf("[payment][state] capture requested booking_id=%s state=%s actor=%s force=%t", b.ID, b.PaymentState, by.Actor, opts.Force)
		switch b.PaymentState {
		case entities.PaymentStateAuthorized:
		case entities.PaymentStateCapturing:
			return m.reconcileCapturing(ctx, b, by)
		default:
			return b, fmt.Errorf("%w: cannot capture from %s", ErrInvalidTransition, b.PaymentState)
		}

		now := m.now()
		if !opts.Force {
			opens := b.ScheduledStart.Add(-m.policy.CaptureLead)
			closes := b.ScheduledStart.Add(m.policy.CaptureGrace)
			if now.Before(opens) || now.After(closes) {
				return b, fmt.Errorf("%w: window is %s to %s", ErrOutsideCaptureWindow, opens.Format(time.RFC3339), closes.Format(time.RFC3339))
			}
		}

		quote, err := m.pricing.ResolveRate(ctx, b.CustomerID, b.ServiceType, b.CleaningType)
		if err != nil {
			log.Printf("[payment][state] capture rate lookup failed booking_id=%s err=%v", b.ID, err)
			return b, err
		}
		recomputed := quote.ChargeMinor(b.DurationMins)
		expected := b.ExpectedCaptureMinor(recomputed)

		if b.ApprovedCaptureMinor > 0 {
			if expected > b.AuthorizedAmountMinor {
				return b, fmt.Errorf("%w: approved %d exceeds authorized %d", ErrAmountMismatch, expected, b.AuthorizedAmountMinor)
			}
		} else if diff := expected - b.AuthorizedAmountMinor; diff > m.policy.AmountToleranceMinor || -diff > m.policy.AmountToleranceMinor {
			return m.flagForReview(ctx, b, recomputed)
		}

		b.NeedsReview = false
		b.ReviewReason = ""
		b.CaptureAttempts = 1
		b.NextAttemptAt = nil
		b.FailureReason = ""
		b.FailureRetryable = false
		b.IdempotencyKey = idempotencyKey(b.ID, "capture", b.LedgerSeq+1, b.CaptureAttempts)
		amount := captureAmount(b)
		reason := fmt.Sprintf("capture attempt 1, recomputed %d via %s", recomputed, quote.Source)
		b, err = m.transition(ctx, b, entities.PaymentStateCapturing, by, b.GatewayRef, amount, reason)
		if err != nil {
			return b, err
		}
		return m.issueCapture(context.WithoutCancel(ctx), b, by)
	})
}

func (m *PaymentStateMachine) flagForReview(ctx context.Context, b entities.Booking, recomputed int64) (entities.Booking, error) {
	alreadyFlagged := b.NeedsReview
	b.NeedsReview = true
	b.ReviewReason = fmt.Sprintf("recomputed amount %d differs from authorized %d", recomputed, b.AuthorizedAmountMinor)
	saved, err := m.saveDetails(ctx, b)
	if err != nil {
		return saved, err
	}
	log.Printf("[payment][state] capture held for review booking_id=%s recomputed=%d authorized=%d", b.ID, recomputed, b.AuthorizedAmountMinor)
	if !alreadyFlagged {
		m.notify(ctx, saved, entities.EventCaptureReviewRequired, map[string]string{
			"reason":           saved.ReviewReason,
			"recomputed_minor": strconv.FormatInt(recomputed, 10),
			"authorized_minor": strconv.FormatInt(b.AuthorizedAmountMinor, 10),
		})
	}
	return saved, fmt.Errorf("%w: %s", ErrAmountMismatch, saved.ReviewReason)
}

func (m *PaymentStateMachine) issueCapture(ctx context.Context, b entities.Booking, by Initiator) (entities.Booking, error) {
	amount := captureAmount(b)
	gctx, cancel := m.gatewayContext(ctx)
	res, gerr := m.gateway.Capture(gctx, interfaces.CaptureRequest{
		GatewayRef:     b.GatewayRef,
		AmountMinor:    amount,
		IdempotencyKey: b.IdempotencyKey,
	})
	cancel()

	if gerr != nil {
		code := gatewayCode(gerr, "gateway_error")
		if errors.Is(gerr, interfaces.ErrGatewayTerminal) {
			b, err := m.failCapture(ctx, b, by, code)
			if err != nil {
				return b, err
			}
			return b, gerr
		}
		if b.CaptureAttempts >= m.policy.MaxAttempts {
			b, err := m.failCapture(ctx, b, by, "retry_budget_exhausted: "+code)
			if err != nil {
				return b, err
			}
			return b, gerr
		}
		next := m.now().Add(backoffDelay(m.policy.RetryBaseDelay, b.CaptureAttempts))
		b.NextAttemptAt = &next
		b.FailureReason = code
		b.FailureRetryable = true
		log.Printf("[payment][state] capture retry scheduled booking_id=%s attempt=%d next=%s code=%s", b.ID, b.CaptureAttempts, next.Format(time.RFC3339), code)
		saved, err := m.saveDetails(ctx, b)
		if err != nil {
			return saved, err
		}
		return saved, gerr
	}

	switch res.Status {
	case interfaces.GatewayStatusCaptured:
		captured := res.AmountMinor
		if captured <= 0 {
			captured = amount
		}
		return m.completeCapture(ctx, b, by, captured)
	case interfaces.GatewayStatusPending, interfaces.GatewayStatusAuthorized:
		next := m.now().Add(backoffDelay(m.policy.RetryBaseDelay, b.CaptureAttempts))
		b.NextAttemptAt = &next
		log.Printf("[payment][state] capture pending at gateway booking_id=%s ref=%s", b.ID, b.GatewayRef)
		return m.saveDetails(ctx, b)
	default:
		code := res.FailureCode
		if code == "" {
			code = "capture_" + string(res.Status)
		}
		b, err := m.failCapture(ctx, b, by, code)
		if err != nil {
			return b, err
		}
		return b, interfaces.NewTerminalError(code, "capture not completed", nil)
	}
}

func (m *PaymentStateMachine) completeCapture(ctx context.Context, b entities.Booking, by Initiator, captured int64) (entities.Booking, error) {
	b.NextAttemptAt = nil
	b.FailureReason = ""
	b.FailureRetryable = false
	b, err := m.transition(ctx, b, entities.PaymentStateCaptured, by, b.GatewayRef, captured, "captured")
	if err != nil {
		return b, err
	}
	m.notify(ctx, b, entities.EventPaymentCaptured, map[string]string{
		"captured_amount": formatMinor(captured, b.Currency),
	})
	return b, nil
}

func (m *PaymentStateMachine) failCapture(ctx context.Context, b entities.Booking, by Initiator, reason string) (entities.Booking, error) {
	b.FailureReason = reason
	b.FailureRetryable = false
	b.NextAttemptAt = nil
	b, err := m.transition(ctx, b, entities.PaymentStateFailed, by, b.GatewayRef, captureAmount(b), reason)
	if err != nil {
		return b, err
	}
	m.notify(ctx, b, entities.EventCaptureFailed, map[string]string{"reason": reason})
	return b, nil
}

func (m *PaymentStateMachine) Reconcile(ctx context.Context, bookingID string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		log.Printf("[payment][state] reconcile booking_id=%s state=%s actor=%s", b.ID, b.PaymentState, by.Actor)
		switch b.PaymentState {
		case entities.PaymentStateAuthorizing:
			return m.reconcileAuthorizing(ctx, b, by)
		case entities.PaymentStateAuthorized:
			return m.reconcileAuthorized(ctx, b, by)
		case entities.PaymentStateCapturing:
			return m.reconcileCapturing(ctx, b, by)
		case entities.PaymentStateCaptured:
			return m.reconcileCaptured(ctx, b, by)
		default:
			return b, nil
		}
	})
}

func (m *PaymentStateMachine) reconcileAuthorizing(ctx context.Context, b entities.Booking, by Initiator) (entities.Booking, error) {
	var (
		res   interfaces.GatewayResult
		found bool
		err   error
	)
	gctx, cancel := m.gatewayContext(ctx)
	switch {
	case b.GatewayRef != "":
		res, err = m.gateway.GetStatus(gctx, b.GatewayRef)
		found = err == nil
	case b.IdempotencyKey != "":
		res, found, err = m.gateway.Lookup(gctx, b.IdempotencyKey)
	}
	cancel()
	if errors.Is(err, interfaces.ErrGatewayTerminal) {
		log.Printf("[payment][state] gateway does not know authorization booking_id=%s ref=%s err=%v", b.ID, b.GatewayRef, err)
		found, err = false, nil
	}
	if err != nil {
		log.Printf("[payment][state] reconcile lookup failed booking_id=%s err=%v", b.ID, err)
		return b, err
	}

	if !found {
		pending, err := m.pendingAuthorization(ctx, b)
		if err != nil {
			return b, err
		}
		if pending {
			return b, fmt.Errorf("%w: authorization pending", ErrConcurrencyConflict)
		}
		log.Printf("[payment][state] authorization never reached gateway booking_id=%s key=%s", b.ID, b.IdempotencyKey)
		return m.failAuthorization(ctx, b, by, "authorization_interrupted", true)
	}
	return m.applyAuthorization(ctx, b, by, res, nil)
}

func (m *PaymentStateMachine) reconcileAuthorized(ctx context.Context, b entities.Booking, by Initiator) (entities.Booking, error) {
	if b.GatewayRef == "" {
		return b, nil
	}
	gctx, cancel := m.gatewayContext(ctx)
	res, err := m.gateway.GetStatus(gctx, b.GatewayRef)
	cancel()
	if err != nil {
		return b, err
	}

	switch res.Status {
	case interfaces.GatewayStatusCaptured, interfaces.GatewayStatusRefunded:
		captured := res.AmountMinor
		if captured <= 0 {
			captured = captureAmount(b)
		}
		b, err = m.transition(ctx, b, entities.PaymentStateCapturing, by, b.GatewayRef, captured, "captured at gateway")
		if err != nil {
			return b, err
		}
		b, err = m.completeCapture(ctx, b, by, captured)
		if err != nil || res.Status != interfaces.GatewayStatusRefunded {
			return b, err
		}
		return m.recordRefund(ctx, b, by, captured, "refunded at gateway")
	case interfaces.GatewayStatusCanceled, interfaces.GatewayStatusFailed:
		b.FailureReason = "authorization_" + string(res.Status)
		b.FailureRetryable = false
		b.NextAttemptAt = nil
		b, err = m.transition(ctx, b, entities.PaymentStateFailed, by, b.GatewayRef, b.AuthorizedAmountMinor, b.FailureReason)
		if err != nil {
			return b, err
		}
		m.notify(ctx, b, entities.EventAuthorizationFailed, map[string]string{"reason": b.FailureReason})
		return b, nil
	default:
		return b, nil
	}
}

func (m *PaymentStateMachine) reconcileCapturing(ctx context.Context, b entities.Booking, by Initiator) (entities.Booking, error) {
	gctx, cancel := m.gatewayContext(ctx)
	res, err := m.gateway.GetStatus(gctx, b.GatewayRef)
	cancel()
	if err != nil {
		return b, err
	}

	switch res.Status {
	case interfaces.GatewayStatusCaptured, interfaces.GatewayStatusRefunded:
		captured := res.AmountMinor
		if captured <= 0 {
			captured = captureAmount(b)
		}
		return m.completeCapture(ctx, b, by, captured)
	case interfaces.GatewayStatusAuthorized:
		if by.Actor == entities.ActorSystem && !b.RetryDue(m.now()) {
			return b, ErrRetryNotDue
		}
		if b.CaptureAttempts >= m.policy.MaxAttempts {
			return m.failCapture(ctx, b, by, "retry_budget_exhausted: "+b.FailureReason)
		}
		b.CaptureAttempts++
		b.IdempotencyKey = idempotencyKey(b.ID, "capture", b.LedgerSeq, b.CaptureAttempts)
		b, err = m.saveDetails(ctx, b)
		if err != nil {
			return b, err
		}
		log.Printf("[payment][state] capture retry booking_id=%s attempt=%d", b.ID, b.CaptureAttempts)
		return m.issueCapture(context.WithoutCancel(ctx), b, by)
	case interfaces.GatewayStatusCanceled, interfaces.GatewayStatusFailed:
		return m.failCapture(ctx, b, by, "authorization_"+string(res.Status))
	default:
		return b, nil
	}
}

func (m *PaymentStateMachine) reconcileCaptured(ctx context.Context, b entities.Booking, by Initiator) (entities.Booking, error) {
	if b.GatewayRef == "" {
		return b, nil
	}
	gctx, cancel := m.gatewayContext(ctx)
	res, err := m.gateway.GetStatus(gctx, b.GatewayRef)
	cancel()
	if err != nil {
		return b, err
	}
	if res.Status != interfaces.GatewayStatusRefunded {
		return b, nil
	}
	return m.recordRefund(ctx, b, by, captureAmount(b), "refunded at gateway")
}

func (m *PaymentStateMachine) recordRefund(ctx context.Context, b entities.Booking, by Initiator, amount int64, reason string) (entities.Booking, error) {
	b, err := m.transition(ctx, b, entities.PaymentStateRefunded, by, b.GatewayRef, amount, reason)
	if err != nil {
		return b, err
	}
	m.notify(ctx, b, entities.EventPaymentRefunded, nil)
	return b, nil
}

func (m *PaymentStateMachine) Cancel(ctx context.Context, bookingID, reason string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "cancelled"
	}
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		log.Printf("[payment][state] cancel requested booking_id=%s state=%s actor=%s", b.ID, b.PaymentState, by.Actor)
		if b.PaymentState == entities.PaymentStateAuthorizing {
			pending, err := m.pendingAuthorization(ctx, b)
			if err != nil {
				return b, err
			}
			if pending {
				return b, fmt.Errorf("%w: authorization pending", ErrConcurrencyConflict)
			}
			b, err = m.reconcileAuthorizing(ctx, b, by)
			if err != nil {
				return b, err
			}
		}

		switch b.PaymentState {
		case entities.PaymentStateUnbilled, entities.PaymentStateAuthorizing, entities.PaymentStateAuthorized, entities.PaymentStateFailed:
		default:
			return b, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, b.PaymentState)
		}

		voided, err := m.voidPrevious(ctx, b)
		if errors.Is(err, errCapturedAtGateway) {
			return m.resolveCaptured(ctx, b, by, "cancel", err)
		}
		if err != nil {
			log.Printf("[payment][state] cancel void failed booking_id=%s err=%v", b.ID, err)
			return b, err
		}

		b.Cancelled = true
		b.NextAttemptAt = nil
		b.NeedsReview = false
		b, err = m.transition(ctx, b, entities.PaymentStateCancelled, by, voided, b.AmountMinor, reason)
		if err != nil {
			return b, err
		}
		m.notify(ctx, b, entities.EventBookingCancelled, nil)
		return b, nil
	})
}

func (m *PaymentStateMachine) MarkFailed(ctx context.Context, bookingID, reason string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.Booking{}, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		switch b.PaymentState {
		case entities.PaymentStateFailed:
			b.FailureReason = reason
			b.FailureRetryable = false
			b.NextAttemptAt = nil
			return m.saveDetails(ctx, b)
		case entities.PaymentStateAuthorizing:
			pending, err := m.pendingAuthorization(ctx, b)
			if err != nil {
				return b, err
			}
			if pending {
				return b, fmt.Errorf("%w: authorization pending", ErrConcurrencyConflict)
			}
		case entities.PaymentStateUnbilled, entities.PaymentStateAuthorized, entities.PaymentStateCapturing:
		default:
			return b, fmt.Errorf("%w: cannot fail from %s", ErrInvalidTransition, b.PaymentState)
		}

		if b.PaymentState == entities.PaymentStateAuthorized || b.PaymentState == entities.PaymentStateAuthorizing {
			_, err := m.voidPrevious(ctx, b)
			if errors.Is(err, errCapturedAtGateway) {
				return m.resolveCaptured(ctx, b, by, "mark failed", err)
			}
			if err != nil {
				return b, err
			}
		}

		event := entities.EventAuthorizationFailed
		if b.PaymentState == entities.PaymentStateCapturing {
			event = entities.EventCaptureFailed
		}
		b.FailureReason = reason
		b.FailureRetryable = false
		b.NextAttemptAt = nil
		b, err := m.transition(ctx, b, entities.PaymentStateFailed, by, b.GatewayRef, b.AmountMinor, reason)
		if err != nil {
			return b, err
		}
		m.notify(ctx, b, event, map[string]string{"reason": reason})
		return b, nil
	})
}

func (m *PaymentStateMachine) Refund(ctx context.Context, bookingID, reason string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "refund requested"
	}
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		if b.PaymentState != entities.PaymentStateCaptured {
			return b, fmt.Errorf("%w: cannot refund from %s", ErrInvalidTransition, b.PaymentState)
		}
		gctx, cancel := m.gatewayContext(context.WithoutCancel(ctx))
		res, err := m.gateway.Refund(gctx, b.GatewayRef, idempotencyKey(b.ID, "refund", b.LedgerSeq+1, 1))
		cancel()
		if err != nil {
			log.Printf("[payment][state] refund failed booking_id=%s err=%v", b.ID, err)
			return b, err
		}
		amount := res.AmountMinor
		if amount <= 0 {
			amount = captureAmount(b)
		}
		return m.recordRefund(context.WithoutCancel(ctx), b, by, amount, reason)
	})
}

func (m *PaymentStateMachine) AdjustAmount(ctx context.Context, bookingID string, amountMinor int64, reason string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	if amountMinor <= 0 {
		return entities.Booking{}, fmt.Errorf("%w: amount_minor must be positive", ErrValidation)
	}
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		switch b.PaymentState {
		case entities.PaymentStateUnbilled, entities.PaymentStateFailed:
			b.AmountMinor = amountMinor
		case entities.PaymentStateAuthorized:
			if amountMinor > b.AuthorizedAmountMinor {
				return b, fmt.Errorf("%w: %d exceeds authorized %d, cancel and re-authorize instead", ErrValidation, amountMinor, b.AuthorizedAmountMinor)
			}
			b.ApprovedCaptureMinor = amountMinor
			b.NeedsReview = false
			b.ReviewReason = ""
		default:
			return b, fmt.Errorf("%w: cannot adjust amount in %s", ErrInvalidTransition, b.PaymentState)
		}
		note := "amount adjusted"
		if reason = strings.TrimSpace(reason); reason != "" {
			note += ": " + reason
		}
		return m.recordInPlace(ctx, b, by, amountMinor, note)
	})
}

func (m *PaymentStateMachine) UpdatePaymentMethod(ctx context.Context, bookingID, paymentMethodRef string, by Initiator) (entities.Booking, error) {
	by = by.orSystem()
	paymentMethodRef = strings.TrimSpace(paymentMethodRef)
	if paymentMethodRef == "" {
		return entities.Booking{}, fmt.Errorf("%w: payment_method_ref is required", ErrValidation)
	}
	return m.withBookingLock(ctx, bookingID, func(b entities.Booking) (entities.Booking, error) {
		switch b.PaymentState {
		case entities.PaymentStateUnbilled:
			b.PaymentMethodRef = paymentMethodRef
			return m.saveDetails(ctx, b)
		case entities.PaymentStateFailed:
			b.PaymentMethodRef = paymentMethodRef
			b.AuthAttempts = 0
			b.CaptureAttempts = 0
			b.NextAttemptAt = nil
			b.FailureReason = ""
			b.FailureRetryable = false
			b.ApprovedCaptureMinor = 0
			return m.transition(ctx, b, entities.PaymentStateUnbilled, by, "", b.AmountMinor, "payment method updated")
		default:
			return b, fmt.Errorf("%w: cannot change payment method in %s", ErrInvalidTransition, b.PaymentState)
		}
	})
}
