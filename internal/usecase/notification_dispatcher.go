package usecase

import (
	"bytes"
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// INotificationEnqueuer is the write side of the outbox used by the payment
// state machine. Failures must never block a payment transition.
type INotificationEnqueuer interface {
	Enqueue(ctx context.Context, b entities.Booking, event entities.NotificationEvent, payload map[string]string) ([]entities.NotificationOutboxItem, error)
}

// INotificationDispatcher owns the outbox: Enqueue writes one item per
// delivery channel, Drain delivers due items at least once.
//
// Delivery rules:
//   - customer events go to the booking's email and phone, when present
//   - review and capture failures go to the admin email
//   - every event is also published on the event channel when enabled
//   - failed sends back off exponentially; after MaxAttempts the item is dead

type INotificationDispatcher interface {
	INotificationEnqueuer
	Drain(ctx context.Context) (DrainReport, error)
	ListForBooking(ctx context.Context, bookingID string) ([]entities.NotificationOutboxItem, error)
}

type NotificationPolicy struct {
	AdminEmail     string
	EventsEnabled  bool
	MaxAttempts    int
	RetryBaseDelay time.Duration
	BatchSize      int
	Lease          time.Duration
}

func DefaultNotificationPolicy() NotificationPolicy {
	return NotificationPolicy{
		EventsEnabled:  true,
		MaxAttempts:    5,
		RetryBaseDelay: time.Minute,
		BatchSize:      50,
		Lease:          2 * time.Minute,
	}
}

type DrainReport struct {
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Retried int `json:"retried"`
	Dead    int `json:"dead"`
	Skipped int `json:"skipped"`
}

type NotificationDispatcher struct {
	outbox interfaces.INotificationOutboxRepository
	sender interfaces.INotificationSender
	policy NotificationPolicy
	now    func() time.Time
}

var _ INotificationDispatcher = (*NotificationDispatcher)(nil)

func NewNotificationDispatcher(outbox interfaces.INotificationOutboxRepository, sender interfaces.INotificationSender, policy NotificationPolicy) *NotificationDispatcher {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 5
	}
	if policy.BatchSize <= 0 {
		policy.BatchSize = 50
	}
	if policy.RetryBaseDelay <= 0 {
		policy.RetryBaseDelay = time.Minute
	}
	if policy.Lease <= 0 {
		policy.Lease = 2 * time.Minute
	}
	return &NotificationDispatcher{
		outbox: outbox,
		sender: sender,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func isAdminEvent(event entities.NotificationEvent) bool {
	return event == entities.EventCaptureReviewRequired || event == entities.EventCaptureFailed
}

func (d *NotificationDispatcher) Enqueue(ctx context.Context, b entities.Booking, event entities.NotificationEvent, payload map[string]string) ([]entities.NotificationOutboxItem, error) {
	if b.ID == "" {
		return nil, fmt.Errorf("%w: booking id is required", ErrValidation)
	}
	body := bookingPayload(b)
	for k, v := range payload {
		body[k] = v
	}

	type route struct {
		channel   entities.NotificationChannel
		recipient string
	}
	var routes []route
	if isAdminEvent(event) {
		if d.policy.AdminEmail != "" {
			routes = append(routes, route{entities.ChannelEmail, d.policy.AdminEmail})
		}
	} else {
		if email := strings.TrimSpace(b.CustomerEmail); email != "" {
			routes = append(routes, route{entities.ChannelEmail, email})
		}
		if phone := strings.TrimSpace(b.CustomerPhone); phone != "" {
			routes = append(routes, route{entities.ChannelSMS, phone})
		}
	}
	if d.policy.EventsEnabled {
		routes = append(routes, route{entities.ChannelEvent, "payments." + string(event)})
	}

	now := d.now()
	items := make([]entities.NotificationOutboxItem, 0, len(routes))
	var errs []error
	for _, r := range routes {
		item := entities.NotificationOutboxItem{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			Event:         event,
			Channel:       r.channel,
			Recipient:     r.recipient,
			Payload:       body,
			Status:        entities.OutboxStatusPending,
			NextAttemptAt: now,
			CreatedAt:     now,
		}
		saved, err := d.outbox.Create(ctx, item)
		if err != nil {
			log.Printf("[notification][dispatcher] enqueue failed booking_id=%s event=%s channel=%s err=%v", b.ID, event, r.channel, err)
			errs = append(errs, err)
			continue
		}
		items = append(items, saved)
	}
	log.Printf("[notification][dispatcher] enqueued booking_id=%s event=%s items=%d", b.ID, event, len(items))
	return items, errors.Join(errs...)
}

func bookingPayload(b entities.Booking) map[string]string {
	return map[string]string{
		"booking_id":      b.ID,
		"customer_id":     b.CustomerID,
		"service_type":    b.ServiceType,
		"cleaning_type":   b.CleaningType,
		"scheduled_start": b.ScheduledStart.UTC().Format("Mon 2 Jan 2006 15:04 MST"),
		"amount":          formatMinor(b.AmountMinor, b.Currency),
		"status":          b.PaymentState.CustomerStatus(),
	}
}

func formatMinor(amount int64, currency string) string {
	return fmt.Sprintf("%s %s", decimal.New(amount, -2).StringFixed(2), strings.ToUpper(currency))
}

func (d *NotificationDispatcher) Drain(ctx context.Context) (DrainReport, error) {
	now := d.now()
	items, err := d.outbox.ListDue(ctx, now, d.policy.BatchSize)
	if err != nil {
		log.Printf("[notification][dispatcher] list due failed err=%v", err)
		return DrainReport{}, err
	}
	report := DrainReport{Due: len(items)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		claimed, err := d.outbox.Claim(ctx, item.ID, now, d.policy.Lease)
		if err != nil {
			log.Printf("[notification][dispatcher] claim failed id=%s err=%v", item.ID, err)
			report.Skipped++
			continue
		}
		if !claimed {
			report.Skipped++
			continue
		}

		msg, err := renderNotification(item)
		if err == nil {
			err = d.sender.Send(ctx, msg)
		}
		if err != nil {
			attempts := item.Attempts + 1
			dead := attempts >= d.policy.MaxAttempts
			next := d.now().Add(backoffDelay(d.policy.RetryBaseDelay, attempts))
			if mErr := d.outbox.MarkFailed(ctx, item.ID, attempts, err.Error(), next, dead); mErr != nil {
				log.Printf("[notification][dispatcher] mark failed error id=%s err=%v", item.ID, mErr)
			}
			log.Printf("[notification][dispatcher] send failed id=%s booking_id=%s channel=%s attempts=%d dead=%t err=%v", item.ID, item.BookingID, item.Channel, attempts, dead, err)
			if dead {
				report.Dead++
			} else {
				report.Retried++
			}
			continue
		}

		if err := d.outbox.MarkSent(ctx, item.ID, d.now()); err != nil {
			log.Printf("[notification][dispatcher] mark sent failed id=%s err=%v", item.ID, err)
		}
		report.Sent++
	}

	if report.Due > 0 {
		log.Printf("[notification][dispatcher] drain done due=%d sent=%d retried=%d dead=%d skipped=%d", report.Due, report.Sent, report.Retried, report.Dead, report.Skipped)
	}
	return report, nil
}

func (d *NotificationDispatcher) ListForBooking(ctx context.Context, bookingID string) ([]entities.NotificationOutboxItem, error) {
	return d.outbox.ListByBookingID(ctx, bookingID)
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustMessage(name, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(name + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Option("missingkey=zero").Parse(body)),
	}
}

// Customer-facing texts never include processor codes; only admin texts carry
// the reason.
var notificationTemplates = map[entities.NotificationEvent]messageTemplate{
	entities.EventAuthorizationFailed: mustMessage("authorization_failed",
		"We could not confirm payment for your booking",
		"We were unable to confirm payment for your {{.service_type}} booking on {{.scheduled_start}}. Please update your payment method to keep your slot."),
	entities.EventPaymentCaptured: mustMessage("payment_captured",
		"Payment received",
		"Thanks! We have taken {{.captured_amount}} for your {{.service_type}} booking on {{.scheduled_start}}."),
	entities.EventAuthorizationOK: mustMessage("authorization_confirmed",
		"Your cleaning is confirmed",
		"Your {{.service_type}} booking on {{.scheduled_start}} is confirmed. {{.amount}} is reserved on your card and will be charged close to the start time."),
	entities.EventReminderDue: mustMessage("reminder_due",
		"Your cleaning is coming up",
		"Reminder: your {{.service_type}} booking starts on {{.scheduled_start}}. {{.amount}} is reserved on your card and will be charged close to the start time."),
	entities.EventCaptureReviewRequired: mustMessage("capture_review_required",
		"Booking {{.booking_id}} needs a capture review",
		"Capture for booking {{.booking_id}} was held for review: {{.reason}}. Approve an amount or cancel the booking."),
	entities.EventCaptureFailed: mustMessage("capture_failed",
		"Capture failed for booking {{.booking_id}}",
		"Capture for booking {{.booking_id}} ({{.service_type}}, {{.scheduled_start}}) failed: {{.reason}}."),
	entities.EventBookingCancelled: mustMessage("booking_cancelled",
		"Your booking was cancelled",
		"Your {{.service_type}} booking on {{.scheduled_start}} was cancelled. Any hold on your card has been released."),
	entities.EventPaymentRefunded: mustMessage("payment_refunded",
		"Your payment was refunded",
		"We have refunded your payment for the {{.service_type}} booking on {{.scheduled_start}}."),
}

func renderNotification(item entities.NotificationOutboxItem) (entities.OutboundMessage, error) {
	msg := entities.OutboundMessage{
		ID:        item.ID,
		BookingID: item.BookingID,
		Event:     item.Event,
		Channel:   item.Channel,
		Recipient: item.Recipient,
		Payload:   item.Payload,
	}
	tpl, ok := notificationTemplates[item.Event]
	if !ok {
		return msg, fmt.Errorf("no template for event %q", item.Event)
	}
	data := item.Payload
	if data == nil {
		data = map[string]string{}
	}
	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return msg, err
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return msg, err
	}
	msg.Subject = subject.String()
	msg.Body = body.String()
	return msg, nil
}
