package entities

import "time"

// NotificationEvent is the trigger that produced an outbox item.
type NotificationEvent string

const (
	EventAuthorizationFailed   NotificationEvent = "authorization_failed"
	EventPaymentCaptured       NotificationEvent = "payment_captured"
	EventAuthorizationOK       NotificationEvent = "authorization_confirmed"
	EventReminderDue           NotificationEvent = "reminder_due"
	EventCaptureReviewRequired NotificationEvent = "capture_review_required"
	EventCaptureFailed         NotificationEvent = "capture_failed"
	EventBookingCancelled      NotificationEvent = "booking_cancelled"
	EventPaymentRefunded       NotificationEvent = "payment_refunded"
)

// NotificationChannel is the delivery route of an outbox item.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
	ChannelEvent NotificationChannel = "event"
)

// OutboxStatus tracks delivery of an outbox item.
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSending OutboxStatus = "sending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusDead    OutboxStatus = "dead"
)

// NotificationOutboxItem is a durable pending/sent notification tied to a
// booking. It is written once by Enqueue and then only touched by the drain.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (status-next_attempt_at-index): status, next_attempt_at
//   - GSI2 (booking_id-index): booking_id

type NotificationOutboxItem struct {
	ID            string              `json:"id"`
	BookingID     string              `json:"booking_id"`
	Event         NotificationEvent   `json:"event"`
	Channel       NotificationChannel `json:"channel"`
	Recipient     string              `json:"recipient"`
	Payload       map[string]string   `json:"payload,omitempty"`
	Status        OutboxStatus        `json:"status"`
	Attempts      int                 `json:"attempts"`
	NextAttemptAt time.Time           `json:"next_attempt_at"`
	LeaseUntil    *time.Time          `json:"lease_until,omitempty"`
	LastError     string              `json:"last_error,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	SentAt        *time.Time          `json:"sent_at,omitempty"`
}

// OutboundMessage is a rendered notification handed to a sender.
type OutboundMessage struct {
	ID        string              `json:"id"`
	BookingID string              `json:"booking_id"`
	Event     NotificationEvent   `json:"event"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Subject   string              `json:"subject,omitempty"`
	Body      string              `json:"body"`
	Payload   map[string]string   `json:"payload,omitempty"`
}
