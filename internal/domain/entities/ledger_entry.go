package entities

import "time"

// Actor identifies who drove a transition.
type Actor string

const (
	ActorSystem   Actor = "system"
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
	ActorWebhook  Actor = "webhook"
)

// LedgerEntry is an immutable record of one PaymentState transition.
//
// Storage model (DynamoDB):
//   - PK: booking_id
//   - SK: seq (number, 1-based, contiguous per booking)
//
// Entries are appended in the same transaction that updates the booking row and
// are never updated or deleted.

type LedgerEntry struct {
	ID            string       `json:"id"`
	BookingID     string       `json:"booking_id"`
	Seq           int          `json:"seq"`
	PreviousState PaymentState `json:"previous_state"`
	NewState      PaymentState `json:"new_state"`
	At            time.Time    `json:"at"`
	Actor         Actor        `json:"actor"`
	ActorID       string       `json:"actor_id,omitempty"`
	ExternalRef   string       `json:"external_ref,omitempty"`
	AmountMinor   int64        `json:"amount_minor"`
	Reason        string       `json:"reason,omitempty"`
}
