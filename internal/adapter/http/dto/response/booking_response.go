package response

import (
	"cleaning_payments/internal/domain/entities"
	"time"
)

// CustomerBookingResponse is what customers see: a simplified status and a
// generic message, never gateway codes or internal states.
type CustomerBookingResponse struct {
	ID              string    `json:"id"`
	ServiceType     string    `json:"service_type"`
	CleaningType    string    `json:"cleaning_type,omitempty"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	DurationMinutes int       `json:"duration_minutes"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	PaymentStatus   string    `json:"payment_status"`
	Message         string    `json:"message,omitempty"`
}

func FromBookingForCustomer(b entities.Booking) CustomerBookingResponse {
	status := b.PaymentState.CustomerStatus()
	return CustomerBookingResponse{
		ID:              b.ID,
		ServiceType:     b.ServiceType,
		CleaningType:    b.CleaningType,
		ScheduledStart:  b.ScheduledStart,
		DurationMinutes: b.DurationMins,
		Amount:          formatMinor(b.AmountMinor),
		Currency:        b.Currency,
		PaymentStatus:   status,
		Message:         customerMessage(status),
	}
}

func customerMessage(status string) string {
	switch status {
	case "failed":
		return "We could not take payment for this booking. Please update your payment method."
	case "cancelled":
		return "This booking has been cancelled."
	case "refunded":
		return "This booking has been refunded."
	default:
		return ""
	}
}

type LedgerEntryResponse struct {
	Seq           int       `json:"seq"`
	PreviousState string    `json:"previous_state"`
	NewState      string    `json:"new_state"`
	At            time.Time `json:"at"`
	Actor         string    `json:"actor"`
	ActorID       string    `json:"actor_id,omitempty"`
	ExternalRef   string    `json:"external_ref,omitempty"`
	AmountMinor   int64     `json:"amount_minor"`
	Reason        string    `json:"reason,omitempty"`
}

type NotificationResponse struct {
	ID            string     `json:"id"`
	Event         string     `json:"event"`
	Channel       string     `json:"channel"`
	Recipient     string     `json:"recipient"`
	Status        string     `json:"status"`
	Attempts      int        `json:"attempts"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	LastError     string     `json:"last_error,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

// AdminBookingResponse is the full operational view.
type AdminBookingResponse struct {
	entities.Booking
	CustomerStatus string                 `json:"customer_status"`
	History        []LedgerEntryResponse  `json:"history,omitempty"`
	Notifications  []NotificationResponse `json:"notifications,omitempty"`
}

func FromBookingForAdmin(b entities.Booking, history []entities.LedgerEntry, items []entities.NotificationOutboxItem) AdminBookingResponse {
	out := AdminBookingResponse{Booking: b, CustomerStatus: b.PaymentState.CustomerStatus()}
	for _, e := range history {
		out.History = append(out.History, LedgerEntryResponse{
			Seq:           e.Seq,
			PreviousState: string(e.PreviousState),
			NewState:      string(e.NewState),
			At:            e.At,
			Actor:         string(e.Actor),
			ActorID:       e.ActorID,
			ExternalRef:   e.ExternalRef,
			AmountMinor:   e.AmountMinor,
			Reason:        e.Reason,
		})
	}
	for _, n := range items {
		out.Notifications = append(out.Notifications, NotificationResponse{
			ID:            n.ID,
			Event:         string(n.Event),
			Channel:       string(n.Channel),
			Recipient:     n.Recipient,
			Status:        string(n.Status),
			Attempts:      n.Attempts,
			NextAttemptAt: n.NextAttemptAt,
			LastError:     n.LastError,
			SentAt:        n.SentAt,
		})
	}
	return out
}
