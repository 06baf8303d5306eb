package notifications

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"log"
)

// LogSender writes messages to the process log. Used for NOTIFICATION_MODE=log
// and for channels without a configured provider.
type LogSender struct{}

var _ interfaces.INotificationSender = LogSender{}

func (LogSender) Send(_ context.Context, msg entities.OutboundMessage) error {
	log.Printf("[notification][log] channel=%s to=%s event=%s booking_id=%s subject=%q body=%q",
		msg.Channel, msg.Recipient, msg.Event, msg.BookingID, msg.Subject, msg.Body)
	return nil
}
