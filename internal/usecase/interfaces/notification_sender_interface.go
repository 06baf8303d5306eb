package interfaces

import (
	"cleaning_payments/internal/domain/entities"
	"context"
)

// INotificationSender delivers one rendered message through a provider
// (Resend, Twilio, AMQP, log).
type INotificationSender interface {
	Send(ctx context.Context, msg entities.OutboundMessage) error
}
