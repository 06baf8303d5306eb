package interfaces

import (
	"cleaning_payments/internal/domain/entities"
	"context"
	"time"
)

// INotificationOutboxRepository abstracts the durable notification outbox.
//
// Claim moves a due item to "sending" with a lease; it returns false when
// another drain already holds it. Items whose lease expired are due again.

type INotificationOutboxRepository interface {
	Create(ctx context.Context, item entities.NotificationOutboxItem) (entities.NotificationOutboxItem, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]entities.NotificationOutboxItem, error)
	Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int, lastErr string, next time.Time, dead bool) error
	ListByBookingID(ctx context.Context, bookingID string) ([]entities.NotificationOutboxItem, error)
}
