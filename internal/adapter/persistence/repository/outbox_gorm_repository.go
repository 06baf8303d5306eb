package repository

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"time"

	"gorm.io/gorm"
)

type NotificationOutboxGormRepository struct {
	db *gorm.DB
}

var _ interfaces.INotificationOutboxRepository = (*NotificationOutboxGormRepository)(nil)

func NewNotificationOutboxGormRepository(db *gorm.DB) *NotificationOutboxGormRepository {
	return &NotificationOutboxGormRepository{db: db}
}

const outboxDueCondition = "((status = ? AND next_attempt_at <= ?) OR (status = ? AND lease_until < ?))"

func outboxDueArgs(now time.Time) []any {
	now = now.UTC()
	return []any{string(entities.OutboxStatusPending), now, string(entities.OutboxStatusSending), now}
}

func (r *NotificationOutboxGormRepository) Create(ctx context.Context, item entities.NotificationOutboxItem) (entities.NotificationOutboxItem, error) {
	m, err := toOutboxModel(item)
	if err != nil {
		return entities.NotificationOutboxItem{}, err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return entities.NotificationOutboxItem{}, err
	}
	return item, nil
}

func (r *NotificationOutboxGormRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]entities.NotificationOutboxItem, error) {
	var rows []outboxModel
	q := r.db.WithContext(ctx).Where(outboxDueCondition, outboxDueArgs(now)...).Order("next_attempt_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.NotificationOutboxItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromOutboxModel(row))
	}
	return out, nil
}

func (r *NotificationOutboxGormRepository) Claim(ctx context.Context, id string, now time.Time, lease time.Duration) (bool, error) {
	until := now.UTC().Add(lease)
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Where(outboxDueCondition, outboxDueArgs(now)...).
		Updates(map[string]any{
			"status":      string(entities.OutboxStatusSending),
			"lease_until": until,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *NotificationOutboxGormRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	sent := sentAt.UTC()
	return r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      string(entities.OutboxStatusSent),
			"sent_at":     &sent,
			"lease_until": nil,
			"last_error":  "",
		}).Error
}

func (r *NotificationOutboxGormRepository) MarkFailed(ctx context.Context, id string, attempts int, lastErr string, next time.Time, dead bool) error {
	status := entities.OutboxStatusPending
	if dead {
		status = entities.OutboxStatusDead
	}
	return r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          string(status),
			"attempts":        attempts,
			"last_error":      lastErr,
			"next_attempt_at": next.UTC(),
			"lease_until":     nil,
		}).Error
}

func (r *NotificationOutboxGormRepository) ListByBookingID(ctx context.Context, bookingID string) ([]entities.NotificationOutboxItem, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.NotificationOutboxItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromOutboxModel(row))
	}
	return out, nil
}
