package repository

import (
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingLockGormRepository implements per-booking leases on a primary-key
// insert. Expired rows are swept before each attempt.
type BookingLockGormRepository struct {
	db *gorm.DB
}

var _ interfaces.IBookingLocker = (*BookingLockGormRepository)(nil)

func NewBookingLockGormRepository(db *gorm.DB) *BookingLockGormRepository {
	return &BookingLockGormRepository{db: db}
}

func (r *BookingLockGormRepository) Acquire(ctx context.Context, bookingID, owner string, now time.Time, ttl time.Duration) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("booking_id = ? AND expires_at < ?", bookingID, now.UTC()).Delete(&bookingLockModel{}).Error; err != nil {
		return false, err
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&bookingLockModel{
		BookingID: bookingID,
		Owner:     owner,
		ExpiresAt: now.UTC().Add(ttl),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingLockGormRepository) Release(ctx context.Context, bookingID, owner string) error {
	return r.db.WithContext(ctx).
		Where("booking_id = ? AND owner = ?", bookingID, owner).
		Delete(&bookingLockModel{}).Error
}
