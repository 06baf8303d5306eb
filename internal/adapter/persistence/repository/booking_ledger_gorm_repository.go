package repository

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// BookingLedgerGormRepository keeps bookings and their ledger in Postgres or
// SQLite. Transitions run in one SQL transaction guarded by a compare-and-set
// on (payment_state, ledger_seq).
type BookingLedgerGormRepository struct {
	db *gorm.DB
}

var _ interfaces.IBookingLedgerRepository = (*BookingLedgerGormRepository)(nil)

func NewBookingLedgerGormRepository(db *gorm.DB) *BookingLedgerGormRepository {
	return &BookingLedgerGormRepository{db: db}
}

func (r *BookingLedgerGormRepository) CreateBooking(ctx context.Context, b entities.Booking, first entities.LedgerEntry) (entities.Booking, error) {
	b.LedgerSeq = first.Seq
	bm := toBookingModel(b)
	em := toLedgerEntryModel(first)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bm).Error; err != nil {
			return err
		}
		return tx.Create(&em).Error
	})
	if err != nil {
		return entities.Booking{}, err
	}
	return fromBookingModel(bm), nil
}

func (r *BookingLedgerGormRepository) GetByID(ctx context.Context, id string) (entities.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Booking{}, nil
	}
	if err != nil {
		return entities.Booking{}, err
	}
	return checkedBooking(fromBookingModel(m))
}

func (r *BookingLedgerGormRepository) GetByGatewayRef(ctx context.Context, gatewayRef string) (entities.Booking, error) {
	var m bookingModel
	err := r.db.WithContext(ctx).
		Where("gateway_ref = ?", gatewayRef).
		Order("updated_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Booking{}, nil
	}
	if err != nil {
		return entities.Booking{}, err
	}
	return checkedBooking(fromBookingModel(m))
}

func (r *BookingLedgerGormRepository) AppendTransition(ctx context.Context, b entities.Booking, entry entities.LedgerEntry) (entities.Booking, error) {
	b.LedgerSeq = entry.Seq
	m := toBookingModel(b)
	cols := bookingDetailColumns(m)
	cols["payment_state"] = m.PaymentState
	cols["ledger_seq"] = m.LedgerSeq
	em := toLedgerEntryModel(entry)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&bookingModel{}).
			Where("id = ? AND payment_state = ? AND ledger_seq = ?", b.ID, string(entry.PreviousState), entry.Seq-1).
			Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return interfaces.ErrStateConflict
		}
		return tx.Create(&em).Error
	})
	if err != nil {
		return entities.Booking{}, err
	}
	return b, nil
}

func (r *BookingLedgerGormRepository) SaveDetails(ctx context.Context, b entities.Booking) (entities.Booking, error) {
	m := toBookingModel(b)
	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND payment_state = ? AND ledger_seq = ?", b.ID, m.PaymentState, b.LedgerSeq).
		Updates(bookingDetailColumns(m))
	if res.Error != nil {
		return entities.Booking{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Booking{}, interfaces.ErrStateConflict
	}
	return b, nil
}

func (r *BookingLedgerGormRepository) GetHistory(ctx context.Context, bookingID string) ([]entities.LedgerEntry, error) {
	var rows []ledgerEntryModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entities.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromLedgerEntryModel(row))
	}
	return out, nil
}

func (r *BookingLedgerGormRepository) HasPendingAuthorization(ctx context.Context, bookingID string, now time.Time, staleness time.Duration) (bool, error) {
	var last ledgerEntryModel
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("seq DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isPendingAuthorization(fromLedgerEntryModel(last), now, staleness), nil
}

func (r *BookingLedgerGormRepository) ListDue(ctx context.Context, horizon time.Time) ([]entities.Booking, error) {
	var rows []bookingModel
	err := r.db.WithContext(ctx).
		Where("payment_state IN ? AND cancelled = ? AND (scheduled_start <= ? OR payment_state IN ?)",
			activeStateStrings(), false, horizon.UTC(), inFlightStateStrings()).
		Order("scheduled_start ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromBookingModel(row))
	}
	return out, nil
}

// isPendingAuthorization reports whether the latest transition opened an
// authorization that may still be in flight.
func isPendingAuthorization(last entities.LedgerEntry, now time.Time, staleness time.Duration) bool {
	return last.NewState == entities.PaymentStateAuthorizing && now.Sub(last.At) < staleness
}
