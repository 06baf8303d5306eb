package repository

import (
	"cleaning_payments/internal/domain/entities"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SQL storage model. Timestamps are written by the use cases, so gorm's
// automatic timestamp tracking is switched off.

type bookingModel struct {
	ID                    string     `gorm:"column:id;primaryKey;size:64"`
	CustomerID            string     `gorm:"column:customer_id;index;size:64"`
	CustomerEmail         string     `gorm:"column:customer_email"`
	CustomerPhone         string     `gorm:"column:customer_phone"`
	ServiceType           string     `gorm:"column:service_type;size:64"`
	CleaningType          string     `gorm:"column:cleaning_type;size:64"`
	Address               string     `gorm:"column:address"`
	ScheduledStart        time.Time  `gorm:"column:scheduled_start;index:idx_bookings_due,priority:2"`
	DurationMins          int        `gorm:"column:duration_minutes"`
	Currency              string     `gorm:"column:currency;size:8"`
	AmountMinor           int64      `gorm:"column:amount_minor"`
	AuthorizedAmountMinor int64      `gorm:"column:authorized_amount_minor"`
	ApprovedCaptureMinor  int64      `gorm:"column:approved_capture_minor"`
	PaymentMethodRef      string     `gorm:"column:payment_method_ref"`
	PaymentState          string     `gorm:"column:payment_state;size:16;index:idx_bookings_due,priority:1"`
	GatewayRef            string     `gorm:"column:gateway_ref;index"`
	IdempotencyKey        string     `gorm:"column:idempotency_key"`
	AuthAttempts          int        `gorm:"column:auth_attempts"`
	CaptureAttempts       int        `gorm:"column:capture_attempts"`
	NextAttemptAt         *time.Time `gorm:"column:next_attempt_at"`
	FailureReason         string     `gorm:"column:failure_reason"`
	FailureRetryable      bool       `gorm:"column:failure_retryable"`
	NeedsReview           bool       `gorm:"column:needs_review"`
	ReviewReason          string     `gorm:"column:review_reason"`
	Cancelled             bool       `gorm:"column:cancelled"`
	LedgerSeq             int        `gorm:"column:ledger_seq"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (bookingModel) TableName() string { return "bookings" }

type ledgerEntryModel struct {
	ID            string    `gorm:"column:id;primaryKey;size:64"`
	BookingID     string    `gorm:"column:booking_id;size:64;uniqueIndex:idx_ledger_booking_seq,priority:1"`
	Seq           int       `gorm:"column:seq;uniqueIndex:idx_ledger_booking_seq,priority:2"`
	PreviousState string    `gorm:"column:previous_state;size:16"`
	NewState      string    `gorm:"column:new_state;size:16"`
	At            time.Time `gorm:"column:at"`
	Actor         string    `gorm:"column:actor;size:16"`
	ActorID       string    `gorm:"column:actor_id"`
	ExternalRef   string    `gorm:"column:external_ref"`
	AmountMinor   int64     `gorm:"column:amount_minor"`
	Reason        string    `gorm:"column:reason"`
}

func (ledgerEntryModel) TableName() string { return "payment_ledger" }

type bookingLockModel struct {
	BookingID string    `gorm:"column:booking_id;primaryKey;size:64"`
	Owner     string    `gorm:"column:owner;size:64"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (bookingLockModel) TableName() string { return "booking_locks" }

type pricingOverrideModel struct {
	ID           string          `gorm:"column:id;primaryKey;size:64"`
	CustomerID   string          `gorm:"column:customer_id;size:64;index:idx_override_key,priority:1"`
	ServiceType  string          `gorm:"column:service_type;size:64;index:idx_override_key,priority:2"`
	CleaningType string          `gorm:"column:cleaning_type;size:64;index:idx_override_key,priority:3"`
	HourlyRate   decimal.Decimal `gorm:"column:hourly_rate;type:numeric(12,4)"`
	Currency     string          `gorm:"column:currency;size:8"`
	Note         string          `gorm:"column:note"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (pricingOverrideModel) TableName() string { return "pricing_overrides" }

type baseRateModel struct {
	ServiceType  string          `gorm:"column:service_type;primaryKey;size:64"`
	CleaningType string          `gorm:"column:cleaning_type;primaryKey;size:64"`
	HourlyRate   decimal.Decimal `gorm:"column:hourly_rate;type:numeric(12,4)"`
	Currency     string          `gorm:"column:currency;size:8"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (baseRateModel) TableName() string { return "base_rates" }

type outboxModel struct {
	ID            string     `gorm:"column:id;primaryKey;size:64"`
	BookingID     string     `gorm:"column:booking_id;size:64;index"`
	Event         string     `gorm:"column:event;size:32"`
	Channel       string     `gorm:"column:channel;size:16"`
	Recipient     string     `gorm:"column:recipient"`
	Payload       string     `gorm:"column:payload;type:text"`
	Status        string     `gorm:"column:status;size:16;index:idx_outbox_due,priority:1"`
	Attempts      int        `gorm:"column:attempts"`
	NextAttemptAt time.Time  `gorm:"column:next_attempt_at;index:idx_outbox_due,priority:2"`
	LeaseUntil    *time.Time `gorm:"column:lease_until"`
	LastError     string     `gorm:"column:last_error"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	SentAt        *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "notification_outbox" }

// AutoMigrate creates or updates every SQL table the service uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&bookingModel{},
		&ledgerEntryModel{},
		&bookingLockModel{},
		&pricingOverrideModel{},
		&baseRateModel{},
		&outboxModel{},
	)
}

func toBookingModel(b entities.Booking) bookingModel {
	return bookingModel{
		ID:                    b.ID,
		CustomerID:            b.CustomerID,
		CustomerEmail:         b.CustomerEmail,
		CustomerPhone:         b.CustomerPhone,
		ServiceType:           b.ServiceType,
		CleaningType:          b.CleaningType,
		Address:               b.Address,
		ScheduledStart:        b.ScheduledStart.UTC(),
		DurationMins:          b.DurationMins,
		Currency:              b.Currency,
		AmountMinor:           b.AmountMinor,
		AuthorizedAmountMinor: b.AuthorizedAmountMinor,
		ApprovedCaptureMinor:  b.ApprovedCaptureMinor,
		PaymentMethodRef:      b.PaymentMethodRef,
		PaymentState:          string(b.PaymentState),
		GatewayRef:            b.GatewayRef,
		IdempotencyKey:        b.IdempotencyKey,
		AuthAttempts:          b.AuthAttempts,
		CaptureAttempts:       b.CaptureAttempts,
		NextAttemptAt:         utcPtr(b.NextAttemptAt),
		FailureReason:         b.FailureReason,
		FailureRetryable:      b.FailureRetryable,
		NeedsReview:           b.NeedsReview,
		ReviewReason:          b.ReviewReason,
		Cancelled:             b.Cancelled,
		LedgerSeq:             b.LedgerSeq,
		CreatedAt:             b.CreatedAt.UTC(),
		UpdatedAt:             b.UpdatedAt.UTC(),
	}
}

func fromBookingModel(m bookingModel) entities.Booking {
	return entities.Booking{
		ID:                    m.ID,
		CustomerID:            m.CustomerID,
		CustomerEmail:         m.CustomerEmail,
		CustomerPhone:         m.CustomerPhone,
		ServiceType:           m.ServiceType,
		CleaningType:          m.CleaningType,
		Address:               m.Address,
		ScheduledStart:        m.ScheduledStart.UTC(),
		DurationMins:          m.DurationMins,
		Currency:              m.Currency,
		AmountMinor:           m.AmountMinor,
		AuthorizedAmountMinor: m.AuthorizedAmountMinor,
		ApprovedCaptureMinor:  m.ApprovedCaptureMinor,
		PaymentMethodRef:      m.PaymentMethodRef,
		PaymentState:          entities.PaymentState(m.PaymentState),
		GatewayRef:            m.GatewayRef,
		IdempotencyKey:        m.IdempotencyKey,
		AuthAttempts:          m.AuthAttempts,
		CaptureAttempts:       m.CaptureAttempts,
		NextAttemptAt:         utcPtr(m.NextAttemptAt),
		FailureReason:         m.FailureReason,
		FailureRetryable:      m.FailureRetryable,
		NeedsReview:           m.NeedsReview,
		ReviewReason:          m.ReviewReason,
		Cancelled:             m.Cancelled,
		LedgerSeq:             m.LedgerSeq,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}

// bookingDetailColumns are the columns SaveDetails may touch.
func bookingDetailColumns(m bookingModel) map[string]any {
	return map[string]any{
		"customer_email":          m.CustomerEmail,
		"customer_phone":          m.CustomerPhone,
		"address":                 m.Address,
		"amount_minor":            m.AmountMinor,
		"authorized_amount_minor": m.AuthorizedAmountMinor,
		"approved_capture_minor":  m.ApprovedCaptureMinor,
		"payment_method_ref":      m.PaymentMethodRef,
		"gateway_ref":             m.GatewayRef,
		"idempotency_key":         m.IdempotencyKey,
		"auth_attempts":           m.AuthAttempts,
		"capture_attempts":        m.CaptureAttempts,
		"next_attempt_at":         m.NextAttemptAt,
		"failure_reason":          m.FailureReason,
		"failure_retryable":       m.FailureRetryable,
		"needs_review":            m.NeedsReview,
		"review_reason":           m.ReviewReason,
		"cancelled":               m.Cancelled,
		"updated_at":              m.UpdatedAt,
	}
}

func toLedgerEntryModel(e entities.LedgerEntry) ledgerEntryModel {
	return ledgerEntryModel{
		ID:            e.ID,
		BookingID:     e.BookingID,
		Seq:           e.Seq,
		PreviousState: string(e.PreviousState),
		NewState:      string(e.NewState),
		At:            e.At.UTC(),
		Actor:         string(e.Actor),
		ActorID:       e.ActorID,
		ExternalRef:   e.ExternalRef,
		AmountMinor:   e.AmountMinor,
		Reason:        e.Reason,
	}
}

func fromLedgerEntryModel(m ledgerEntryModel) entities.LedgerEntry {
	return entities.LedgerEntry{
		ID:            m.ID,
		BookingID:     m.BookingID,
		Seq:           m.Seq,
		PreviousState: entities.PaymentState(m.PreviousState),
		NewState:      entities.PaymentState(m.NewState),
		At:            m.At.UTC(),
		Actor:         entities.Actor(m.Actor),
		ActorID:       m.ActorID,
		ExternalRef:   m.ExternalRef,
		AmountMinor:   m.AmountMinor,
		Reason:        m.Reason,
	}
}

func toOverrideModel(o entities.PricingOverride) pricingOverrideModel {
	return pricingOverrideModel{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		ServiceType:  o.ServiceType,
		CleaningType: storedCleaningType(o.CleaningType),
		HourlyRate:   o.HourlyRate,
		Currency:     o.Currency,
		Note:         o.Note,
		CreatedAt:    o.CreatedAt.UTC(),
		UpdatedAt:    o.UpdatedAt.UTC(),
	}
}

func fromOverrideModel(m pricingOverrideModel) entities.PricingOverride {
	return entities.PricingOverride{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		ServiceType:  m.ServiceType,
		CleaningType: domainCleaningType(m.CleaningType),
		HourlyRate:   m.HourlyRate,
		Currency:     m.Currency,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func toOutboxModel(it entities.NotificationOutboxItem) (outboxModel, error) {
	payload, err := json.Marshal(it.Payload)
	if err != nil {
		return outboxModel{}, err
	}
	return outboxModel{
		ID:            it.ID,
		BookingID:     it.BookingID,
		Event:         string(it.Event),
		Channel:       string(it.Channel),
		Recipient:     it.Recipient,
		Payload:       string(payload),
		Status:        string(it.Status),
		Attempts:      it.Attempts,
		NextAttemptAt: it.NextAttemptAt.UTC(),
		LeaseUntil:    utcPtr(it.LeaseUntil),
		LastError:     it.LastError,
		CreatedAt:     it.CreatedAt.UTC(),
		SentAt:        utcPtr(it.SentAt),
	}, nil
}

func fromOutboxModel(m outboxModel) entities.NotificationOutboxItem {
	var payload map[string]string
	_ = json.Unmarshal([]byte(m.Payload), &payload)
	return entities.NotificationOutboxItem{
		ID:            m.ID,
		BookingID:     m.BookingID,
		Event:         entities.NotificationEvent(m.Event),
		Channel:       entities.NotificationChannel(m.Channel),
		Recipient:     m.Recipient,
		Payload:       payload,
		Status:        entities.OutboxStatus(m.Status),
		Attempts:      m.Attempts,
		NextAttemptAt: m.NextAttemptAt.UTC(),
		LeaseUntil:    utcPtr(m.LeaseUntil),
		LastError:     m.LastError,
		CreatedAt:     m.CreatedAt.UTC(),
		SentAt:        utcPtr(m.SentAt),
	}
}
