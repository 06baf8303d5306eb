package usecase

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IBookingUseCase creates bookings and serves their read views.
//
// A booking is born Unbilled with its first ledger entry; the amount is
// resolved from the pricing tables at creation time and re-checked at capture.

type IBookingUseCase interface {
	CreateBooking(ctx context.Context, cmd CreateBookingCommand) (entities.Booking, error)
	GetBooking(ctx context.Context, id string) (entities.Booking, error)
	GetBookingDetails(ctx context.Context, id string) (BookingDetails, error)
	FindByGatewayRef(ctx context.Context, gatewayRef string) (entities.Booking, error)
}

type CreateBookingCommand struct {
	CustomerID       string
	CustomerEmail    string
	CustomerPhone    string
	ServiceType      string
	CleaningType     string
	Address          string
	ScheduledStart   time.Time
	DurationMins     int
	PaymentMethodRef string
	By               Initiator
}

// BookingDetails is the admin view: the row, its full ledger and its
// notifications.
type BookingDetails struct {
	Booking       entities.Booking
	History       []entities.LedgerEntry
	Notifications []entities.NotificationOutboxItem
}

type BookingUseCase struct {
	store         interfaces.IBookingLedgerRepository
	pricing       IPricingResolver
	notifications INotificationDispatcher
	now           func() time.Time
}

var _ IBookingUseCase = (*BookingUseCase)(nil)

func NewBookingUseCase(store interfaces.IBookingLedgerRepository, pricing IPricingResolver, notifications INotificationDispatcher) *BookingUseCase {
	return &BookingUseCase{
		store:         store,
		pricing:       pricing,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (u *BookingUseCase) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (entities.Booking, error) {
	cmd.CustomerID = strings.TrimSpace(cmd.CustomerID)
	cmd.Address = strings.TrimSpace(cmd.Address)
	log.Printf("[booking][usecase] create start customer_id=%s service_type=%q cleaning_type=%q duration=%d", cmd.CustomerID, cmd.ServiceType, cmd.CleaningType, cmd.DurationMins)

	switch {
	case cmd.CustomerID == "":
		return entities.Booking{}, fmt.Errorf("%w: customer_id is required", ErrValidation)
	case strings.TrimSpace(cmd.ServiceType) == "":
		return entities.Booking{}, fmt.Errorf("%w: service_type is required", ErrValidation)
	case cmd.Address == "":
		return entities.Booking{}, fmt.Errorf("%w: address is required", ErrValidation)
	case cmd.ScheduledStart.IsZero():
		return entities.Booking{}, fmt.Errorf("%w: scheduled_start is required", ErrValidation)
	case cmd.DurationMins <= 0:
		return entities.Booking{}, fmt.Errorf("%w: duration_minutes must be positive", ErrValidation)
	}
	now := u.now()
	if !cmd.ScheduledStart.After(now) {
		return entities.Booking{}, fmt.Errorf("%w: scheduled_start must be in the future", ErrValidation)
	}

	quote, amount, err := u.pricing.Quote(ctx, cmd.CustomerID, cmd.ServiceType, cmd.CleaningType, cmd.DurationMins)
	if err != nil {
		log.Printf("[booking][usecase] pricing failed customer_id=%s err=%v", cmd.CustomerID, err)
		return entities.Booking{}, err
	}
	if amount <= 0 {
		return entities.Booking{}, fmt.Errorf("%w: resolved amount is zero", ErrValidation)
	}

	by := cmd.By
	if by.Actor == "" {
		by = Initiator{Actor: entities.ActorCustomer, ID: cmd.CustomerID}
	}
	b := entities.Booking{
		ID:               uuid.NewString(),
		CustomerID:       cmd.CustomerID,
		CustomerEmail:    strings.TrimSpace(cmd.CustomerEmail),
		CustomerPhone:    strings.TrimSpace(cmd.CustomerPhone),
		ServiceType:      quote.ServiceType,
		CleaningType:     quote.CleaningType,
		Address:          cmd.Address,
		ScheduledStart:   cmd.ScheduledStart.UTC(),
		DurationMins:     cmd.DurationMins,
		Currency:         quote.Currency,
		AmountMinor:      amount,
		PaymentMethodRef: strings.TrimSpace(cmd.PaymentMethodRef),
		PaymentState:     entities.PaymentStateUnbilled,
		LedgerSeq:        1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	first := entities.LedgerEntry{
		ID:          uuid.NewString(),
		BookingID:   b.ID,
		Seq:         1,
		NewState:    entities.PaymentStateUnbilled,
		At:          now,
		Actor:       by.Actor,
		ActorID:     by.ID,
		AmountMinor: amount,
		Reason:      fmt.Sprintf("booking created, rate %s/h via %s", quote.HourlyRate.StringFixed(2), quote.Source),
	}

	created, err := u.store.CreateBooking(ctx, b, first)
	if err != nil {
		log.Printf("[booking][usecase] create failed customer_id=%s err=%v", cmd.CustomerID, err)
		return entities.Booking{}, err
	}
	log.Printf("[booking][usecase] created booking_id=%s amount=%d currency=%s source=%s", created.ID, created.AmountMinor, created.Currency, quote.Source)
	return created, nil
}

func (u *BookingUseCase) GetBooking(ctx context.Context, id string) (entities.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Booking{}, fmt.Errorf("%w: booking id is required", ErrValidation)
	}
	b, err := u.store.GetByID(ctx, id)
	if err != nil {
		return entities.Booking{}, err
	}
	if b.ID == "" {
		return entities.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (u *BookingUseCase) GetBookingDetails(ctx context.Context, id string) (BookingDetails, error) {
	b, err := u.GetBooking(ctx, id)
	if err != nil {
		return BookingDetails{}, err
	}
	history, err := u.store.GetHistory(ctx, b.ID)
	if err != nil {
		return BookingDetails{}, err
	}
	details := BookingDetails{Booking: b, History: history}
	if u.notifications != nil {
		items, err := u.notifications.ListForBooking(ctx, b.ID)
		if err != nil {
			log.Printf("[booking][usecase] list notifications failed booking_id=%s err=%v", b.ID, err)
		} else {
			details.Notifications = items
		}
	}
	return details, nil
}

func (u *BookingUseCase) FindByGatewayRef(ctx context.Context, gatewayRef string) (entities.Booking, error) {
	gatewayRef = strings.TrimSpace(gatewayRef)
	if gatewayRef == "" {
		return entities.Booking{}, fmt.Errorf("%w: gateway reference is required", ErrValidation)
	}
	b, err := u.store.GetByGatewayRef(ctx, gatewayRef)
	if err != nil {
		return entities.Booking{}, err
	}
	if b.ID == "" {
		return entities.Booking{}, ErrBookingNotFound
	}
	return b, nil
}
