package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cleaning_payments/internal/domain/entities"
	mock_interfaces "cleaning_payments/internal/usecase/interfaces/mocks"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func TestBookingUseCase_CreateBooking(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	newUseCase := func() (*BookingUseCase, *memoryLedger) {
		store := newMemoryLedger()
		uc := NewBookingUseCase(store, fixedPricing{rate: decimal.RequireFromString("25")}, nil)
		uc.now = func() time.Time { return now }
		return uc, store
	}

	t.Run("validations", func(t *testing.T) {
		uc, _ := newUseCase()
		valid := CreateBookingCommand{
			CustomerID:     "cust-1",
			ServiceType:    "regular",
			Address:        "1 High St",
			ScheduledStart: now.Add(48 * time.Hour),
			DurationMins:   120,
		}
		cases := map[string]func(c *CreateBookingCommand){
			"customer": func(c *CreateBookingCommand) { c.CustomerID = " " },
			"service":  func(c *CreateBookingCommand) { c.ServiceType = "" },
			"address":  func(c *CreateBookingCommand) { c.Address = " " },
			"start":    func(c *CreateBookingCommand) { c.ScheduledStart = time.Time{} },
			"duration": func(c *CreateBookingCommand) { c.DurationMins = 0 },
			"in past":  func(c *CreateBookingCommand) { c.ScheduledStart = now.Add(-time.Minute) },
		}
		for name, mutate := range cases {
			cmd := valid
			mutate(&cmd)
			if _, err := uc.CreateBooking(context.Background(), cmd); !errors.Is(err, ErrValidation) {
				t.Fatalf("%s: expected ErrValidation, got %v", name, err)
			}
		}
	})

	t.Run("creates unbilled booking with first ledger entry", func(t *testing.T) {
		uc, store := newUseCase()
		b, err := uc.CreateBooking(context.Background(), CreateBookingCommand{
			CustomerID:       "cust-1",
			CustomerEmail:    " ana@example.com ",
			ServiceType:      "regular",
			Address:          "1 High St",
			ScheduledStart:   now.Add(48 * time.Hour),
			DurationMins:     150,
			PaymentMethodRef: "pm_card_visa",
		})
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if b.ID == "" || b.PaymentState != entities.PaymentStateUnbilled || b.AmountMinor != 6250 || b.LedgerSeq != 1 {
			t.Fatalf("unexpected booking %+v", b)
		}
		if b.CustomerEmail != "ana@example.com" || b.Currency != "gbp" {
			t.Fatalf("unexpected booking contact %+v", b)
		}
		history, _ := store.GetHistory(context.Background(), b.ID)
		if len(history) != 1 || history[0].NewState != entities.PaymentStateUnbilled || history[0].Actor != entities.ActorCustomer {
			t.Fatalf("unexpected history %+v", history)
		}
	})
}

func TestBookingUseCase_Reads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIBookingLedgerRepository(ctrl)
	uc := NewBookingUseCase(repo, nil, nil)

	t.Run("not found", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Booking{}, nil)
		if _, err := uc.GetBooking(context.Background(), "missing"); !errors.Is(err, ErrBookingNotFound) {
			t.Fatalf("expected ErrBookingNotFound, got %v", err)
		}
	})

	t.Run("details include history", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "bk-1").Return(entities.Booking{ID: "bk-1"}, nil)
		repo.EXPECT().GetHistory(gomock.Any(), "bk-1").Return([]entities.LedgerEntry{{Seq: 1}, {Seq: 2}}, nil)

		d, err := uc.GetBookingDetails(context.Background(), "bk-1")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(d.History) != 2 || d.Booking.ID != "bk-1" {
			t.Fatalf("unexpected details %+v", d)
		}
	})

	t.Run("by gateway ref", func(t *testing.T) {
		repo.EXPECT().GetByGatewayRef(gomock.Any(), "pi_1").Return(entities.Booking{ID: "bk-1", GatewayRef: "pi_1"}, nil)
		b, err := uc.FindByGatewayRef(context.Background(), "pi_1")
		if err != nil || b.ID != "bk-1" {
			t.Fatalf("expected bk-1, got %+v err=%v", b, err)
		}
		if _, err := uc.FindByGatewayRef(context.Background(), ""); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}
