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

func TestPricingResolver_ResolveRate(t *testing.T) {
	ctx := context.Background()
	rate := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }

	t.Run("exact override wins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPricingRepository(ctrl)
		r := NewPricingResolver(repo, "gbp")

		repo.EXPECT().FindOverride(gomock.Any(), "cust-1", "regular", "deep").
			Return(entities.PricingOverride{ID: "ov-1", HourlyRate: rate("22.50"), Currency: "GBP"}, nil)

		q, err := r.ResolveRate(ctx, "cust-1", " Regular ", "DEEP")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if q.Source != entities.QuoteSourceCustomerExact || q.OverrideID != "ov-1" || !q.HourlyRate.Equal(rate("22.50")) || q.Currency != "gbp" {
			t.Fatalf("unexpected quote %+v", q)
		}
	})

	t.Run("wildcard override when no exact match", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPricingRepository(ctrl)
		r := NewPricingResolver(repo, "gbp")

		gomock.InOrder(
			repo.EXPECT().FindOverride(gomock.Any(), "cust-1", "regular", "deep").Return(entities.PricingOverride{}, nil),
			repo.EXPECT().FindOverride(gomock.Any(), "cust-1", "regular", "").
				Return(entities.PricingOverride{ID: "ov-2", HourlyRate: rate("20")}, nil),
		)

		q, err := r.ResolveRate(ctx, "cust-1", "regular", "deep")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if q.Source != entities.QuoteSourceCustomerWildcard || q.OverrideID != "ov-2" || q.CleaningType != "deep" {
			t.Fatalf("unexpected quote %+v", q)
		}
	})

	t.Run("base rate falls back to service-wide row", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPricingRepository(ctrl)
		r := NewPricingResolver(repo, "gbp")

		repo.EXPECT().FindOverride(gomock.Any(), "cust-1", "regular", "deep").Return(entities.PricingOverride{}, nil)
		repo.EXPECT().FindOverride(gomock.Any(), "cust-1", "regular", "").Return(entities.PricingOverride{}, nil)
		repo.EXPECT().GetBaseRate(gomock.Any(), "regular", "deep").Return(entities.BaseRate{}, nil)
		repo.EXPECT().GetBaseRate(gomock.Any(), "regular", "").
			Return(entities.BaseRate{ServiceType: "regular", HourlyRate: rate("18.00")}, nil)

		q, err := r.ResolveRate(ctx, "cust-1", "regular", "deep")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if q.Source != entities.QuoteSourceBaseRate || !q.HourlyRate.Equal(rate("18")) || q.Currency != "gbp" {
			t.Fatalf("unexpected quote %+v", q)
		}
	})

	t.Run("wildcard cleaning type skips exact lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPricingRepository(ctrl)
		r := NewPricingResolver(repo, "gbp")

		repo.EXPECT().FindOverride(gomock.Any(), "cust-1", "regular", "").Return(entities.PricingOverride{}, nil)
		repo.EXPECT().GetBaseRate(gomock.Any(), "regular", "").
			Return(entities.BaseRate{ServiceType: "regular", HourlyRate: rate("18.00"), Currency: "eur"}, nil)

		q, err := r.ResolveRate(ctx, "cust-1", "regular", "*")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if q.Currency != "eur" {
			t.Fatalf("expected base rate currency, got %q", q.Currency)
		}
	})

	t.Run("no rate configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPricingRepository(ctrl)
		r := NewPricingResolver(repo, "gbp")

		repo.EXPECT().GetBaseRate(gomock.Any(), "windows", "").Return(entities.BaseRate{}, nil)

		_, err := r.ResolveRate(ctx, "", "windows", "")
		if !errors.Is(err, ErrRateNotFound) {
			t.Fatalf("expected ErrRateNotFound, got %v", err)
		}
	})

	t.Run("repository error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPricingRepository(ctrl)
		r := NewPricingResolver(repo, "gbp")

		repo.EXPECT().FindOverride(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(entities.PricingOverride{}, errors.New("db"))

		if _, err := r.ResolveRate(ctx, "cust-1", "regular", ""); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("service type required", func(t *testing.T) {
		r := NewPricingResolver(nil, "gbp")
		if _, err := r.ResolveRate(ctx, "cust-1", " ", ""); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestPricingResolver_Quote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPricingRepository(ctrl)
	r := NewPricingResolver(repo, "gbp")

	repo.EXPECT().GetBaseRate(gomock.Any(), "regular", "").
		Return(entities.BaseRate{ServiceType: "regular", HourlyRate: decimal.RequireFromString("17.99")}, nil)

	_, amount, err := r.Quote(context.Background(), "", "regular", "", 90)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if amount != 2699 {
		t.Fatalf("expected 2699, got %d", amount)
	}

	if _, _, err := r.Quote(context.Background(), "", "regular", "", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPricingResolver_UpsertOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPricingRepository(ctrl)
	r := NewPricingResolver(repo, "gbp")
	fixed := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	repo.EXPECT().UpsertOverride(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o entities.PricingOverride) (entities.PricingOverride, error) {
			return o, nil
		})

	saved, err := r.UpsertOverride(context.Background(), entities.PricingOverride{
		CustomerID:   "cust-1",
		ServiceType:  "Regular",
		CleaningType: "*",
		HourlyRate:   decimal.RequireFromString("21"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if saved.ID == "" || saved.ServiceType != "regular" || saved.CleaningType != "" || saved.Currency != "gbp" || !saved.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected override %+v", saved)
	}

	_, err = r.UpsertOverride(context.Background(), entities.PricingOverride{CustomerID: "cust-1", ServiceType: "regular"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero rate, got %v", err)
	}
}

func TestPricingResolver_DeleteOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPricingRepository(ctrl)
	r := NewPricingResolver(repo, "gbp")

	repo.EXPECT().DeleteOverride(gomock.Any(), "nope").Return(ErrOverrideNotFound)
	if err := r.DeleteOverride(context.Background(), "nope"); !errors.Is(err, ErrOverrideNotFound) {
		t.Fatalf("expected ErrOverrideNotFound, got %v", err)
	}
	if err := r.DeleteOverride(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
