package handlers

import (
	"net/http"
	"testing"

	"cleaning_payments/internal/adapter/http/handlers/mocks"
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func TestPricingHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	pricing := mocks.NewMockIPricingResolver(ctrl)
	h := NewPricingHandler(pricing)

	r := gin.New()
	r.GET("/overrides", h.ListOverrides)
	r.PUT("/overrides", h.UpsertOverride)
	r.DELETE("/overrides/:override_id", h.DeleteOverride)
	r.PUT("/base-rates", h.UpsertBaseRate)
	r.GET("/quote", h.Quote)

	t.Run("list", func(t *testing.T) {
		pricing.EXPECT().ListOverrides(gomock.Any(), "cust-1").Return([]entities.PricingOverride{{ID: "ov-1"}}, nil)
		if w := send(r, http.MethodGet, "/overrides?customer_id=cust-1", ""); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("upsert rejects non-positive rate", func(t *testing.T) {
		if w := send(r, http.MethodPut, "/overrides", `{"customer_id":"c","service_type":"regular","hourly_rate":"0"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("upsert", func(t *testing.T) {
		pricing.EXPECT().UpsertOverride(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, o entities.PricingOverride) (entities.PricingOverride, error) {
			if !o.HourlyRate.Equal(decimal.RequireFromString("17.99")) || o.CleaningType != "deep" {
				t.Fatalf("unexpected override %+v", o)
			}
			o.ID = "ov-1"
			return o, nil
		})
		w := send(r, http.MethodPut, "/overrides", `{"customer_id":"cust-1","service_type":"regular","cleaning_type":"deep","hourly_rate":"17.99"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		pricing.EXPECT().DeleteOverride(gomock.Any(), "ov-x").Return(usecase.ErrOverrideNotFound)
		if w := send(r, http.MethodDelete, "/overrides/ov-x", ""); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		pricing.EXPECT().DeleteOverride(gomock.Any(), "ov-1").Return(nil)
		if w := send(r, http.MethodDelete, "/overrides/ov-1", ""); w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})

	t.Run("base rate", func(t *testing.T) {
		pricing.EXPECT().UpsertBaseRate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, br entities.BaseRate) (entities.BaseRate, error) {
			return br, nil
		})
		if w := send(r, http.MethodPut, "/base-rates", `{"service_type":"regular","hourly_rate":25}`); w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("quote", func(t *testing.T) {
		if w := send(r, http.MethodGet, "/quote?service_type=regular", ""); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		pricing.EXPECT().Quote(gomock.Any(), "cust-1", "regular", "", 90).
			Return(entities.RateQuote{HourlyRate: decimal.RequireFromString("17.99"), Currency: "gbp"}, int64(2699), nil)
		w := send(r, http.MethodGet, "/quote?customer_id=cust-1&service_type=regular&duration_minutes=90", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}
