package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cleaning_payments/internal/adapter/http/handlers/mocks"
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func TestBookingHandler_CreateBooking(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(t *testing.T) (*gin.Engine, *mocks.MockIBookingUseCase) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIBookingUseCase(ctrl)
		r := gin.New()
		r.POST("/v1/bookings", NewBookingHandler(uc).CreateBooking)
		return r, uc
	}
	post := func(r *gin.Engine, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	valid := `{"customer_id":"cust-1","service_type":"regular","address":"1 High St","scheduled_start":"2026-03-12T09:00:00Z","duration_minutes":120,"payment_method_ref":"pm_card_visa"}`

	t.Run("invalid payload", func(t *testing.T) {
		r, _ := newRouter(t)
		if w := post(r, "{"); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid start", func(t *testing.T) {
		r, _ := newRouter(t)
		body := strings.Replace(valid, "2026-03-12T09:00:00Z", "next week", 1)
		if w := post(r, body); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("no rate", func(t *testing.T) {
		r, uc := newRouter(t)
		uc.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).Return(entities.Booking{}, usecase.ErrRateNotFound)
		if w := post(r, valid); w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		r, uc := newRouter(t)
		uc.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, cmd usecase.CreateBookingCommand) (entities.Booking, error) {
			if cmd.By.Actor != entities.ActorCustomer || cmd.DurationMins != 120 || !cmd.ScheduledStart.Equal(time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected command %+v", cmd)
			}
			return entities.Booking{ID: "bk-1", AmountMinor: 5000, Currency: "gbp", PaymentState: entities.PaymentStateUnbilled}, nil
		})

		w := post(r, valid)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["payment_status"] != "pending" || body["amount"] != "50.00" {
			t.Fatalf("unexpected body %v", body)
		}
	})
}

func TestBookingHandler_GetBooking(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIBookingUseCase(ctrl)

	r := gin.New()
	r.GET("/v1/bookings/:booking_id", NewBookingHandler(uc).GetBooking)

	uc.EXPECT().GetBooking(gomock.Any(), "missing").Return(entities.Booking{}, usecase.ErrBookingNotFound)
	uc.EXPECT().GetBooking(gomock.Any(), "bk-1").Return(entities.Booking{
		ID:            "bk-1",
		PaymentState:  entities.PaymentStateFailed,
		FailureReason: "do_not_honor",
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings/bk-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "do_not_honor") {
		t.Fatalf("customer view leaked gateway code: %s", w.Body.String())
	}
}
