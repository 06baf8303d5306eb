package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"cleaning_payments/internal/adapter/http/handlers/mocks"
	"cleaning_payments/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func TestNotificationHandler_Drain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	d := mocks.NewMockINotificationDispatcher(ctrl)

	r := gin.New()
	r.POST("/drain", NewNotificationHandler(d).Drain)

	d.EXPECT().Drain(gomock.Any()).Return(usecase.DrainReport{Due: 3, Sent: 2, Retried: 1}, nil)
	w := send(r, http.MethodPost, "/drain", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"sent":2`) {
		t.Fatalf("expected 200 with report, got %d %s", w.Code, w.Body.String())
	}

	d.EXPECT().Drain(gomock.Any()).Return(usecase.DrainReport{}, errors.New("outbox unavailable"))
	if w := send(r, http.MethodPost, "/drain", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
