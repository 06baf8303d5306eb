package handlers

import (
	"cleaning_payments/internal/usecase"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NotificationHandler lets operators flush the outbox without waiting for the
// worker tick.
type NotificationHandler struct {
	dispatcher usecase.INotificationDispatcher
}

func NewNotificationHandler(d usecase.INotificationDispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: d}
}

// Drain godoc
// @Summary      Deliver due notifications now
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  usecase.DrainReport
// @Router       /admin/notifications/drain [post]
func (h *NotificationHandler) Drain(c *gin.Context) {
	report, err := h.dispatcher.Drain(c.Request.Context())
	if err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, report)
}
