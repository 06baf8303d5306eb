package handlers

import (
	"cleaning_payments/internal/adapter/http/dto/request"
	"cleaning_payments/internal/adapter/http/dto/response"
	"cleaning_payments/internal/adapter/http/middleware"
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminPaymentHandler exposes the state machine operations to operators.
// Every call is recorded in the ledger with actor=admin and the token subject.
type AdminPaymentHandler struct {
	bookings usecase.IBookingUseCase
	machine  usecase.IPaymentStateMachine
}

func NewAdminPaymentHandler(bookings usecase.IBookingUseCase, machine usecase.IPaymentStateMachine) *AdminPaymentHandler {
	return &AdminPaymentHandler{bookings: bookings, machine: machine}
}

func adminInitiator(c *gin.Context) usecase.Initiator {
	return usecase.Initiator{Actor: entities.ActorAdmin, ID: c.GetString(middleware.ContextAdminID)}
}

func (h *AdminPaymentHandler) respond(c *gin.Context, op string, b entities.Booking, err error) {
	if err != nil {
		log.Printf("[payment][handler] admin %s failed booking_id=%s err=%v", op, c.Param("booking_id"), err)
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, response.FromBookingForAdmin(b, nil, nil))
}

// GetBooking godoc
// @Summary      Booking with ledger history and notifications
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        booking_id  path      string  true  "Booking ID"
// @Success      200         {object}  response.AdminBookingResponse
// @Failure      404         {object}  pkg.HTTPError
// @Router       /admin/bookings/{booking_id} [get]
func (h *AdminPaymentHandler) GetBooking(c *gin.Context) {
	d, err := h.bookings.GetBookingDetails(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, response.FromBookingForAdmin(d.Booking, d.History, d.Notifications))
}

// Authorize godoc
// @Summary      Request authorization now
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        booking_id  path      string  true  "Booking ID"
// @Success      200         {object}  response.AdminBookingResponse
// @Failure      409         {object}  pkg.HTTPError
// @Router       /admin/bookings/{booking_id}/authorize [post]
func (h *AdminPaymentHandler) Authorize(c *gin.Context) {
	b, err := h.machine.RequestAuthorization(c.Request.Context(), c.Param("booking_id"), adminInitiator(c))
	h.respond(c, "authorize", b, err)
}

// Capture godoc
// @Summary      Request capture; force skips the capture window
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        booking_id  path      string                  true   "Booking ID"
// @Param        body        body      request.CaptureRequest  false  "Options"
// @Success      200         {object}  response.AdminBookingResponse
// @Failure      409         {object}  pkg.HTTPError
// @Router       /admin/bookings/{booking_id}/capture [post]
func (h *AdminPaymentHandler) Capture(c *gin.Context) {
	var payload request.CaptureRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWith(c, errInvalidPayload)
			return
		}
	}
	b, err := h.machine.RequestCapture(c.Request.Context(), c.Param("booking_id"), adminInitiator(c), usecase.CaptureOptions{Force: payload.Force})
	h.respond(c, "capture", b, err)
}

func bindReason(c *gin.Context) (request.ReasonRequest, bool) {
	var payload request.ReasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWith(c, errInvalidPayload)
			return payload, false
		}
	}
	return payload, true
}

// Cancel godoc
// @Summary      Cancel a booking, voiding any live authorization
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        booking_id  path      string                 true   "Booking ID"
// @Param        body        body      request.ReasonRequest  false  "Reason"
// @Success      200         {object}  response.AdminBookingResponse
// @Router       /admin/bookings/{booking_id}/cancel [post]
func (h *AdminPaymentHandler) Cancel(c *gin.Context) {
	payload, ok := bindReason(c)
	if !ok {
		return
	}
	b, err := h.machine.Cancel(c.Request.Context(), c.Param("booking_id"), payload.ResolveReason("cancelled by admin"), adminInitiator(c))
	h.respond(c, "cancel", b, err)
}

// Refund godoc
// @Summary      Refund a captured booking
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        booking_id  path      string                 true   "Booking ID"
// @Param        body        body      request.ReasonRequest  false  "Reason"
// @Success      200         {object}  response.AdminBookingResponse
// @Router       /admin/bookings/{booking_id}/refund [post]
func (h *AdminPaymentHandler) Refund(c *gin.Context) {
	payload, ok := bindReason(c)
	if !ok {
		return
	}
	b, err := h.machine.Refund(c.Request.Context(), c.Param("booking_id"), payload.ResolveReason("refunded by admin"), adminInitiator(c))
	h.respond(c, "refund", b, err)
}

// Reconcile godoc
// @Summary      Re-read the processor and settle an in-flight state
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        booking_id  path      string  true  "Booking ID"
// @Success      200         {object}  response.AdminBookingResponse
// @Router       /admin/bookings/{booking_id}/reconcile [post]
func (h *AdminPaymentHandler) Reconcile(c *gin.Context) {
	b, err := h.machine.Reconcile(c.Request.Context(), c.Param("booking_id"), adminInitiator(c))
	h.respond(c, "reconcile", b, err)
}

// AdjustAmount godoc
// @Summary      Change the charge or approve a reviewed capture amount
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        booking_id  path      string                       true  "Booking ID"
// @Param        body        body      request.AdjustAmountRequest  true  "Amount"
// @Success      200         {object}  response.AdminBookingResponse
// @Router       /admin/bookings/{booking_id}/amount [patch]
func (h *AdminPaymentHandler) AdjustAmount(c *gin.Context) {
	var payload request.AdjustAmountRequest
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Validate() != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	b, err := h.machine.AdjustAmount(c.Request.Context(), c.Param("booking_id"), payload.AmountMinor, payload.Reason, adminInitiator(c))
	h.respond(c, "adjust amount", b, err)
}

// UpdatePaymentMethod godoc
// @Summary      Replace the payment method; resets a failed booking
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        booking_id  path      string                        true  "Booking ID"
// @Param        body        body      request.PaymentMethodRequest  true  "Payment method"
// @Success      200         {object}  response.AdminBookingResponse
// @Router       /admin/bookings/{booking_id}/payment-method [patch]
func (h *AdminPaymentHandler) UpdatePaymentMethod(c *gin.Context) {
	var payload request.PaymentMethodRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	b, err := h.machine.UpdatePaymentMethod(c.Request.Context(), c.Param("booking_id"), payload.PaymentMethodRef, adminInitiator(c))
	h.respond(c, "update payment method", b, err)
}
