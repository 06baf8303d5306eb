package handlers

import (
	request "cleaning_payments/internal/adapter/http/dto/request"
	response "cleaning_payments/internal/adapter/http/dto/response"
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves the customer-facing booking endpoints.
type BookingHandler struct {
	bookings usecase.IBookingUseCase
}

func NewBookingHandler(uc usecase.IBookingUseCase) *BookingHandler {
	return &BookingHandler{bookings: uc}
}

// CreateBooking godoc
// @Summary      Create a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      request.CreateBookingRequest  true  "Booking"
// @Success      201   {object}  response.CustomerBookingResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      422   {object}  pkg.HTTPError
// @Router       /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var payload request.CreateBookingRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	start, err := payload.ResolveScheduledStart()
	if err != nil {
		abortWith(c, errInvalidPayload)
		return
	}

	b, err := h.bookings.CreateBooking(c.Request.Context(), usecase.CreateBookingCommand{
		CustomerID:       payload.CustomerID,
		CustomerEmail:    payload.CustomerEmail,
		CustomerPhone:    payload.CustomerPhone,
		ServiceType:      payload.ServiceType,
		CleaningType:     payload.CleaningType,
		Address:          payload.Address,
		ScheduledStart:   start,
		DurationMins:     payload.DurationMinutes,
		PaymentMethodRef: payload.PaymentMethodRef,
		By:               usecase.Initiator{Actor: entities.ActorCustomer, ID: payload.CustomerID},
	})
	if err != nil {
		appErr := mapPaymentError(err, false)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Printf("[booking][handler] create failed customer_id=%s err=%v", payload.CustomerID, err)
		}
		abortWith(c, appErr)
		return
	}
	c.JSON(http.StatusCreated, response.FromBookingForCustomer(b))
}

// GetBooking godoc
// @Summary      Booking payment status (customer view)
// @Tags         bookings
// @Produce      json
// @Param        booking_id  path      string  true  "Booking ID"
// @Success      200         {object}  response.CustomerBookingResponse
// @Failure      404         {object}  pkg.HTTPError
// @Router       /bookings/{booking_id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.bookings.GetBooking(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		abortWith(c, mapPaymentError(err, false))
		return
	}
	c.JSON(http.StatusOK, response.FromBookingForCustomer(b))
}
