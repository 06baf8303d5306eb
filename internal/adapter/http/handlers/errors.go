package handlers

import (
	"cleaning_payments/internal/usecase"
	"cleaning_payments/internal/usecase/interfaces"
	"cleaning_payments/pkg"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
)

func abortWith(c *gin.Context, appErr *pkg.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

// mapPaymentError translates use-case errors. Gateway codes are exposed only
// on admin routes, where exposeGateway is true.
func mapPaymentError(err error, exposeGateway bool) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return pkg.NewDomainError("INVALID_REQUEST", "Invalid request", err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrBookingNotFound):
		return pkg.NewDomainErrorSimple("BOOKING_NOT_FOUND", "Booking not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrOverrideNotFound):
		return pkg.NewDomainErrorSimple("OVERRIDE_NOT_FOUND", "Pricing override not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrRateNotFound):
		return pkg.NewDomainErrorSimple("RATE_NOT_FOUND", "No rate configured for this service", http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "Operation not allowed in the current payment state", http.StatusConflict)
	case errors.Is(err, usecase.ErrConcurrencyConflict), errors.Is(err, interfaces.ErrStateConflict):
		return pkg.NewDomainErrorSimple("PAYMENT_IN_PROGRESS", "Another payment operation is in progress, try again", http.StatusConflict)
	case errors.Is(err, usecase.ErrAmountMismatch):
		return pkg.NewDomainErrorSimple("AMOUNT_MISMATCH", "Capture amount needs review", http.StatusConflict)
	case errors.Is(err, usecase.ErrOutsideCaptureWindow):
		return pkg.NewDomainErrorSimple("OUTSIDE_CAPTURE_WINDOW", "Capture is not allowed yet", http.StatusConflict)
	case errors.Is(err, usecase.ErrRetryNotDue):
		return pkg.NewDomainErrorSimple("RETRY_NOT_DUE", "Payment retry is not due yet", http.StatusConflict)
	case errors.Is(err, interfaces.ErrGatewayTransient):
		msg := "Payment processor unavailable, try again later"
		if exposeGateway {
			msg += ": " + interfaces.GatewayErrorCode(err)
		}
		return pkg.NewDomainError("GATEWAY_UNAVAILABLE", msg, err, http.StatusBadGateway)
	case errors.Is(err, interfaces.ErrGatewayTerminal):
		msg := "Payment was declined"
		if exposeGateway {
			msg += ": " + interfaces.GatewayErrorCode(err)
		}
		return pkg.NewDomainError("PAYMENT_DECLINED", msg, err, http.StatusPaymentRequired)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
