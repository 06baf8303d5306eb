package handlers

import (
	"cleaning_payments/internal/adapter/http/dto/request"
	"cleaning_payments/internal/adapter/http/dto/response"
	"cleaning_payments/internal/usecase"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PricingHandler struct {
	pricing usecase.IPricingResolver
}

func NewPricingHandler(pricing usecase.IPricingResolver) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

// ListOverrides godoc
// @Summary      List a customer's pricing overrides
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query     string  true  "Customer ID"
// @Success      200          {array}   entities.PricingOverride
// @Router       /admin/pricing/overrides [get]
func (h *PricingHandler) ListOverrides(c *gin.Context) {
	out, err := h.pricing.ListOverrides(c.Request.Context(), c.Query("customer_id"))
	if err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpsertOverride godoc
// @Summary      Create or update a pricing override
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      request.PricingOverrideRequest  true  "Override"
// @Success      200   {object}  entities.PricingOverride
// @Router       /admin/pricing/overrides [put]
func (h *PricingHandler) UpsertOverride(c *gin.Context) {
	var payload request.PricingOverrideRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	o, err := payload.ToEntity()
	if err != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	saved, err := h.pricing.UpsertOverride(c.Request.Context(), o)
	if err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteOverride godoc
// @Summary      Delete a pricing override
// @Tags         pricing
// @Security     Bearer
// @Param        override_id  path  string  true  "Override ID"
// @Success      204
// @Failure      404  {object}  pkg.HTTPError
// @Router       /admin/pricing/overrides/{override_id} [delete]
func (h *PricingHandler) DeleteOverride(c *gin.Context) {
	if err := h.pricing.DeleteOverride(c.Request.Context(), c.Param("override_id")); err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertBaseRate godoc
// @Summary      Create or update a base rate
// @Tags         pricing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      request.BaseRateRequest  true  "Base rate"
// @Success      200   {object}  entities.BaseRate
// @Router       /admin/pricing/base-rates [put]
func (h *PricingHandler) UpsertBaseRate(c *gin.Context) {
	var payload request.BaseRateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	rate, err := payload.ToEntity()
	if err != nil {
		abortWith(c, errInvalidPayload)
		return
	}
	saved, err := h.pricing.UpsertBaseRate(c.Request.Context(), rate)
	if err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Quote godoc
// @Summary      Preview the rate and charge for a slot
// @Tags         pricing
// @Security     Bearer
// @Produce      json
// @Param        customer_id       query     string  false  "Customer ID"
// @Param        service_type      query     string  true   "Service type"
// @Param        cleaning_type     query     string  false  "Cleaning type"
// @Param        duration_minutes  query     int     true   "Duration in minutes"
// @Success      200               {object}  response.QuoteResponse
// @Failure      422               {object}  pkg.HTTPError
// @Router       /admin/pricing/quote [get]
func (h *PricingHandler) Quote(c *gin.Context) {
	mins, err := strconv.Atoi(c.Query("duration_minutes"))
	if err != nil || mins <= 0 {
		abortWith(c, errInvalidPayload)
		return
	}
	q, amount, err := h.pricing.Quote(c.Request.Context(), c.Query("customer_id"), c.Query("service_type"), c.Query("cleaning_type"), mins)
	if err != nil {
		abortWith(c, mapPaymentError(err, true))
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q, mins, amount))
}
