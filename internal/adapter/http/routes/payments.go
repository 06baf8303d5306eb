package routes

import (
	"cleaning_payments/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPing     = "/ping"
	PathBookings = "/bookings"
	PathWebhooks = "/webhooks"
	PathAdmin    = "/admin"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET(PathPing, handlers.Ping)
}

func addBookingRoutes(rg *gin.RouterGroup, h *handlers.BookingHandler) {
	bookings := rg.Group(PathBookings)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:booking_id", h.GetBooking)
	}
}

func addWebhookRoutes(rg *gin.RouterGroup, h *handlers.WebhookHandler) {
	rg.POST(PathWebhooks+"/:provider", h.Handle)
}

func addAdminRoutes(rg *gin.RouterGroup, payments *handlers.AdminPaymentHandler, pricing *handlers.PricingHandler, notifications *handlers.NotificationHandler) {
	bookings := rg.Group(PathBookings + "/:booking_id")
	{
		bookings.GET("", payments.GetBooking)
		bookings.POST("/authorize", payments.Authorize)
		bookings.POST("/capture", payments.Capture)
		bookings.POST("/cancel", payments.Cancel)
		bookings.POST("/refund", payments.Refund)
		bookings.POST("/reconcile", payments.Reconcile)
		bookings.PATCH("/amount", payments.AdjustAmount)
		bookings.PATCH("/payment-method", payments.UpdatePaymentMethod)
	}

	p := rg.Group("/pricing")
	{
		p.GET("/overrides", pricing.ListOverrides)
		p.PUT("/overrides", pricing.UpsertOverride)
		p.DELETE("/overrides/:override_id", pricing.DeleteOverride)
		p.PUT("/base-rates", pricing.UpsertBaseRate)
		p.GET("/quote", pricing.Quote)
	}

	rg.POST("/notifications/drain", notifications.Drain)
}
