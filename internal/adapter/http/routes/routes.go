package routes

import (
	_ "cleaning_payments/docs"
	"cleaning_payments/internal/adapter/http/handlers"
	"cleaning_payments/internal/adapter/http/middleware"
	"cleaning_payments/internal/bootstrap"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with every route mounted under /v1.
func NewRouter(app *bootstrap.Container) *gin.Engine {
	router := gin.New()
	setMiddlewares(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	bookingHandler := handlers.NewBookingHandler(app.Bookings)
	adminHandler := handlers.NewAdminPaymentHandler(app.Bookings, app.Machine)
	pricingHandler := handlers.NewPricingHandler(app.Pricing)
	notificationHandler := handlers.NewNotificationHandler(app.Dispatcher)
	webhookHandler := handlers.NewWebhookHandler(app.Verifiers, app.Bookings, app.Machine)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addBookingRoutes(v1, bookingHandler)
	addWebhookRoutes(v1, webhookHandler)

	admin := v1.Group(PathAdmin, middleware.AdminAuth(middleware.NewTokenService(app.Config.JWTSecret)))
	addAdminRoutes(admin, adminHandler, pricingHandler, notificationHandler)
	return router
}

// Run starts the HTTP server and blocks.
func Run(app *bootstrap.Container) error {
	addr := ":" + strconv.Itoa(app.Config.HTTPPort)
	log.Printf("[http] listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func setMiddlewares(router *gin.Engine) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}
