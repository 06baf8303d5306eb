package main

import (
	"cleaning_payments/internal/adapter/http/routes"
	"cleaning_payments/internal/bootstrap"
	"cleaning_payments/internal/config"
	"context"
	"log"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Cleaning Payments API
// @version         1.0
// @description     Payment lifecycle engine for cleaning bookings: authorization, capture, refunds, pricing and notifications.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	stores, err := bootstrap.OpenStores(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	app, err := bootstrap.Build(cfg, stores)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}
	defer app.Close()

	if err := routes.Run(app); err != nil {
		log.Fatalf("Failed to startup the application: %v", err)
	}
}
