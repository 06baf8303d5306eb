package main

import (
	"cleaning_payments/internal/bootstrap"
	"cleaning_payments/internal/config"
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/sync/errgroup"
)

// The worker runs the payment scheduler and the notification drain on their
// own intervals until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	app, err := bootstrap.Build(cfg, stores)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}
	defer app.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bootstrap.RunScheduler(gctx, app)
	})
	g.Go(func() error {
		return bootstrap.RunOutboxDrain(gctx, app)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker stopped: %v", err)
	}
	log.Printf("[worker] shutdown complete")
}
