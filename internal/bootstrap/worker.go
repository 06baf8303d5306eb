package bootstrap

import (
	"cleaning_payments/internal/usecase"
	"context"
)

// RunScheduler drives due bookings every SCHEDULER_INTERVAL until ctx ends.
func RunScheduler(ctx context.Context, app *Container) error {
	return usecase.RunEvery(ctx, "scheduler", app.Config.SchedulerInterval, func(ctx context.Context) error {
		_, err := app.Scheduler.RunOnce(ctx)
		return err
	})
}

// RunOutboxDrain delivers due notifications every OUTBOX_DRAIN_INTERVAL.
func RunOutboxDrain(ctx context.Context, app *Container) error {
	return usecase.RunEvery(ctx, "outbox", app.Config.Outbox.DrainInterval, func(ctx context.Context) error {
		_, err := app.Dispatcher.Drain(ctx)
		return err
	})
}
