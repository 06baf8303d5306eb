package bootstrap

import (
	"cleaning_payments/internal/adapter/persistence/repository"
	"cleaning_payments/internal/config"
	"cleaning_payments/internal/infrastructure/database"
	"cleaning_payments/internal/infrastructure/notifications"
	"cleaning_payments/internal/infrastructure/payments"
	"cleaning_payments/internal/usecase"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"fmt"
	"log"
)

// Stores groups the persistence ports of one backend.
type Stores struct {
	Ledger  interfaces.IBookingLedgerRepository
	Locker  interfaces.IBookingLocker
	Pricing interfaces.IPricingRepository
	Outbox  interfaces.INotificationOutboxRepository
}

// Container is the wired object graph shared by the API and the worker.
type Container struct {
	Config     config.Config
	Stores     Stores
	Gateway    interfaces.IPaymentGateway
	Verifiers  map[string]interfaces.IWebhookVerifier
	Senders    *notifications.Router
	Pricing    *usecase.PricingResolver
	Dispatcher *usecase.NotificationDispatcher
	Machine    *usecase.PaymentStateMachine
	Bookings   *usecase.BookingUseCase
	Scheduler  *usecase.PaymentScheduler
}

func PaymentPolicy(c config.Config) usecase.PaymentPolicy {
	p := c.Payments
	return usecase.PaymentPolicy{
		AuthorizeLead:        p.AuthorizeLead,
		CaptureLead:          p.CaptureLead,
		CaptureGrace:         p.CaptureGrace,
		GatewayTimeout:       p.GatewayTimeout,
		LockTTL:              p.LockTTL,
		PendingAuthStaleness: p.PendingAuthStaleness,
		MaxAttempts:          p.MaxAttempts,
		RetryBaseDelay:       p.RetryBaseDelay,
		AmountToleranceMinor: p.AmountToleranceMinor,
	}
}

func NotificationPolicy(c config.Config) usecase.NotificationPolicy {
	o := c.Outbox
	return usecase.NotificationPolicy{
		AdminEmail:     c.AdminEmail,
		EventsEnabled:  c.RabbitURL != "" || c.NotificationMode != "live",
		MaxAttempts:    o.MaxAttempts,
		RetryBaseDelay: o.RetryBaseDelay,
		BatchSize:      o.BatchSize,
		Lease:          o.Lease,
	}
}

func GatewaySettings(c config.Config) payments.GatewaySettings {
	return payments.GatewaySettings{
		Name:                    c.GatewayName(),
		StripeSecretKey:         c.StripeSecretKey,
		StripeWebhookSecret:     c.StripeWebhookSecret,
		MercadoPagoAccessToken:  c.MercadoPagoAccessToken,
		MercadoPagoWebhookToken: c.MercadoPagoWebhookToken,
	}
}

func NotificationSettings(c config.Config) notifications.Settings {
	return notifications.Settings{
		Mode:             c.NotificationMode,
		ResendAPIKey:     c.ResendAPIKey,
		EmailFrom:        c.EmailFrom,
		TwilioAccountSID: c.TwilioAccountSID,
		TwilioAuthToken:  c.TwilioAuthToken,
		TwilioFromNumber: c.TwilioFromNumber,
		RabbitURL:        c.RabbitURL,
		Exchange:         c.NotificationExchange,
	}
}

func DynamoSettings(c config.Config) database.DynamoSettings {
	d := c.DynamoDB
	return database.DynamoSettings{
		Region:          d.Region,
		Endpoint:        d.Endpoint,
		AccessKeyID:     d.AccessKeyID,
		SecretAccessKey: d.SecretAccessKey,
	}
}

// OpenStores connects the configured backend. SQL backends are migrated on
// open; DynamoDB tables are provisioned outside the service.
func OpenStores(ctx context.Context, c config.Config) (Stores, error) {
	switch c.StorageBackend {
	case "dynamodb":
		ddb, err := database.ConnectDynamoDB(ctx, DynamoSettings(c))
		if err != nil {
			return Stores{}, fmt.Errorf("connect dynamodb: %w", err)
		}
		if c.DynamoDB.CheckTables {
			t := c.Tables
			if err := database.CheckTables(ctx, ddb, t.Bookings, t.Ledger, t.Locks, t.PricingOverrides, t.BaseRates, t.Outbox); err != nil {
				return Stores{}, err
			}
		}
		return Stores{
			Ledger:  repository.NewBookingLedgerDynamoRepository(ddb, c.Tables.Bookings, c.Tables.Ledger),
			Locker:  repository.NewBookingLockDynamoRepository(ddb, c.Tables.Locks),
			Pricing: repository.NewPricingDynamoRepository(ddb, c.Tables.PricingOverrides, c.Tables.BaseRates),
			Outbox:  repository.NewNotificationOutboxDynamoRepository(ddb, c.Tables.Outbox),
		}, nil
	default:
		db, err := database.ConnectGorm(c.StorageBackend, c.DatabaseURL)
		if err != nil {
			return Stores{}, fmt.Errorf("connect %s: %w", c.StorageBackend, err)
		}
		if err := repository.AutoMigrate(db); err != nil {
			return Stores{}, fmt.Errorf("migrate: %w", err)
		}
		return Stores{
			Ledger:  repository.NewBookingLedgerGormRepository(db),
			Locker:  repository.NewBookingLockGormRepository(db),
			Pricing: repository.NewPricingGormRepository(db),
			Outbox:  repository.NewNotificationOutboxGormRepository(db),
		}, nil
	}
}

// Build wires every component over already opened stores.
func Build(c config.Config, stores Stores) (*Container, error) {
	gateway, err := payments.NewGateway(GatewaySettings(c))
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}
	senders, err := notifications.NewRouterFromSettings(NotificationSettings(c))
	if err != nil {
		return nil, fmt.Errorf("notification senders: %w", err)
	}

	policy := PaymentPolicy(c)
	pricing := usecase.NewPricingResolver(stores.Pricing, c.Currency)
	dispatcher := usecase.NewNotificationDispatcher(stores.Outbox, senders, NotificationPolicy(c))
	machine := usecase.NewPaymentStateMachine(stores.Ledger, stores.Locker, gateway, pricing, dispatcher, policy)

	log.Printf("[bootstrap] wired storage=%s gateway=%s notifications=%s", c.StorageBackend, gateway.Name(), c.NotificationMode)
	return &Container{
		Config:     c,
		Stores:     stores,
		Gateway:    gateway,
		Verifiers:  payments.NewWebhookVerifiers(GatewaySettings(c)),
		Senders:    senders,
		Pricing:    pricing,
		Dispatcher: dispatcher,
		Machine:    machine,
		Bookings:   usecase.NewBookingUseCase(stores.Ledger, pricing, dispatcher),
		Scheduler:  usecase.NewPaymentScheduler(stores.Ledger, machine, policy, c.SchedulerConcurrency),
	}, nil
}

func (c *Container) Close() error {
	if c.Senders != nil {
		return c.Senders.Close()
	}
	return nil
}
