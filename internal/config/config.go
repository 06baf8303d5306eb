package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read from the environment (a .env file
// is loaded first by godotenv/autoload in the binaries). The grouped settings
// are embedded so their variables keep unprefixed names.
type Config struct {
	HTTPPort       int    `envconfig:"HTTP_PORT" default:"8080"`
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"dynamodb"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`

	Tables
	DynamoDB

	PaymentGateway          string `envconfig:"PAYMENT_GATEWAY" default:"stripe"`
	PaymentGatewayMock      bool   `envconfig:"PAYMENT_GATEWAY_MOCK" default:"false"`
	StripeSecretKey         string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret     string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	MercadoPagoAccessToken  string `envconfig:"MERCADOPAGO_ACCESS_TOKEN"`
	MercadoPagoWebhookToken string `envconfig:"MERCADOPAGO_WEBHOOK_SECRET"`
	Currency                string `envconfig:"CURRENCY" default:"gbp"`

	Payments

	SchedulerInterval    time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"5m"`
	SchedulerConcurrency int           `envconfig:"SCHEDULER_CONCURRENCY" default:"4"`

	Outbox

	NotificationMode     string `envconfig:"NOTIFICATION_MODE" default:"live"`
	ResendAPIKey         string `envconfig:"RESEND_API_KEY"`
	EmailFrom            string `envconfig:"EMAIL_FROM" default:"bookings@example.com"`
	TwilioAccountSID     string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber     string `envconfig:"TWILIO_FROM_NUMBER"`
	RabbitURL            string `envconfig:"RABBIT_URL"`
	NotificationExchange string `envconfig:"NOTIFICATION_EXCHANGE" default:"payments.notifications"`
	AdminEmail           string `envconfig:"ADMIN_EMAIL"`

	JWTSecret string `envconfig:"JWT_SECRET"`
}

// Tables holds DynamoDB table names.
type Tables struct {
	Bookings         string `envconfig:"BOOKINGS_TABLE" default:"bookings"`
	Ledger           string `envconfig:"LEDGER_TABLE" default:"payment_ledger"`
	Locks            string `envconfig:"LOCKS_TABLE" default:"booking_locks"`
	PricingOverrides string `envconfig:"PRICING_OVERRIDES_TABLE" default:"pricing_overrides"`
	BaseRates        string `envconfig:"BASE_RATES_TABLE" default:"base_rates"`
	Outbox           string `envconfig:"OUTBOX_TABLE" default:"notification_outbox"`
}

// DynamoDB holds the AWS connection; the static keys only apply to a local endpoint.
type DynamoDB struct {
	Region          string `envconfig:"AWS_REGION" default:"eu-west-2"`
	Endpoint        string `envconfig:"DYNAMODB_ENDPOINT"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	CheckTables     bool   `envconfig:"DYNAMODB_CHECK_TABLES" default:"true"`
}

// Payments holds the payment state machine policy.
type Payments struct {
	AuthorizeLead        time.Duration `envconfig:"AUTHORIZE_LEAD" default:"24h"`
	CaptureLead          time.Duration `envconfig:"CAPTURE_LEAD" default:"2h"`
	CaptureGrace         time.Duration `envconfig:"CAPTURE_GRACE" default:"72h"`
	GatewayTimeout       time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	LockTTL              time.Duration `envconfig:"LOCK_TTL" default:"60s"`
	PendingAuthStaleness time.Duration `envconfig:"PENDING_AUTH_STALENESS" default:"2m"`
	MaxAttempts          int           `envconfig:"MAX_PAYMENT_ATTEMPTS" default:"3"`
	RetryBaseDelay       time.Duration `envconfig:"RETRY_BASE_DELAY" default:"5m"`
	AmountToleranceMinor int64         `envconfig:"AMOUNT_TOLERANCE_MINOR" default:"1"`
}

// Outbox holds the notification drain policy.
type Outbox struct {
	DrainInterval  time.Duration `envconfig:"OUTBOX_DRAIN_INTERVAL" default:"1m"`
	MaxAttempts    int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5"`
	RetryBaseDelay time.Duration `envconfig:"OUTBOX_RETRY_BASE_DELAY" default:"1m"`
	BatchSize      int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	Lease          time.Duration `envconfig:"OUTBOX_LEASE" default:"2m"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.PaymentGateway = strings.ToLower(strings.TrimSpace(c.PaymentGateway))
	c.Currency = strings.ToLower(strings.TrimSpace(c.Currency))
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StorageBackend {
	case "dynamodb":
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORAGE_BACKEND=%s", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.Payments.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_PAYMENT_ATTEMPTS must be positive")
	}
	if c.Payments.CaptureLead >= c.Payments.AuthorizeLead {
		return fmt.Errorf("CAPTURE_LEAD must be shorter than AUTHORIZE_LEAD")
	}
	if c.Outbox.MaxAttempts <= 0 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// GatewayName resolves which gateway to build; the mock flag always wins.
func (c Config) GatewayName() string {
	if c.PaymentGatewayMock {
		return "mock"
	}
	return c.PaymentGateway
}
