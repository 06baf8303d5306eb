package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// WildcardCleaningType is the storage marker for an override that applies to
// every cleaning type of a service. In the domain it is the empty string.
const WildcardCleaningType = "*"

// QuoteSource names which table answered a rate lookup.
type QuoteSource string

const (
	QuoteSourceCustomerExact    QuoteSource = "customer_exact"
	QuoteSourceCustomerWildcard QuoteSource = "customer_wildcard"
	QuoteSourceBaseRate         QuoteSource = "base_rate"
)

// PricingOverride is a customer-specific hourly rate.
//
// Key: (customer_id, service_type, cleaning_type). An empty CleaningType is a
// wildcard for the service type. When duplicates exist for the same key the
// most recently updated row is the active one.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (override_key-updated_at-index): customer_id#service_type#cleaning_type
//     ("*" for wildcard), updated_at
//   - GSI2 (customer_id-index): customer_id

type PricingOverride struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	ServiceType  string          `json:"service_type"`
	CleaningType string          `json:"cleaning_type,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Currency     string          `json:"currency"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsWildcard reports whether the override covers every cleaning type.
func (o PricingOverride) IsWildcard() bool {
	return o.CleaningType == ""
}

// BaseRate is the standard hourly rate for a service/cleaning type with no
// customer scoping. An empty CleaningType is the service-wide default.

type BaseRate struct {
	ServiceType  string          `json:"service_type"`
	CleaningType string          `json:"cleaning_type,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Currency     string          `json:"currency"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// RateQuote is the answer of a single rate lookup.
type RateQuote struct {
	CustomerID   string          `json:"customer_id"`
	ServiceType  string          `json:"service_type"`
	CleaningType string          `json:"cleaning_type,omitempty"`
	Source       QuoteSource     `json:"source"`
	OverrideID   string          `json:"override_id,omitempty"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Currency     string          `json:"currency"`
}

// ChargeMinor prices a slot of durationMins minutes in minor units, rounding
// half away from zero to the penny.
func (q RateQuote) ChargeMinor(durationMins int) int64 {
	if durationMins <= 0 {
		return 0
	}
	amount := q.HourlyRate.
		Mul(decimal.NewFromInt(int64(durationMins))).
		Div(decimal.NewFromInt(60)).
		Round(2)
	return amount.Shift(2).IntPart()
}
