package interfaces

import (
	"cleaning_payments/internal/domain/entities"
	"context"
	"errors"
)

// ErrPricingOverrideNotFound is returned by DeleteOverride for an unknown id.
var ErrPricingOverrideNotFound = errors.New("pricing override not found")

// IPricingRepository abstracts persistence for customer overrides and the base
// rate table.
//
// FindOverride matches the key exactly; cleaningType "" selects the wildcard
// row. When several rows share a key the most recently updated one is returned.
// Lookups return zero values (empty ID / empty ServiceType) when nothing matches.

type IPricingRepository interface {
	FindOverride(ctx context.Context, customerID, serviceType, cleaningType string) (entities.PricingOverride, error)
	ListOverrides(ctx context.Context, customerID string) ([]entities.PricingOverride, error)
	UpsertOverride(ctx context.Context, o entities.PricingOverride) (entities.PricingOverride, error)
	DeleteOverride(ctx context.Context, id string) error
	GetBaseRate(ctx context.Context, serviceType, cleaningType string) (entities.BaseRate, error)
	UpsertBaseRate(ctx context.Context, r entities.BaseRate) (entities.BaseRate, error)
}
