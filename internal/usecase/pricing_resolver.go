package usecase

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IPricingResolver computes booking charges from base rates and customer
// overrides, and administers both tables.
//
// ResolveRate lookup order, first match wins, no blending:
//  1. override on (customer, service type, cleaning type)
//  2. override on (customer, service type, wildcard)
//  3. base rate for (service type, cleaning type), then the service-wide base rate

type IPricingResolver interface {
	ResolveRate(ctx context.Context, customerID, serviceType, cleaningType string) (entities.RateQuote, error)
	Quote(ctx context.Context, customerID, serviceType, cleaningType string, durationMins int) (entities.RateQuote, int64, error)
	ListOverrides(ctx context.Context, customerID string) ([]entities.PricingOverride, error)
	UpsertOverride(ctx context.Context, o entities.PricingOverride) (entities.PricingOverride, error)
	DeleteOverride(ctx context.Context, id string) error
	UpsertBaseRate(ctx context.Context, r entities.BaseRate) (entities.BaseRate, error)
}

type PricingResolver struct {
	repo            interfaces.IPricingRepository
	defaultCurrency string
	now             func() time.Time
}

var _ IPricingResolver = (*PricingResolver)(nil)

func NewPricingResolver(repo interfaces.IPricingRepository, defaultCurrency string) *PricingResolver {
	if defaultCurrency == "" {
		defaultCurrency = "gbp"
	}
	return &PricingResolver{repo: repo, defaultCurrency: defaultCurrency, now: time.Now}
}

func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func (r *PricingResolver) ResolveRate(ctx context.Context, customerID, serviceType, cleaningType string) (entities.RateQuote, error) {
	customerID = strings.TrimSpace(customerID)
	serviceType = normalizeKey(serviceType)
	cleaningType = normalizeKey(cleaningType)
	if serviceType == "" {
		return entities.RateQuote{}, fmt.Errorf("%w: service_type is required", ErrValidation)
	}
	if cleaningType == entities.WildcardCleaningType {
		cleaningType = ""
	}

	if customerID != "" {
		if cleaningType != "" {
			exact, err := r.repo.FindOverride(ctx, customerID, serviceType, cleaningType)
			if err != nil {
				return entities.RateQuote{}, err
			}
			if exact.ID != "" {
				return r.quoteFromOverride(exact, customerID, serviceType, cleaningType, entities.QuoteSourceCustomerExact), nil
			}
		}
		wildcard, err := r.repo.FindOverride(ctx, customerID, serviceType, "")
		if err != nil {
			return entities.RateQuote{}, err
		}
		if wildcard.ID != "" {
			return r.quoteFromOverride(wildcard, customerID, serviceType, cleaningType, entities.QuoteSourceCustomerWildcard), nil
		}
	}

	base, err := r.repo.GetBaseRate(ctx, serviceType, cleaningType)
	if err != nil {
		return entities.RateQuote{}, err
	}
	if base.ServiceType == "" && cleaningType != "" {
		base, err = r.repo.GetBaseRate(ctx, serviceType, "")
		if err != nil {
			return entities.RateQuote{}, err
		}
	}
	if base.ServiceType == "" {
		return entities.RateQuote{}, fmt.Errorf("%w: service_type=%s cleaning_type=%s", ErrRateNotFound, serviceType, cleaningType)
	}

	return entities.RateQuote{
		CustomerID:   customerID,
		ServiceType:  serviceType,
		CleaningType: cleaningType,
		Source:       entities.QuoteSourceBaseRate,
		HourlyRate:   base.HourlyRate,
		Currency:     r.currencyOr(base.Currency),
	}, nil
}

func (r *PricingResolver) quoteFromOverride(o entities.PricingOverride, customerID, serviceType, cleaningType string, source entities.QuoteSource) entities.RateQuote {
	return entities.RateQuote{
		CustomerID:   customerID,
		ServiceType:  serviceType,
		CleaningType: cleaningType,
		Source:       source,
		OverrideID:   o.ID,
		HourlyRate:   o.HourlyRate,
		Currency:     r.currencyOr(o.Currency),
	}
}

func (r *PricingResolver) currencyOr(c string) string {
	if c = normalizeKey(c); c != "" {
		return c
	}
	return r.defaultCurrency
}

func (r *PricingResolver) Quote(ctx context.Context, customerID, serviceType, cleaningType string, durationMins int) (entities.RateQuote, int64, error) {
	if durationMins <= 0 {
		return entities.RateQuote{}, 0, fmt.Errorf("%w: duration_minutes must be positive", ErrValidation)
	}
	q, err := r.ResolveRate(ctx, customerID, serviceType, cleaningType)
	if err != nil {
		return entities.RateQuote{}, 0, err
	}
	return q, q.ChargeMinor(durationMins), nil
}

func (r *PricingResolver) ListOverrides(ctx context.Context, customerID string) ([]entities.PricingOverride, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrValidation)
	}
	return r.repo.ListOverrides(ctx, customerID)
}

func (r *PricingResolver) UpsertOverride(ctx context.Context, o entities.PricingOverride) (entities.PricingOverride, error) {
	o.CustomerID = strings.TrimSpace(o.CustomerID)
	o.ServiceType = normalizeKey(o.ServiceType)
	o.CleaningType = normalizeKey(o.CleaningType)
	if o.CleaningType == entities.WildcardCleaningType {
		o.CleaningType = ""
	}
	if o.CustomerID == "" || o.ServiceType == "" {
		return entities.PricingOverride{}, fmt.Errorf("%w: customer_id and service_type are required", ErrValidation)
	}
	if !o.HourlyRate.IsPositive() {
		return entities.PricingOverride{}, fmt.Errorf("%w: hourly_rate must be positive", ErrValidation)
	}
	o.Currency = r.currencyOr(o.Currency)

	now := r.now().UTC()
	if o.ID == "" {
		o.ID = uuid.NewString()
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	saved, err := r.repo.UpsertOverride(ctx, o)
	if err != nil {
		return entities.PricingOverride{}, err
	}
	log.Printf("[pricing][resolver] override upserted id=%s customer_id=%s service_type=%s cleaning_type=%q rate=%s", saved.ID, saved.CustomerID, saved.ServiceType, saved.CleaningType, saved.HourlyRate.String())
	return saved, nil
}

func (r *PricingResolver) DeleteOverride(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: override id is required", ErrValidation)
	}
	return r.repo.DeleteOverride(ctx, id)
}

func (r *PricingResolver) UpsertBaseRate(ctx context.Context, rate entities.BaseRate) (entities.BaseRate, error) {
	rate.ServiceType = normalizeKey(rate.ServiceType)
	rate.CleaningType = normalizeKey(rate.CleaningType)
	if rate.CleaningType == entities.WildcardCleaningType {
		rate.CleaningType = ""
	}
	if rate.ServiceType == "" {
		return entities.BaseRate{}, fmt.Errorf("%w: service_type is required", ErrValidation)
	}
	if !rate.HourlyRate.IsPositive() {
		return entities.BaseRate{}, fmt.Errorf("%w: hourly_rate must be positive", ErrValidation)
	}
	rate.Currency = r.currencyOr(rate.Currency)
	rate.UpdatedAt = r.now().UTC()
	return r.repo.UpsertBaseRate(ctx, rate)
}
