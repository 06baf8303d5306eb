package request

import (
	"cleaning_payments/internal/domain/entities"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidHourlyRate = errors.New("hourly_rate must be positive")

type PricingOverrideRequest struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id" binding:"required"`
	ServiceType  string          `json:"service_type" binding:"required"`
	CleaningType string          `json:"cleaning_type"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Currency     string          `json:"currency"`
	Note         string          `json:"note"`
}

func (r PricingOverrideRequest) ToEntity() (entities.PricingOverride, error) {
	if !r.HourlyRate.IsPositive() {
		return entities.PricingOverride{}, ErrInvalidHourlyRate
	}
	return entities.PricingOverride{
		ID:           strings.TrimSpace(r.ID),
		CustomerID:   strings.TrimSpace(r.CustomerID),
		ServiceType:  strings.TrimSpace(r.ServiceType),
		CleaningType: strings.TrimSpace(r.CleaningType),
		HourlyRate:   r.HourlyRate,
		Currency:     strings.ToLower(strings.TrimSpace(r.Currency)),
		Note:         r.Note,
	}, nil
}

type BaseRateRequest struct {
	ServiceType  string          `json:"service_type" binding:"required"`
	CleaningType string          `json:"cleaning_type"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	Currency     string          `json:"currency"`
}

func (r BaseRateRequest) ToEntity() (entities.BaseRate, error) {
	if !r.HourlyRate.IsPositive() {
		return entities.BaseRate{}, ErrInvalidHourlyRate
	}
	return entities.BaseRate{
		ServiceType:  strings.TrimSpace(r.ServiceType),
		CleaningType: strings.TrimSpace(r.CleaningType),
		HourlyRate:   r.HourlyRate,
		Currency:     strings.ToLower(strings.TrimSpace(r.Currency)),
	}, nil
}
