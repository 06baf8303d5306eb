package repository

import (
	"cleaning_payments/internal/domain/entities"
	"cleaning_payments/internal/usecase/interfaces"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PricingGormRepository struct {
	db *gorm.DB
}

var _ interfaces.IPricingRepository = (*PricingGormRepository)(nil)

func NewPricingGormRepository(db *gorm.DB) *PricingGormRepository {
	return &PricingGormRepository{db: db}
}

func (r *PricingGormRepository) FindOverride(ctx context.Context, customerID, serviceType, cleaningType string) (entities.PricingOverride, error) {
	var m pricingOverrideModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND service_type = ? AND cleaning_type = ?", customerID, serviceType, storedCleaningType(cleaningType)).
		Order("updated_at DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.PricingOverride{}, nil
	}
	if err != nil {
		return entities.PricingOverride{}, err
	}
	return fromOverrideModel(m), nil
}

func (r *PricingGormRepository) ListOverrides(ctx context.Context, customerID string) ([]entities.PricingOverride, error) {
	var rows []pricingOverrideModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("service_type ASC, cleaning_type ASC, updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entities.PricingOverride, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromOverrideModel(row))
	}
	return out, nil
}

func (r *PricingGormRepository) UpsertOverride(ctx context.Context, o entities.PricingOverride) (entities.PricingOverride, error) {
	m := toOverrideModel(o)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"customer_id", "service_type", "cleaning_type", "hourly_rate", "currency", "note", "updated_at"}),
		}).
		Create(&m).Error
	if err != nil {
		return entities.PricingOverride{}, err
	}
	return o, nil
}

func (r *PricingGormRepository) DeleteOverride(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&pricingOverrideModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return interfaces.ErrPricingOverrideNotFound
	}
	return nil
}

func (r *PricingGormRepository) GetBaseRate(ctx context.Context, serviceType, cleaningType string) (entities.BaseRate, error) {
	var m baseRateModel
	err := r.db.WithContext(ctx).
		Where("service_type = ? AND cleaning_type = ?", serviceType, storedCleaningType(cleaningType)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.BaseRate{}, nil
	}
	if err != nil {
		return entities.BaseRate{}, err
	}
	return entities.BaseRate{
		ServiceType:  m.ServiceType,
		CleaningType: domainCleaningType(m.CleaningType),
		HourlyRate:   m.HourlyRate,
		Currency:     m.Currency,
		UpdatedAt:    m.UpdatedAt.UTC(),
	}, nil
}

func (r *PricingGormRepository) UpsertBaseRate(ctx context.Context, rate entities.BaseRate) (entities.BaseRate, error) {
	m := baseRateModel{
		ServiceType:  rate.ServiceType,
		CleaningType: storedCleaningType(rate.CleaningType),
		HourlyRate:   rate.HourlyRate,
		Currency:     rate.Currency,
		UpdatedAt:    rate.UpdatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service_type"}, {Name: "cleaning_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"hourly_rate", "currency", "updated_at"}),
		}).
		Create(&m).Error
	if err != nil {
		return entities.BaseRate{}, err
	}
	return rate, nil
}
