package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bancentral/corebank/internal/domain/admin"
	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormParameterRepository implements ParameterRepository using GORM
type GormParameterRepository struct {
	db *gorm.DB
}

// NewGormParameterRepository creates a new GormParameterRepository
func NewGormParameterRepository(db *gorm.DB) *GormParameterRepository {
	return &GormParameterRepository{db: db}
}

// Get returns the parameter for the key
func (r *GormParameterRepository) Get(ctx context.Context, key string) (*admin.Parameter, error) {
	var model models.ParameterModel
	if err := r.db.WithContext(ctx).
		First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Set upserts the parameter
func (r *GormParameterRepository) Set(ctx context.Context, parameter *admin.Parameter) error {
	model := models.ParameterModelFromDomain(parameter)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormParameterRepository implements ParameterRepository
var _ admin.ParameterRepository = (*GormParameterRepository)(nil)

// GormExchangeRateRepository implements ExchangeRateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *gorm.DB) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db}
}

// Get returns the quote for a currency and date
func (r *GormExchangeRateRepository) Get(ctx context.Context, currency string, date time.Time) (*admin.ExchangeRate, error) {
	var model models.ExchangeRateModel
	if err := r.db.WithContext(ctx).
		Where("currency = ? AND date = ?", currency, date).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Set upserts the quote for the rate's currency and date
func (r *GormExchangeRateRepository) Set(ctx context.Context, rate *admin.ExchangeRate) error {
	model := models.ExchangeRateModelFromDomain(rate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "currency"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"buy", "sell", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormExchangeRateRepository implements ExchangeRateRepository
var _ admin.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
