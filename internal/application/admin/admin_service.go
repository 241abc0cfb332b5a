package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/bancentral/corebank/internal/domain/admin"
	"github.com/bancentral/corebank/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdminService manages the operational parameter registry and official
// exchange rate quotes.
type AdminService struct {
	parameters admin.ParameterRepository
	rates      admin.ExchangeRateRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(parameters admin.ParameterRepository, rates admin.ExchangeRateRepository) *AdminService {
	return &AdminService{
		parameters: parameters,
		rates:      rates,
	}
}

// SetParameter upserts a registry parameter
func (s *AdminService) SetParameter(ctx context.Context, key, value string) (*admin.Parameter, error) {
	parameter, err := admin.NewParameter(key, value)
	if err != nil {
		return nil, err
	}
	if err := s.parameters.Set(ctx, parameter); err != nil {
		return nil, fmt.Errorf("failed to set parameter: %w", err)
	}

	logger.L(ctx).Info("parameter updated", zap.String("key", key))

	return parameter, nil
}

// GetParameter returns a registry parameter
func (s *AdminService) GetParameter(ctx context.Context, key string) (*admin.Parameter, error) {
	return s.parameters.Get(ctx, key)
}

// SetExchangeRate upserts the official quote for a currency and date
func (s *AdminService) SetExchangeRate(ctx context.Context, currency string, date time.Time, buy, sell decimal.Decimal) (*admin.ExchangeRate, error) {
	rate, err := admin.NewExchangeRate(currency, date, buy, sell)
	if err != nil {
		return nil, err
	}
	if err := s.rates.Set(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to set exchange rate: %w", err)
	}

	logger.L(ctx).Info("exchange rate updated",
		zap.String("currency", currency),
		zap.String("date", date.Format("2006-01-02")),
	)

	return rate, nil
}

// GetExchangeRate returns the official quote for a currency and date
func (s *AdminService) GetExchangeRate(ctx context.Context, currency string, date time.Time) (*admin.ExchangeRate, error) {
	return s.rates.Get(ctx, currency, date)
}
