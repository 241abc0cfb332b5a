package models

import (
	"time"

	"github.com/bancentral/corebank/internal/domain/admin"
	"github.com/shopspring/decimal"
)

// ParameterModel is the persistence model for a registry parameter.
// The key is the natural primary key; Set is an upsert.
type ParameterModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     string    `gorm:"type:varchar(500);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ParameterModel) TableName() string {
	return "parameters"
}

// ToDomain converts the persistence model to a domain Parameter.
func (m *ParameterModel) ToDomain() *admin.Parameter {
	return &admin.Parameter{
		Key:       m.Key,
		Value:     m.Value,
		UpdatedAt: m.UpdatedAt,
	}
}

// ParameterModelFromDomain creates a persistence model from a domain Parameter.
func ParameterModelFromDomain(p *admin.Parameter) *ParameterModel {
	return &ParameterModel{
		Key:       p.Key,
		Value:     p.Value,
		UpdatedAt: p.UpdatedAt,
	}
}

// ExchangeRateModel is the persistence model for an official exchange rate
// quote, keyed by currency and quote date.
type ExchangeRateModel struct {
	Currency  string          `gorm:"type:char(3);primary_key"`
	Date      time.Time       `gorm:"type:date;primary_key"`
	Buy       decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Sell      decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the persistence model to a domain ExchangeRate.
func (m *ExchangeRateModel) ToDomain() *admin.ExchangeRate {
	return &admin.ExchangeRate{
		Currency:  m.Currency,
		Date:      m.Date,
		Buy:       m.Buy,
		Sell:      m.Sell,
		UpdatedAt: m.UpdatedAt,
	}
}

// ExchangeRateModelFromDomain creates a persistence model from a domain ExchangeRate.
func ExchangeRateModelFromDomain(r *admin.ExchangeRate) *ExchangeRateModel {
	return &ExchangeRateModel{
		Currency:  r.Currency,
		Date:      r.Date,
		Buy:       r.Buy,
		Sell:      r.Sell,
		UpdatedAt: r.UpdatedAt,
	}
}
