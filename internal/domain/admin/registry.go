package admin

import (
	"context"
	"time"

	"github.com/bancentral/corebank/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReserveRatioKey is the parameter holding the encaje requirement as a
// fraction of institution deposits (e.g. "0.1120").
const ReserveRatioKey = "ENCAJE_RATIO"

// Parameter is a key/value entry of the operational configuration registry
type Parameter struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewParameter creates a registry parameter
func NewParameter(key, value string) (*Parameter, error) {
	if key == "" || value == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "parameter key and value are required")
	}
	return &Parameter{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// ExchangeRate is the official buy/sell quote for one currency on one date
type ExchangeRate struct {
	Currency  string          `json:"currency"`
	Date      time.Time       `json:"date"`
	Buy       decimal.Decimal `json:"buy"`
	Sell      decimal.Decimal `json:"sell"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewExchangeRate creates an official quote. Buy and sell must be positive
// and sell must not undercut buy.
func NewExchangeRate(currency string, date time.Time, buy, sell decimal.Decimal) (*ExchangeRate, error) {
	if currency == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "currency is required")
	}
	if !buy.IsPositive() || !sell.IsPositive() {
		return nil, shared.NewDomainError("INVALID_FORMAT", "exchange rates must be positive")
	}
	if sell.LessThan(buy) {
		return nil, shared.NewDomainError("INVALID_FORMAT", "sell rate cannot be below buy rate")
	}
	return &ExchangeRate{
		Currency:  currency,
		Date:      date,
		Buy:       buy,
		Sell:      sell,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// ParameterRepository defines the interface for registry persistence
type ParameterRepository interface {
	// Get returns the parameter for the key
	Get(ctx context.Context, key string) (*Parameter, error)

	// Set upserts the parameter
	Set(ctx context.Context, parameter *Parameter) error
}

// ExchangeRateRepository defines the interface for official quote persistence
type ExchangeRateRepository interface {
	// Get returns the quote for a currency and date
	Get(ctx context.Context, currency string, date time.Time) (*ExchangeRate, error)

	// Set upserts the quote for the rate's currency and date
	Set(ctx context.Context, rate *ExchangeRate) error
}
