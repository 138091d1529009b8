package rate

import (
	"errors"
	"time"

	"github.com/qudmeet/exchange-service/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrSameCurrency        = errors.New("from currency and to currency cannot be the same")
	ErrUnsupportedCurrency = errors.New("currency is not supported")
	ErrInvalidRate         = errors.New("rate must be positive")
)

// ExchangeRate is one row of the append-only rate table. Updating a rate
// inserts a new row; the current rate is the most recently updated row for
// the exact ordered pair.
type ExchangeRate struct {
	ID           int64           `json:"id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// New validates the pair and builds a rate row ready for insertion
func New(fromCurrency, toCurrency string, value decimal.Decimal) (*ExchangeRate, error) {
	if err := ValidatePair(fromCurrency, toCurrency); err != nil {
		return nil, err
	}
	if value.Sign() <= 0 {
		return nil, ErrInvalidRate
	}
	return &ExchangeRate{
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Rate:         value,
		UpdatedAt:    time.Now(),
	}, nil
}

// Inverse returns the algebraic inverse rate row for the opposite direction.
// Both directions are stored independently; the inverse is inserted alongside
// the forward rate for operator convenience, never derived at lookup time.
func (r *ExchangeRate) Inverse() *ExchangeRate {
	return &ExchangeRate{
		FromCurrency: r.ToCurrency,
		ToCurrency:   r.FromCurrency,
		Rate:         decimal.NewFromInt(1).Div(r.Rate),
		UpdatedAt:    r.UpdatedAt,
	}
}

// ValidatePair checks that both currencies are supported and distinct
func ValidatePair(fromCurrency, toCurrency string) error {
	if !supported(fromCurrency) || !supported(toCurrency) {
		return ErrUnsupportedCurrency
	}
	if fromCurrency == toCurrency {
		return ErrSameCurrency
	}
	return nil
}

func supported(currency string) bool {
	return currency == transaction.CurrencyNaira || currency == transaction.CurrencyRupee
}

// Default returns the hardcoded fallback rate for the pair, used when no rate
// row has been seeded yet so transaction creation never blocks on missing
// configuration.
func Default(fromCurrency, toCurrency string) (decimal.Decimal, bool) {
	switch {
	case fromCurrency == transaction.CurrencyNaira && toCurrency == transaction.CurrencyRupee:
		return decimal.NewFromFloat(0.34), true
	case fromCurrency == transaction.CurrencyRupee && toCurrency == transaction.CurrencyNaira:
		return decimal.NewFromFloat(2.94), true
	}
	return decimal.Zero, false
}
