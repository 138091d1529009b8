package rate

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository manages the append-only exchange rate table
type Repository interface {
	Create(ctx context.Context, r *ExchangeRate) error

	// GetCurrent returns the most recently updated rate row for the exact
	// ordered pair, or ErrRateNotFound when no row exists for it.
	GetCurrent(ctx context.Context, fromCurrency, toCurrency string) (*ExchangeRate, error)

	List(ctx context.Context) ([]*ExchangeRate, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrRateNotFound indicates no rate row exists for the requested pair
type ErrRateNotFound struct {
	FromCurrency string
	ToCurrency   string
}

func (e ErrRateNotFound) Error() string {
	return "exchange rate not found: " + e.FromCurrency + " -> " + e.ToCurrency
}

// Is implements errors.Is; a zero-valued target matches any ErrRateNotFound.
func (e ErrRateNotFound) Is(target error) bool {
	t, ok := target.(ErrRateNotFound)
	if !ok {
		return false
	}
	if t.FromCurrency == "" && t.ToCurrency == "" {
		return true
	}
	return e.FromCurrency == t.FromCurrency && e.ToCurrency == t.ToCurrency
}
