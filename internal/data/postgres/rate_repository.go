package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/qudmeet/exchange-service/internal/domain/rate"
	"github.com/qudmeet/exchange-service/internal/platform/persistence"
)

// RateRepository implements the rate.Repository interface for PostgreSQL
type RateRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRateRepository creates a new PostgreSQL exchange rate repository
func NewRateRepository(logger *slog.Logger, db *persistence.PostgresDB) rate.Repository {
	return &RateRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, so a rate and its inverse
// can be written atomically.
func (r *RateRepository) WithTx(tx pgx.Tx) rate.Repository {
	return &RateRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a new rate row. Rates are never updated in place; the
// current rate for a pair is the most recently inserted row.
func (r *RateRepository) Create(ctx context.Context, er *rate.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (from_currency, to_currency, rate, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		er.FromCurrency,
		er.ToCurrency,
		er.Rate,
		er.UpdatedAt,
	).Scan(&er.ID)
	if err != nil {
		r.logger.Error("Failed to create exchange rate",
			"from_currency", er.FromCurrency,
			"to_currency", er.ToCurrency,
			"error", err,
		)
		return fmt.Errorf("failed to create exchange rate: %w", err)
	}

	return nil
}

// GetCurrent retrieves the most recent rate row for a currency pair
func (r *RateRepository) GetCurrent(ctx context.Context, fromCurrency, toCurrency string) (*rate.ExchangeRate, error) {
	query := `
		SELECT id, from_currency, to_currency, rate, updated_at
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2
		ORDER BY updated_at DESC, id DESC
		LIMIT 1
	`

	var er rate.ExchangeRate
	err := r.querier.QueryRow(ctx, query, fromCurrency, toCurrency).Scan(
		&er.ID,
		&er.FromCurrency,
		&er.ToCurrency,
		&er.Rate,
		&er.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rate.ErrRateNotFound{FromCurrency: fromCurrency, ToCurrency: toCurrency}
		}
		r.logger.Error("Failed to get exchange rate",
			"from_currency", fromCurrency,
			"to_currency", toCurrency,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	return &er, nil
}

// List retrieves the current rate for every pair that has at least one row
func (r *RateRepository) List(ctx context.Context) ([]*rate.ExchangeRate, error) {
	query := `
		SELECT DISTINCT ON (from_currency, to_currency)
			id, from_currency, to_currency, rate, updated_at
		FROM exchange_rates
		ORDER BY from_currency, to_currency, updated_at DESC, id DESC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list exchange rates", "error", err)
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []*rate.ExchangeRate
	for rows.Next() {
		var er rate.ExchangeRate
		err := rows.Scan(
			&er.ID,
			&er.FromCurrency,
			&er.ToCurrency,
			&er.Rate,
			&er.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rates = append(rates, &er)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exchange rate rows: %w", err)
	}

	return rates, nil
}
