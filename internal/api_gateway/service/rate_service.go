package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/qudmeet/exchange-service/internal/domain/rate"
	"github.com/qudmeet/exchange-service/internal/platform/persistence"
)

// RateServiceImpl implements the RateService interface
type RateServiceImpl struct {
	rateRepo rate.Repository
	txRunner persistence.TxRunner
	logger   *slog.Logger
}

// NewRateService creates a new exchange rate service
func NewRateService(logger *slog.Logger, rateRepo rate.Repository, txRunner persistence.TxRunner) RateService {
	return &RateServiceImpl{
		rateRepo: rateRepo,
		txRunner: txRunner,
		logger:   logger,
	}
}

// GetRate returns the current rate for the pair. When no rate row has been
// seeded yet the built-in default is returned so quoting never fails on a
// fresh installation.
func (s *RateServiceImpl) GetRate(ctx context.Context, fromCurrency, toCurrency string) (*rate.ExchangeRate, error) {
	if err := rate.ValidatePair(fromCurrency, toCurrency); err != nil {
		return nil, err
	}

	current, err := s.rateRepo.GetCurrent(ctx, fromCurrency, toCurrency)
	if err != nil {
		if errors.Is(err, rate.ErrRateNotFound{}) {
			fallback, ok := rate.Default(fromCurrency, toCurrency)
			if ok {
				s.logger.Warn("No stored exchange rate, serving default",
					"from_currency", fromCurrency,
					"to_currency", toCurrency,
				)
				return &rate.ExchangeRate{
					FromCurrency: fromCurrency,
					ToCurrency:   toCurrency,
					Rate:         fallback,
				}, nil
			}
		}
		return nil, err
	}

	return current, nil
}

// ListRates returns the current rate for every stored pair
func (s *RateServiceImpl) ListRates(ctx context.Context) ([]*rate.ExchangeRate, error) {
	return s.rateRepo.List(ctx)
}

// UpsertRate inserts a new rate row for the pair and its algebraic inverse
// for the opposite direction in a single database transaction, so the two
// directions never drift apart.
func (s *RateServiceImpl) UpsertRate(ctx context.Context, fromCurrency, toCurrency string, value decimal.Decimal) (*rate.ExchangeRate, error) {
	forward, err := rate.New(fromCurrency, toCurrency, value)
	if err != nil {
		return nil, err
	}
	inverse := forward.Inverse()

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.rateRepo.WithTx(tx)
		if createErr := repo.Create(ctx, forward); createErr != nil {
			return createErr
		}
		return repo.Create(ctx, inverse)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exchange rate updated",
		"from_currency", fromCurrency,
		"to_currency", toCurrency,
		"rate", forward.Rate.String(),
		"inverse_rate", inverse.Rate.String(),
	)
	return forward, nil
}
