package service

import (
	"context"
	"log/slog"

	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
)

// PaymentAccountServiceImpl implements the PaymentAccountService interface
type PaymentAccountServiceImpl struct {
	accountRepo paymentaccount.Repository
	logger      *slog.Logger
}

// NewPaymentAccountService creates a new payment account service
func NewPaymentAccountService(logger *slog.Logger, accountRepo paymentaccount.Repository) PaymentAccountService {
	return &PaymentAccountServiceImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Create registers a new operator-owned payment account, active by default
func (s *PaymentAccountServiceImpl) Create(ctx context.Context, accountType, currency, accountName, accountNumber, bankName string) (*paymentaccount.PaymentAccount, error) {
	account, err := paymentaccount.New(accountType, currency, accountName, accountNumber, bankName)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Payment account created",
		"payment_account_id", account.ID,
		"currency", account.Currency,
		"bank_name", account.BankName,
	)
	return account, nil
}

// List returns all registered payment accounts
func (s *PaymentAccountServiceImpl) List(ctx context.Context) ([]*paymentaccount.PaymentAccount, error) {
	return s.accountRepo.List(ctx)
}

// SetActive toggles whether the account may be assigned to new transactions
func (s *PaymentAccountServiceImpl) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.accountRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.logger.Info("Payment account activation changed", "payment_account_id", id, "is_active", active)
	return nil
}
