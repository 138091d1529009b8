package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
	"github.com/qudmeet/exchange-service/internal/platform/persistence"
)

// PaymentAccountRepository implements the paymentaccount.Repository interface for PostgreSQL
type PaymentAccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPaymentAccountRepository creates a new PostgreSQL payment account repository
func NewPaymentAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) paymentaccount.Repository {
	return &PaymentAccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *PaymentAccountRepository) WithTx(tx pgx.Tx) paymentaccount.Repository {
	return &PaymentAccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new operator payment account
func (r *PaymentAccountRepository) Create(ctx context.Context, account *paymentaccount.PaymentAccount) error {
	query := `
		INSERT INTO payment_accounts (account_type, currency, account_name, account_number, bank_name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		account.AccountType,
		account.Currency,
		account.AccountName,
		account.AccountNumber,
		account.BankName,
		account.IsActive,
		account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		r.logger.Error("Failed to create payment account",
			"account_name", account.AccountName,
			"error", err,
		)
		return fmt.Errorf("failed to create payment account: %w", err)
	}

	return nil
}

// GetByID retrieves a payment account by its identifier
func (r *PaymentAccountRepository) GetByID(ctx context.Context, id int64) (*paymentaccount.PaymentAccount, error) {
	query := `
		SELECT id, account_type, currency, account_name, account_number, bank_name, is_active, created_at
		FROM payment_accounts
		WHERE id = $1
	`

	var account paymentaccount.PaymentAccount
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.AccountType,
		&account.Currency,
		&account.AccountName,
		&account.AccountNumber,
		&account.BankName,
		&account.IsActive,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, paymentaccount.ErrAccountNotFound{ID: id}
		}
		r.logger.Error("Failed to get payment account", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get payment account: %w", err)
	}

	return &account, nil
}

// List retrieves all payment accounts, active first, newest first within each group
func (r *PaymentAccountRepository) List(ctx context.Context) ([]*paymentaccount.PaymentAccount, error) {
	query := `
		SELECT id, account_type, currency, account_name, account_number, bank_name, is_active, created_at
		FROM payment_accounts
		ORDER BY is_active DESC, created_at DESC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list payment accounts", "error", err)
		return nil, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*paymentaccount.PaymentAccount
	for rows.Next() {
		var account paymentaccount.PaymentAccount
		err := rows.Scan(
			&account.ID,
			&account.AccountType,
			&account.Currency,
			&account.AccountName,
			&account.AccountNumber,
			&account.BankName,
			&account.IsActive,
			&account.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment account row: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payment account rows: %w", err)
	}

	return accounts, nil
}

// SetActive toggles whether an account may be assigned to new transactions
func (r *PaymentAccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE payment_accounts SET is_active = $1 WHERE id = $2`

	result, err := r.querier.Exec(ctx, query, active, id)
	if err != nil {
		r.logger.Error("Failed to update payment account", "id", id, "error", err)
		return fmt.Errorf("failed to update payment account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return paymentaccount.ErrAccountNotFound{ID: id}
	}

	return nil
}
