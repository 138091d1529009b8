// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the exchange platform.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
	"github.com/qudmeet/exchange-service/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const transactionColumns = `
	id, transaction_id, sender_id, receiver_id, amount_sent, amount_received, fee,
	from_currency, to_currency, status, receiver_name, receiver_account_number,
	receiver_bank_name, receiver_phone_number, payment_account_id,
	payment_screenshot_url, receipt_url, created_at, completed_at
`

// Create stores a new transaction. The external transaction identifier
// carries a uniqueness constraint; a collision with a previously generated
// identifier is reported as ErrDuplicateTransactionID so callers can retry
// with a fresh one.
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			transaction_id, sender_id, receiver_id, amount_sent, amount_received, fee,
			from_currency, to_currency, status, receiver_name, receiver_account_number,
			receiver_bank_name, receiver_phone_number, payment_screenshot_url, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		t.TransactionID,
		t.SenderID,
		t.ReceiverID,
		t.AmountSent,
		t.AmountReceived,
		t.Fee,
		t.FromCurrency,
		t.ToCurrency,
		t.Status,
		t.Receiver.Name,
		t.Receiver.AccountNumber,
		t.Receiver.BankName,
		t.Receiver.PhoneNumber,
		t.PaymentScreenshotURL,
		t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return transaction.ErrDuplicateTransactionID{TransactionID: t.TransactionID}
		}
		r.logger.Error("Failed to create transaction", "transaction_id", t.TransactionID, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a transaction by its external identifier
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	t, err := r.scanRow(r.querier.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// ListBySender retrieves paginated transactions for a sender, newest first
func (r *TransactionRepository) ListBySender(ctx context.Context, senderID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE sender_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, senderID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions by sender", "sender_id", senderID, "error", err)
		return nil, fmt.Errorf("failed to list transactions by sender: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// CountBySender counts the total number of transactions for a sender
func (r *TransactionRepository) CountBySender(ctx context.Context, senderID string) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE sender_id = $1`, senderID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions by sender", "sender_id", senderID, "error", err)
		return 0, fmt.Errorf("failed to count transactions by sender: %w", err)
	}
	return count, nil
}

// List retrieves paginated transactions across all senders, newest first
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// Count counts all transactions
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// UpdateStatus performs a compare-and-swap on the stored status. The WHERE
// clause matches on the expected prior status, so a concurrent transition
// (or an out-of-order request) affects zero rows and is rejected instead of
// silently overwriting.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, transactionID string, expected, target transaction.Status, completedAt *time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1, completed_at = COALESCE($2, completed_at)
		WHERE transaction_id = $3 AND status = $4
	`

	result, err := r.querier.Exec(ctx, query, target, completedAt, transactionID, expected)
	if err != nil {
		r.logger.Error("Failed to update transaction status", "transaction_id", transactionID, "error", err)
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing row from a status that moved underneath us
		if _, getErr := r.GetByTransactionID(ctx, transactionID); getErr != nil {
			return getErr
		}
		return transaction.ErrInvalidTransition{From: expected, To: target}
	}

	return nil
}

// SetReceiptURL stores the receipt artifact URL on the transaction
func (r *TransactionRepository) SetReceiptURL(ctx context.Context, transactionID string, receiptURL string) error {
	return r.setField(ctx, transactionID, `receipt_url`, receiptURL)
}

// SetPaymentAccount binds an operator payment account to the transaction
func (r *TransactionRepository) SetPaymentAccount(ctx context.Context, transactionID string, paymentAccountID int64) error {
	return r.setField(ctx, transactionID, `payment_account_id`, paymentAccountID)
}

// SetReceiver binds a real counterpart over the PENDING sentinel
func (r *TransactionRepository) SetReceiver(ctx context.Context, transactionID string, receiverID string) error {
	return r.setField(ctx, transactionID, `receiver_id`, receiverID)
}

func (r *TransactionRepository) setField(ctx context.Context, transactionID, column string, value interface{}) error {
	// column is always one of the fixed names above, never user input
	query := fmt.Sprintf(`UPDATE transactions SET %s = $1 WHERE transaction_id = $2`, column)

	result, err := r.querier.Exec(ctx, query, value, transactionID)
	if err != nil {
		r.logger.Error("Failed to update transaction field", "transaction_id", transactionID, "column", column, "error", err)
		return fmt.Errorf("failed to update transaction %s: %w", column, err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: transactionID}
	}

	return nil
}

func (r *TransactionRepository) scanRow(row pgx.Row) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(
		&t.ID,
		&t.TransactionID,
		&t.SenderID,
		&t.ReceiverID,
		&t.AmountSent,
		&t.AmountReceived,
		&t.Fee,
		&t.FromCurrency,
		&t.ToCurrency,
		&t.Status,
		&t.Receiver.Name,
		&t.Receiver.AccountNumber,
		&t.Receiver.BankName,
		&t.Receiver.PhoneNumber,
		&t.PaymentAccountID,
		&t.PaymentScreenshotURL,
		&t.ReceiptURL,
		&t.CreatedAt,
		&t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return transactions, nil
}
