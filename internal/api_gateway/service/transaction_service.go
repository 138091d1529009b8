package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/domain/outbox"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
	"github.com/qudmeet/exchange-service/internal/domain/rate"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
	"github.com/qudmeet/exchange-service/internal/platform/blob"
	"github.com/qudmeet/exchange-service/internal/platform/persistence"
	"github.com/qudmeet/exchange-service/internal/receipt"
)

const (
	// transactionIDLength is the length of generated external identifiers
	transactionIDLength = 10

	// maxIDGenerationAttempts bounds retries on identifier collisions
	maxIDGenerationAttempts = 3

	// rateLookupTimeout bounds the rate query so creation degrades to the
	// default rate instead of hanging on a slow database
	rateLookupTimeout = 3 * time.Second
)

// TransactionServiceImpl implements the TransactionService interface.
// It owns the transaction lifecycle: settlement computation at creation,
// strict status transitions, payment account assignment, and the
// notification events each step emits.
type TransactionServiceImpl struct {
	txRepo      transaction.Repository
	rateRepo    rate.Repository
	accountRepo paymentaccount.Repository
	outboxRepo  outbox.Repository
	txRunner    persistence.TxRunner
	blobStore   blob.Store
	receipts    *receipt.Generator
	logger      *slog.Logger
}

// NewTransactionService creates a new transaction lifecycle service
func NewTransactionService(
	logger *slog.Logger,
	txRepo transaction.Repository,
	rateRepo rate.Repository,
	accountRepo paymentaccount.Repository,
	outboxRepo outbox.Repository,
	txRunner persistence.TxRunner,
	blobStore blob.Store,
	receipts *receipt.Generator,
) TransactionService {
	return &TransactionServiceImpl{
		txRepo:      txRepo,
		rateRepo:    rateRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		txRunner:    txRunner,
		blobStore:   blobStore,
		receipts:    receipts,
		logger:      logger,
	}
}

// Create validates the request, computes the settlement amount from the
// current rate, stores the transaction, and enqueues the payment received
// notification when a proof is attached.
func (s *TransactionServiceImpl) Create(ctx context.Context, senderID string, amountSent decimal.Decimal, direction transaction.Direction, receiver transaction.ReceiverInfo, proof *PaymentProof, correlationID string) (*transaction.Transaction, error) {
	currentRate, err := s.lookupRate(ctx, direction)
	if err != nil {
		return nil, err
	}

	t, err := transaction.New(senderID, amountSent, direction, receiver, currentRate)
	if err != nil {
		return nil, err
	}

	if proof != nil {
		url, uploadErr := s.blobStore.Put(ctx, proofFilename(proof.Filename), proof.ContentType, proof.Data)
		if uploadErr != nil {
			s.logger.Error("Failed to store payment proof", "sender_id", senderID, "error", uploadErr)
			return nil, fmt.Errorf("failed to store payment proof: %w", uploadErr)
		}
		t.PaymentScreenshotURL = url
		t.Status = transaction.StatusPaymentReceived
	}

	// Identifier collisions are vanishingly rare but the uniqueness
	// constraint makes them loud; retry with a fresh identifier.
	for attempt := 1; attempt <= maxIDGenerationAttempts; attempt++ {
		id, genErr := gonanoid.New(transactionIDLength)
		if genErr != nil {
			return nil, fmt.Errorf("failed to generate transaction id: %w", genErr)
		}
		t.TransactionID = id

		err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
			if createErr := s.txRepo.WithTx(tx).Create(ctx, t); createErr != nil {
				return createErr
			}
			if proof != nil {
				event := notification.NewEvent(
					senderID,
					"Payment Received",
					fmt.Sprintf("We have received your payment of %s %s. We are processing your transaction now.", t.AmountSent.String(), t.FromCurrency),
					notification.TypePaymentReceived,
					t.TransactionID,
					correlationID,
				)
				return s.enqueueEvent(ctx, tx, event)
			}
			return nil
		})
		if err == nil {
			s.logger.Info("Transaction created",
				"transaction_id", t.TransactionID,
				"sender_id", senderID,
				"direction", string(direction),
				"amount_sent", t.AmountSent.String(),
				"amount_received", t.AmountReceived.String(),
				"status", string(t.Status),
			)
			return t, nil
		}
		if !errors.Is(err, transaction.ErrDuplicateTransactionID{}) {
			return nil, err
		}
		s.logger.Warn("Transaction id collision, retrying", "transaction_id", t.TransactionID, "attempt", attempt)
	}

	return nil, err
}

// GetByID retrieves a transaction by its external identifier
func (s *TransactionServiceImpl) GetByID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	return s.txRepo.GetByTransactionID(ctx, transactionID)
}

// ListBySender retrieves a paginated list of the sender's transactions
func (s *TransactionServiceImpl) ListBySender(ctx context.Context, senderID string, page, perPage int) ([]*transaction.Transaction, int64, error) {
	offset := (page - 1) * perPage

	transactions, err := s.txRepo.ListBySender(ctx, senderID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.txRepo.CountBySender(ctx, senderID)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// List retrieves a paginated list of all transactions for operators
func (s *TransactionServiceImpl) List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error) {
	offset := (page - 1) * perPage

	transactions, err := s.txRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.txRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// Transition moves the transaction to the target status, enqueueing the
// notifications the new status implies in the same database transaction as
// the status write. Receipt generation for completed transactions happens
// after commit and is best-effort.
func (s *TransactionServiceImpl) Transition(ctx context.Context, transactionID string, target transaction.Status, correlationID string) (*transaction.Transaction, error) {
	if !target.Valid() {
		return nil, transaction.ErrInvalidTransition{To: target}
	}

	t, err := s.txRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !t.Status.CanTransitionTo(target) {
		return nil, transaction.ErrInvalidTransition{From: t.Status, To: target}
	}

	var completedAt *time.Time
	if target == transaction.StatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	expected := t.Status
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if updateErr := s.txRepo.WithTx(tx).UpdateStatus(ctx, transactionID, expected, target, completedAt); updateErr != nil {
			return updateErr
		}
		for _, event := range s.transitionEvents(t, target, correlationID) {
			if enqueueErr := s.enqueueEvent(ctx, tx, event); enqueueErr != nil {
				return enqueueErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.Status = target
	t.CompletedAt = completedAt

	s.logger.Info("Transaction status updated",
		"transaction_id", transactionID,
		"from", string(expected),
		"to", string(target),
	)

	if target == transaction.StatusCompleted {
		s.finalizeCompleted(ctx, t, correlationID)
	}

	return t, nil
}

// AssignPaymentAccount binds an operator payment account to the transaction
// after checking it exists, is active, and matches the sending currency,
// then tells the sender where to pay.
func (s *TransactionServiceImpl) AssignPaymentAccount(ctx context.Context, transactionID string, paymentAccountID int64, correlationID string) error {
	t, err := s.txRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}

	account, err := s.accountRepo.GetByID(ctx, paymentAccountID)
	if err != nil {
		return err
	}

	if !account.IsActive {
		return paymentaccount.ErrAccountInactive{ID: account.ID}
	}

	if account.Currency != t.FromCurrency {
		return paymentaccount.ErrCurrencyMismatch{
			AccountCurrency:     account.Currency,
			TransactionCurrency: t.FromCurrency,
		}
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if assignErr := s.txRepo.WithTx(tx).SetPaymentAccount(ctx, transactionID, paymentAccountID); assignErr != nil {
			return assignErr
		}
		event := notification.NewEvent(
			t.SenderID,
			"Payment Account Assigned",
			fmt.Sprintf("Please send %s %s to %s (%s) at %s.", t.AmountSent.String(), t.FromCurrency, account.AccountName, account.AccountNumber, account.BankName),
			notification.TypePaymentAccountAssigned,
			transactionID,
			correlationID,
		)
		return s.enqueueEvent(ctx, tx, event)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Payment account assigned",
		"transaction_id", transactionID,
		"payment_account_id", paymentAccountID,
	)
	return nil
}

// MatchReceiver replaces the PENDING receiver placeholder with a real user
func (s *TransactionServiceImpl) MatchReceiver(ctx context.Context, transactionID string, receiverID string) error {
	if receiverID == "" || receiverID == transaction.PendingReceiver {
		return fmt.Errorf("receiver id %q is not a valid user", receiverID)
	}

	if err := s.txRepo.SetReceiver(ctx, transactionID, receiverID); err != nil {
		return err
	}

	s.logger.Info("Receiver matched", "transaction_id", transactionID, "receiver_id", receiverID)
	return nil
}

// lookupRate fetches the current rate for the direction, degrading to the
// built-in default when no rate has been seeded yet
func (s *TransactionServiceImpl) lookupRate(ctx context.Context, direction transaction.Direction) (decimal.Decimal, error) {
	if !direction.Valid() {
		return decimal.Zero, transaction.ErrInvalidDirection
	}
	from, to := direction.Currencies()

	lookupCtx, cancel := context.WithTimeout(ctx, rateLookupTimeout)
	defer cancel()

	current, err := s.rateRepo.GetCurrent(lookupCtx, from, to)
	if err != nil {
		if errors.Is(err, rate.ErrRateNotFound{}) {
			fallback, ok := rate.Default(from, to)
			if !ok {
				return decimal.Zero, err
			}
			s.logger.Warn("No stored exchange rate, using default",
				"from_currency", from,
				"to_currency", to,
				"rate", fallback.String(),
			)
			return fallback, nil
		}
		return decimal.Zero, err
	}

	return current.Rate, nil
}

// transitionEvents returns the notification events a status change emits
func (s *TransactionServiceImpl) transitionEvents(t *transaction.Transaction, target transaction.Status, correlationID string) []*notification.Event {
	switch target {
	case transaction.StatusPaymentReceived:
		return []*notification.Event{notification.NewEvent(
			t.SenderID,
			"Payment Confirmed",
			fmt.Sprintf("Your payment of %s %s has been confirmed. We are processing your transaction.", t.AmountSent.String(), t.FromCurrency),
			notification.TypePaymentReceived,
			t.TransactionID,
			correlationID,
		)}
	case transaction.StatusTransferInProgress:
		return []*notification.Event{notification.NewEvent(
			t.SenderID,
			"Transfer in Progress",
			fmt.Sprintf("We are transferring %s %s to your recipient.", t.AmountReceived.String(), t.ToCurrency),
			notification.TypePaymentSent,
			t.TransactionID,
			correlationID,
		)}
	case transaction.StatusCompleted:
		events := []*notification.Event{notification.NewEvent(
			t.SenderID,
			"Transaction Completed",
			"Your transaction has been completed. Your receipt is ready.",
			notification.TypeTransactionCompleted,
			t.TransactionID,
			correlationID,
		)}
		if t.HasReceiver() {
			events = append(events, notification.NewEvent(
				t.ReceiverID,
				"Payment Received",
				fmt.Sprintf("You have received %s %s.", t.AmountReceived.String(), t.ToCurrency),
				notification.TypePaymentReceived,
				t.TransactionID,
				correlationID,
			))
		}
		return events
	case transaction.StatusFailed:
		return []*notification.Event{notification.NewEvent(
			t.SenderID,
			"Transaction Failed",
			"Your transaction has failed. Please contact support for assistance.",
			notification.TypeTransactionFailed,
			t.TransactionID,
			correlationID,
		)}
	}
	return nil
}

// finalizeCompleted generates the receipt for a completed transaction and
// notifies the sender it is ready. Failures are logged, never propagated;
// the transaction itself already committed.
func (s *TransactionServiceImpl) finalizeCompleted(ctx context.Context, t *transaction.Transaction, correlationID string) {
	url, err := s.receipts.Generate(ctx, t)
	if err != nil {
		s.logger.Error("Failed to generate receipt", "transaction_id", t.TransactionID, "error", err)
		return
	}

	if err := s.txRepo.SetReceiptURL(ctx, t.TransactionID, url); err != nil {
		s.logger.Error("Failed to store receipt URL", "transaction_id", t.TransactionID, "error", err)
		return
	}
	t.ReceiptURL = url

	event := notification.NewEvent(
		t.SenderID,
		"Receipt Ready",
		fmt.Sprintf("Your receipt for transaction %s is ready. You can download it from the transaction details page.", t.TransactionID),
		notification.TypeReceiptReady,
		t.TransactionID,
		correlationID,
	)
	message, err := outbox.NewMessage(event)
	if err != nil {
		s.logger.Error("Failed to build receipt notification", "transaction_id", t.TransactionID, "error", err)
		return
	}
	if err := s.outboxRepo.Create(ctx, message); err != nil {
		s.logger.Error("Failed to enqueue receipt notification", "transaction_id", t.TransactionID, "error", err)
	}
}

// enqueueEvent writes a notification event to the outbox inside the caller's
// database transaction
func (s *TransactionServiceImpl) enqueueEvent(ctx context.Context, tx pgx.Tx, event *notification.Event) error {
	message, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, message)
}

func proofFilename(original string) string {
	ext := filepath.Ext(original)
	return "payment_" + uuid.New().String() + ext
}
