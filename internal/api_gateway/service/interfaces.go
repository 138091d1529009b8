package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
	"github.com/qudmeet/exchange-service/internal/domain/rate"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
)

// PaymentProof is an optional payment screenshot attached at creation time
type PaymentProof struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TransactionService drives the exchange transaction lifecycle
type TransactionService interface {
	// Create validates the request, computes the settlement amount from the
	// current rate, and stores the transaction. A transaction created with a
	// payment proof starts in payment_received, otherwise in awaiting_payment.
	Create(ctx context.Context, senderID string, amountSent decimal.Decimal, direction transaction.Direction, receiver transaction.ReceiverInfo, proof *PaymentProof, correlationID string) (*transaction.Transaction, error)

	// GetByID retrieves a transaction by its external identifier
	// Returns ErrTransactionNotFound if the transaction doesn't exist
	GetByID(ctx context.Context, transactionID string) (*transaction.Transaction, error)

	// ListBySender retrieves a paginated list of the sender's transactions
	// Returns transactions, total count, and any error
	ListBySender(ctx context.Context, senderID string, page, perPage int) ([]*transaction.Transaction, int64, error)

	// List retrieves a paginated list of all transactions for operators
	List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error)

	// Transition moves the transaction to the target status, enforcing the
	// lifecycle state machine. Returns ErrInvalidTransition when the move is
	// not allowed from the current status.
	Transition(ctx context.Context, transactionID string, target transaction.Status, correlationID string) (*transaction.Transaction, error)

	// AssignPaymentAccount binds an active operator payment account matching
	// the transaction's sending currency and notifies the sender where to pay
	AssignPaymentAccount(ctx context.Context, transactionID string, paymentAccountID int64, correlationID string) error

	// MatchReceiver replaces the PENDING receiver placeholder with a real user
	MatchReceiver(ctx context.Context, transactionID string, receiverID string) error
}

// RateService manages exchange rate lookup and operator updates
type RateService interface {
	// GetRate returns the current rate for the pair, falling back to the
	// built-in default when no rate row has been seeded yet
	GetRate(ctx context.Context, fromCurrency, toCurrency string) (*rate.ExchangeRate, error)

	// ListRates returns the current rate for every stored pair
	ListRates(ctx context.Context) ([]*rate.ExchangeRate, error)

	// UpsertRate inserts a new rate row for the pair together with its
	// algebraic inverse for the opposite direction, atomically
	UpsertRate(ctx context.Context, fromCurrency, toCurrency string, value decimal.Decimal) (*rate.ExchangeRate, error)
}

// PaymentAccountService manages the operator-owned accounts senders pay into
type PaymentAccountService interface {
	Create(ctx context.Context, accountType, currency, accountName, accountNumber, bankName string) (*paymentaccount.PaymentAccount, error)
	List(ctx context.Context) ([]*paymentaccount.PaymentAccount, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// NotificationService exposes the in-app notification inbox
type NotificationService interface {
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]*notification.Notification, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
