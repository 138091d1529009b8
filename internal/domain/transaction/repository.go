package transaction

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repository defines transaction persistence operations
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Transaction, error)
	ListBySender(ctx context.Context, senderID string, limit, offset int) ([]*Transaction, error)
	CountBySender(ctx context.Context, senderID string) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Transaction, error)
	Count(ctx context.Context) (int64, error)

	// UpdateStatus performs a compare-and-swap on the stored status: the row is
	// only updated when its current status equals expected. completedAt is set
	// only for transitions into the completed state.
	UpdateStatus(ctx context.Context, transactionID string, expected, target Status, completedAt *time.Time) error

	SetReceiptURL(ctx context.Context, transactionID string, receiptURL string) error
	SetPaymentAccount(ctx context.Context, transactionID string, paymentAccountID int64) error
	SetReceiver(ctx context.Context, transactionID string, receiverID string) error
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	TransactionID string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID
}

// Is implements errors.Is; a target with an empty TransactionID matches any
// ErrTransactionNotFound.
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateTransactionID indicates a collision on the generated external identifier
type ErrDuplicateTransactionID struct {
	TransactionID string
}

func (e ErrDuplicateTransactionID) Error() string {
	return "duplicate transaction id: " + e.TransactionID
}

// Is implements errors.Is; a target with an empty TransactionID matches any
// ErrDuplicateTransactionID.
func (e ErrDuplicateTransactionID) Is(target error) bool {
	t, ok := target.(ErrDuplicateTransactionID)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrInvalidTransition indicates a status change that does not follow the lifecycle graph
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e ErrInvalidTransition) Error() string {
	return "invalid status transition: " + string(e.From) + " -> " + string(e.To)
}

// Is implements errors.Is; a zero-valued target matches any ErrInvalidTransition.
func (e ErrInvalidTransition) Is(target error) bool {
	t, ok := target.(ErrInvalidTransition)
	if !ok {
		return false
	}
	if t.From == "" && t.To == "" {
		return true
	}
	return e.From == t.From && e.To == t.To
}
