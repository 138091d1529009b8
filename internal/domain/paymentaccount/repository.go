package paymentaccount

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines payment account persistence operations
type Repository interface {
	Create(ctx context.Context, account *PaymentAccount) error
	GetByID(ctx context.Context, id int64) (*PaymentAccount, error)
	List(ctx context.Context) ([]*PaymentAccount, error)
	SetActive(ctx context.Context, id int64, active bool) error
	WithTx(tx pgx.Tx) Repository
}
