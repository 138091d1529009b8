package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Supported currencies
const (
	CurrencyNaira = "NGN"
	CurrencyRupee = "INR"
)

// PendingReceiver is the receiver placeholder used until an operator
// matches the transaction with a real counterpart.
const PendingReceiver = "PENDING"

// Direction defines the exchange direction of a transaction
type Direction string

const (
	DirectionNairaToRupees Direction = "naira-to-rupees"
	DirectionRupeesToNaira Direction = "rupees-to-naira"
)

// Currencies returns the (from, to) currency pair for the direction
func (d Direction) Currencies() (string, string) {
	if d == DirectionNairaToRupees {
		return CurrencyNaira, CurrencyRupee
	}
	return CurrencyRupee, CurrencyNaira
}

// Valid reports whether the direction is one of the supported exchange flows
func (d Direction) Valid() bool {
	return d == DirectionNairaToRupees || d == DirectionRupeesToNaira
}

// Common errors
var (
	ErrInvalidAmount       = errors.New("amount sent must be positive")
	ErrInvalidDirection    = errors.New("invalid exchange direction")
	ErrMissingReceiverInfo = errors.New("receiver name, account number, bank name and phone number are required")
	ErrNegativeSettlement  = errors.New("amount received after fee would not be positive")
	ErrSameCurrency        = errors.New("from currency and to currency cannot be the same")
)

// ReceiverInfo holds the free-text details of the person receiving the funds
type ReceiverInfo struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	PhoneNumber   string `json:"phone_number"`
}

// Complete reports whether every receiver field has been supplied
func (r ReceiverInfo) Complete() bool {
	return r.Name != "" && r.AccountNumber != "" && r.BankName != "" && r.PhoneNumber != ""
}

// Transaction represents a single currency exchange request and its lifecycle state
type Transaction struct {
	ID                   int64           `json:"-"`
	TransactionID        string          `json:"transaction_id"`
	SenderID             string          `json:"sender_id"`
	ReceiverID           string          `json:"receiver_id"`
	AmountSent           decimal.Decimal `json:"amount_sent"`
	AmountReceived       decimal.Decimal `json:"amount_received"`
	Fee                  decimal.Decimal `json:"fee"`
	FromCurrency         string          `json:"from_currency"`
	ToCurrency           string          `json:"to_currency"`
	Status               Status          `json:"status"`
	Receiver             ReceiverInfo    `json:"receiver"`
	PaymentAccountID     *int64          `json:"payment_account_id,omitempty"`
	PaymentScreenshotURL string          `json:"payment_screenshot_url,omitempty"`
	ReceiptURL           string          `json:"receipt_url,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// New builds a transaction for the given direction, computing the settlement
// amount from the supplied rate. The external transaction identifier is
// assigned by the caller before persistence.
func New(senderID string, amountSent decimal.Decimal, direction Direction, receiver ReceiverInfo, rate decimal.Decimal) (*Transaction, error) {
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}
	if amountSent.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if !receiver.Complete() {
		return nil, ErrMissingReceiverInfo
	}

	amountReceived, err := SettlementAmount(amountSent, rate, direction)
	if err != nil {
		return nil, err
	}

	from, to := direction.Currencies()

	return &Transaction{
		SenderID:       senderID,
		ReceiverID:     PendingReceiver,
		AmountSent:     amountSent,
		AmountReceived: amountReceived,
		Fee:            Fee,
		FromCurrency:   from,
		ToCurrency:     to,
		Status:         StatusAwaitingPayment,
		Receiver:       receiver,
		CreatedAt:      time.Now(),
	}, nil
}

// HasReceiver reports whether a real counterpart has been matched to the transaction
func (t *Transaction) HasReceiver() bool {
	return t.ReceiverID != "" && t.ReceiverID != PendingReceiver
}
