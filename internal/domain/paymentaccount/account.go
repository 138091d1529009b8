package paymentaccount

import (
	"errors"
	"strconv"
	"time"
)

// Common errors
var (
	ErrMissingFields = errors.New("account type, currency, account name and account number are required")
)

// PaymentAccount is an operator-owned destination (bank, mobile money or UPI)
// that senders are instructed to remit funds to.
type PaymentAccount struct {
	ID            int64     `json:"id"`
	AccountType   string    `json:"account_type"`
	Currency      string    `json:"currency"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// New validates the required fields and builds an active payment account
func New(accountType, currency, accountName, accountNumber, bankName string) (*PaymentAccount, error) {
	if accountType == "" || currency == "" || accountName == "" || accountNumber == "" {
		return nil, ErrMissingFields
	}
	return &PaymentAccount{
		AccountType:   accountType,
		Currency:      currency,
		AccountName:   accountName,
		AccountNumber: accountNumber,
		BankName:      bankName,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}, nil
}

// ErrAccountNotFound indicates a missing payment account
type ErrAccountNotFound struct {
	ID int64
}

func (e ErrAccountNotFound) Error() string {
	return "payment account not found: " + strconv.FormatInt(e.ID, 10)
}

// Is implements errors.Is; a zero-valued target matches any ErrAccountNotFound.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.ID == 0 || e.ID == t.ID
}

// ErrAccountInactive indicates an assignment attempt against a deactivated account
type ErrAccountInactive struct {
	ID int64
}

func (e ErrAccountInactive) Error() string {
	return "payment account is inactive: " + strconv.FormatInt(e.ID, 10)
}

// Is implements errors.Is; a zero-valued target matches any ErrAccountInactive.
func (e ErrAccountInactive) Is(target error) bool {
	t, ok := target.(ErrAccountInactive)
	if !ok {
		return false
	}
	return t.ID == 0 || e.ID == t.ID
}

// ErrCurrencyMismatch indicates the account currency does not match the
// transaction's from currency.
type ErrCurrencyMismatch struct {
	AccountCurrency     string
	TransactionCurrency string
}

func (e ErrCurrencyMismatch) Error() string {
	return "payment account currency (" + e.AccountCurrency + ") does not match transaction currency (" + e.TransactionCurrency + ")"
}

// Is implements errors.Is; a zero-valued target matches any ErrCurrencyMismatch.
func (e ErrCurrencyMismatch) Is(target error) bool {
	t, ok := target.(ErrCurrencyMismatch)
	if !ok {
		return false
	}
	if t.AccountCurrency == "" && t.TransactionCurrency == "" {
		return true
	}
	return e.AccountCurrency == t.AccountCurrency && e.TransactionCurrency == t.TransactionCurrency
}
