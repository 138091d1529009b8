package handler

import (
	"time"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
	"github.com/qudmeet/exchange-service/internal/domain/rate"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
)

// CreateTransactionRequest represents a request to create a new exchange
// transaction. It is submitted as a multipart form so a payment screenshot
// can be attached in the same request.
type CreateTransactionRequest struct {
	Amount                string `form:"amount" binding:"required"`
	Direction             string `form:"direction" binding:"required,oneof=naira-to-rupees rupees-to-naira"`
	ReceiverName          string `form:"receiver_name" binding:"required"`
	ReceiverAccountNumber string `form:"receiver_account_number" binding:"required"`
	ReceiverBankName      string `form:"receiver_bank_name" binding:"required"`
	ReceiverPhoneNumber   string `form:"receiver_phone_number" binding:"required"`
}

// UpdateStatusRequest represents an operator request to move a transaction
// through its lifecycle
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=payment_received transfer_in_progress completed failed"`
}

// AssignPaymentAccountRequest binds an operator payment account to a transaction
type AssignPaymentAccountRequest struct {
	PaymentAccountID int64 `json:"payment_account_id" binding:"required,gt=0"`
}

// MatchReceiverRequest replaces the pending receiver with a real user
type MatchReceiverRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
}

// UpsertRateRequest represents an operator request to set an exchange rate
type UpsertRateRequest struct {
	FromCurrency string `json:"from_currency" binding:"required,len=3"`
	ToCurrency   string `json:"to_currency" binding:"required,len=3"`
	Rate         string `json:"rate" binding:"required"`
}

// CreatePaymentAccountRequest registers a new operator payment account
type CreatePaymentAccountRequest struct {
	AccountType   string `json:"account_type" binding:"required"`
	Currency      string `json:"currency" binding:"required,len=3"`
	AccountName   string `json:"account_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	BankName      string `json:"bank_name"`
}

// SetAccountActiveRequest toggles a payment account's availability
type SetAccountActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	TransactionID        string `json:"transaction_id"`
	SenderID             string `json:"sender_id"`
	ReceiverID           string `json:"receiver_id"`
	AmountSent           string `json:"amount_sent"`
	AmountReceived       string `json:"amount_received"`
	Fee                  string `json:"fee"`
	FromCurrency         string `json:"from_currency"`
	ToCurrency           string `json:"to_currency"`
	Status               string `json:"status"`
	ReceiverName         string `json:"receiver_name"`
	ReceiverAccount      string `json:"receiver_account_number"`
	ReceiverBankName     string `json:"receiver_bank_name"`
	ReceiverPhoneNumber  string `json:"receiver_phone_number"`
	PaymentAccountID     *int64 `json:"payment_account_id,omitempty"`
	PaymentScreenshotURL string `json:"payment_screenshot_url,omitempty"`
	ReceiptURL           string `json:"receipt_url,omitempty"`
	CreatedAt            string `json:"created_at"`
	CompletedAt          string `json:"completed_at,omitempty"`
}

func toTransactionResponse(t *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:        t.TransactionID,
		SenderID:             t.SenderID,
		ReceiverID:           t.ReceiverID,
		AmountSent:           t.AmountSent.String(),
		AmountReceived:       t.AmountReceived.String(),
		Fee:                  t.Fee.String(),
		FromCurrency:         t.FromCurrency,
		ToCurrency:           t.ToCurrency,
		Status:               string(t.Status),
		ReceiverName:         t.Receiver.Name,
		ReceiverAccount:      t.Receiver.AccountNumber,
		ReceiverBankName:     t.Receiver.BankName,
		ReceiverPhoneNumber:  t.Receiver.PhoneNumber,
		PaymentAccountID:     t.PaymentAccountID,
		PaymentScreenshotURL: t.PaymentScreenshotURL,
		ReceiptURL:           t.ReceiptURL,
		CreatedAt:            t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		resp.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

func toTransactionResponses(transactions []*transaction.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, toTransactionResponse(t))
	}
	return responses
}

// RateResponse represents an exchange rate in API responses
type RateResponse struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	Rate         string `json:"rate"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func toRateResponse(r *rate.ExchangeRate) RateResponse {
	resp := RateResponse{
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		Rate:         r.Rate.String(),
	}
	if !r.UpdatedAt.IsZero() {
		resp.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// PaymentAccountResponse represents a payment account in API responses
type PaymentAccountResponse struct {
	ID            int64  `json:"id"`
	AccountType   string `json:"account_type"`
	Currency      string `json:"currency"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name,omitempty"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

func toPaymentAccountResponse(a *paymentaccount.PaymentAccount) PaymentAccountResponse {
	return PaymentAccountResponse{
		ID:            a.ID,
		AccountType:   a.AccountType,
		Currency:      a.Currency,
		AccountName:   a.AccountName,
		AccountNumber: a.AccountNumber,
		BankName:      a.BankName,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

// NotificationResponse represents an inbox entry in API responses
type NotificationResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	Type            string `json:"type"`
	RelatedEntityID string `json:"related_entity_id,omitempty"`
	IsRead          bool   `json:"is_read"`
	CreatedAt       string `json:"created_at"`
}

func toNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID.String(),
		Title:           n.Title,
		Message:         n.Message,
		Type:            string(n.Type),
		RelatedEntityID: n.RelatedEntityID,
		IsRead:          n.IsRead,
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
	}
}
