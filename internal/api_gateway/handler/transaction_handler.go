// Package handler contains the HTTP handlers of the API gateway. Handlers
// validate and decode requests, delegate to the service layer, and map
// domain errors onto HTTP status codes.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qudmeet/exchange-service/internal/api_gateway/middleware"
	"github.com/qudmeet/exchange-service/internal/api_gateway/service"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
)

// maxProofSize bounds uploaded payment screenshots to 5 MiB
const maxProofSize = 5 << 20

// TransactionHandler handles HTTP requests for exchange transactions
type TransactionHandler struct {
	logger             *slog.Logger
	transactionService service.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		logger:             logger,
		transactionService: transactionService,
	}
}

// Create handles POST /api/v1/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondBadRequest(c, "amount must be a decimal number")
		return
	}

	proof, err := h.readProof(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	receiver := transaction.ReceiverInfo{
		Name:          req.ReceiverName,
		AccountNumber: req.ReceiverAccountNumber,
		BankName:      req.ReceiverBankName,
		PhoneNumber:   req.ReceiverPhoneNumber,
	}

	t, err := h.transactionService.Create(
		c.Request.Context(),
		middleware.GetUserID(c),
		amount,
		transaction.Direction(req.Direction),
		receiver,
		proof,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrInvalidAmount),
			errors.Is(err, transaction.ErrInvalidDirection),
			errors.Is(err, transaction.ErrMissingReceiverInfo),
			errors.Is(err, transaction.ErrNegativeSettlement):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create transaction", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, toTransactionResponse(t))
}

// GetByID handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transactionID := c.Param("id")

	t, err := h.transactionService.GetByID(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "transaction_id", transactionID, "error", err)
		RespondInternalError(c)
		return
	}

	// Senders may only read their own transactions; operators may read any
	if middleware.GetUserID(c) != t.SenderID && !isOperator(c) && middleware.GetUserID(c) != t.ReceiverID {
		RespondForbidden(c, "")
		return
	}

	RespondOK(c, toTransactionResponse(t))
}

// ListMine handles GET /api/v1/transactions
func (h *TransactionHandler) ListMine(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	transactions, total, err := h.transactionService.ListBySender(c.Request.Context(), middleware.GetUserID(c), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, toTransactionResponses(transactions), params.Page, params.PerPage, int(total))
}

// ListAll handles GET /api/v1/admin/transactions
func (h *TransactionHandler) ListAll(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	transactions, total, err := h.transactionService.List(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list all transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, toTransactionResponses(transactions), params.Page, params.PerPage, int(total))
}

// UpdateStatus handles PATCH /api/v1/admin/transactions/:id/status
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	transactionID := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	t, err := h.transactionService.Transition(c.Request.Context(), transactionID, transaction.Status(req.Status), middleware.GetCorrelationID(c))
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound{}):
			RespondNotFound(c, "Transaction not found")
		case errors.Is(err, transaction.ErrInvalidTransition{}):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to update transaction status", "transaction_id", transactionID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, toTransactionResponse(t))
}

// AssignPaymentAccount handles POST /api/v1/admin/transactions/:id/payment-account
func (h *TransactionHandler) AssignPaymentAccount(c *gin.Context) {
	transactionID := c.Param("id")

	var req AssignPaymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	err := h.transactionService.AssignPaymentAccount(c.Request.Context(), transactionID, req.PaymentAccountID, middleware.GetCorrelationID(c))
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound{}):
			RespondNotFound(c, "Transaction not found")
		case errors.Is(err, paymentaccount.ErrAccountNotFound{}):
			RespondNotFound(c, "Payment account not found")
		case errors.Is(err, paymentaccount.ErrAccountInactive{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, paymentaccount.ErrCurrencyMismatch{}):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to assign payment account", "transaction_id", transactionID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, gin.H{"message": "Payment account assigned successfully"})
}

// MatchReceiver handles POST /api/v1/admin/transactions/:id/receiver
func (h *TransactionHandler) MatchReceiver(c *gin.Context) {
	transactionID := c.Param("id")

	var req MatchReceiverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	err := h.transactionService.MatchReceiver(c.Request.Context(), transactionID, req.ReceiverID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to match receiver", "transaction_id", transactionID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"message": "Receiver matched successfully"})
}

// readProof extracts the optional payment screenshot from the multipart form
func (h *TransactionHandler) readProof(c *gin.Context) (*service.PaymentProof, error) {
	fileHeader, err := c.FormFile("payment_screenshot")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	if fileHeader.Size > maxProofSize {
		return nil, errors.New("payment screenshot exceeds the 5MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProofSize))
	if err != nil {
		return nil, err
	}

	return &service.PaymentProof{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func isOperator(c *gin.Context) bool {
	role, exists := c.Get(middleware.RoleKey)
	if !exists {
		return false
	}
	roleStr, ok := role.(string)
	return ok && roleStr == middleware.RoleOperator
}
