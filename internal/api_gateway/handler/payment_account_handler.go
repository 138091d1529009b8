package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qudmeet/exchange-service/internal/api_gateway/service"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
)

// PaymentAccountHandler handles HTTP requests for operator payment accounts
type PaymentAccountHandler struct {
	logger         *slog.Logger
	accountService service.PaymentAccountService
}

// NewPaymentAccountHandler creates a new payment account handler
func NewPaymentAccountHandler(logger *slog.Logger, accountService service.PaymentAccountService) *PaymentAccountHandler {
	return &PaymentAccountHandler{
		logger:         logger,
		accountService: accountService,
	}
}

// Create handles POST /api/v1/admin/payment-accounts
func (h *PaymentAccountHandler) Create(c *gin.Context) {
	var req CreatePaymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), req.AccountType, req.Currency, req.AccountName, req.AccountNumber, req.BankName)
	if err != nil {
		if errors.Is(err, paymentaccount.ErrMissingFields) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create payment account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, toPaymentAccountResponse(account))
}

// List handles GET /api/v1/admin/payment-accounts
func (h *PaymentAccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list payment accounts", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]PaymentAccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, toPaymentAccountResponse(account))
	}
	RespondOK(c, responses)
}

// SetActive handles PATCH /api/v1/admin/payment-accounts/:id/active
func (h *PaymentAccountHandler) SetActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondBadRequest(c, "payment account id must be an integer")
		return
	}

	var req SetAccountActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.accountService.SetActive(c.Request.Context(), id, *req.IsActive); err != nil {
		if errors.Is(err, paymentaccount.ErrAccountNotFound{}) {
			RespondNotFound(c, "Payment account not found")
			return
		}
		h.logger.Error("Failed to update payment account", "payment_account_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}
