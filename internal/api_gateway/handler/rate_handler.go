package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/qudmeet/exchange-service/internal/api_gateway/service"
	"github.com/qudmeet/exchange-service/internal/domain/rate"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
)

// RateHandler handles HTTP requests for exchange rates
type RateHandler struct {
	logger      *slog.Logger
	rateService service.RateService
}

// NewRateHandler creates a new exchange rate handler
func NewRateHandler(logger *slog.Logger, rateService service.RateService) *RateHandler {
	return &RateHandler{
		logger:      logger,
		rateService: rateService,
	}
}

// Get handles GET /api/v1/exchange-rate. The pair defaults to NGN -> INR
// when no query parameters are given.
func (h *RateHandler) Get(c *gin.Context) {
	fromCurrency := c.DefaultQuery("from", transaction.CurrencyNaira)
	toCurrency := c.DefaultQuery("to", transaction.CurrencyRupee)

	current, err := h.rateService.GetRate(c.Request.Context(), fromCurrency, toCurrency)
	if err != nil {
		switch {
		case errors.Is(err, rate.ErrUnsupportedCurrency), errors.Is(err, rate.ErrSameCurrency):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, rate.ErrRateNotFound{}):
			RespondNotFound(c, "Exchange rate not found")
		default:
			h.logger.Error("Failed to get exchange rate", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, toRateResponse(current))
}

// List handles GET /api/v1/admin/exchange-rates
func (h *RateHandler) List(c *gin.Context) {
	rates, err := h.rateService.ListRates(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list exchange rates", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]RateResponse, 0, len(rates))
	for _, r := range rates {
		responses = append(responses, toRateResponse(r))
	}
	RespondOK(c, responses)
}

// Upsert handles POST /api/v1/admin/exchange-rates
func (h *RateHandler) Upsert(c *gin.Context) {
	var req UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	value, err := decimal.NewFromString(req.Rate)
	if err != nil {
		RespondBadRequest(c, "rate must be a decimal number")
		return
	}

	updated, err := h.rateService.UpsertRate(c.Request.Context(), req.FromCurrency, req.ToCurrency, value)
	if err != nil {
		switch {
		case errors.Is(err, rate.ErrUnsupportedCurrency),
			errors.Is(err, rate.ErrSameCurrency),
			errors.Is(err, rate.ErrInvalidRate):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to upsert exchange rate", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, toRateResponse(updated))
}
