package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qudmeet/exchange-service/internal/api_gateway/middleware"
	"github.com/qudmeet/exchange-service/internal/api_gateway/service"
	"github.com/qudmeet/exchange-service/internal/domain/paymentaccount"
	"github.com/qudmeet/exchange-service/internal/domain/transaction"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, senderID string, amountSent decimal.Decimal, direction transaction.Direction, receiver transaction.ReceiverInfo, proof *service.PaymentProof, correlationID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, senderID, amountSent, direction, receiver, proof, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetByID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListBySender(ctx context.Context, senderID string, page, perPage int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, senderID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) Transition(ctx context.Context, transactionID string, target transaction.Status, correlationID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, transactionID, target, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) AssignPaymentAccount(ctx context.Context, transactionID string, paymentAccountID int64, correlationID string) error {
	args := m.Called(ctx, transactionID, paymentAccountID, correlationID)
	return args.Error(0)
}

func (m *MockTransactionService) MatchReceiver(ctx context.Context, transactionID string, receiverID string) error {
	args := m.Called(ctx, transactionID, receiverID)
	return args.Error(0)
}

func transactionTestRouter(h *TransactionHandler, userID, role string) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		if role != "" {
			c.Set(middleware.RoleKey, role)
		}
		c.Next()
	})
	router.POST("/transactions", h.Create)
	router.GET("/transactions", h.ListMine)
	router.GET("/transactions/:id", h.GetByID)
	router.PATCH("/admin/transactions/:id/status", h.UpdateStatus)
	router.POST("/admin/transactions/:id/payment-account", h.AssignPaymentAccount)
	router.POST("/admin/transactions/:id/receiver", h.MatchReceiver)
	return router
}

func sampleHandlerTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		ID:             1,
		TransactionID:  "TX12345678",
		SenderID:       "user-1",
		ReceiverID:     transaction.PendingReceiver,
		AmountSent:     decimal.NewFromInt(1000),
		AmountReceived: decimal.NewFromInt(290),
		Fee:            transaction.Fee,
		FromCurrency:   transaction.CurrencyNaira,
		ToCurrency:     transaction.CurrencyRupee,
		Status:         transaction.StatusAwaitingPayment,
		Receiver: transaction.ReceiverInfo{
			Name:          "Aisha Bello",
			AccountNumber: "0123456789",
			BankName:      "GTBank",
			PhoneNumber:   "+2348012345678",
		},
		CreatedAt: time.Now(),
	}
}

// newCreateRequest builds the multipart form the web client submits,
// optionally attaching a payment screenshot.
func newCreateRequest(t *testing.T, fields map[string]string, withProof bool) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if withProof {
		part, err := writer.CreateFormFile("payment_screenshot", "proof.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake png bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/transactions", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validCreateFields() map[string]string {
	return map[string]string{
		"amount":                  "1000",
		"direction":               "naira-to-rupees",
		"receiver_name":           "Aisha Bello",
		"receiver_account_number": "0123456789",
		"receiver_bank_name":      "GTBank",
		"receiver_phone_number":   "+2348012345678",
	}
}

func TestTransactionHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		mockService.On("Create",
			mock.Anything,
			"user-1",
			mock.MatchedBy(func(amount decimal.Decimal) bool { return amount.Equal(decimal.NewFromInt(1000)) }),
			transaction.DirectionNairaToRupees,
			mock.MatchedBy(func(r transaction.ReceiverInfo) bool { return r.Complete() && r.Name == "Aisha Bello" }),
			mock.MatchedBy(func(p *service.PaymentProof) bool { return p == nil }),
			mock.Anything,
		).Return(sampleHandlerTransaction(), nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, validCreateFields(), false))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		data, ok := response["data"].(map[string]interface{})
		require.True(t, ok, "'data' field should be a map")
		assert.Equal(t, "TX12345678", data["transaction_id"])
		assert.Equal(t, "awaiting_payment", data["status"])
		assert.Equal(t, "290", data["amount_received"])

		mockService.AssertExpectations(t)
	})

	t.Run("WithPaymentProof", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		created := sampleHandlerTransaction()
		created.Status = transaction.StatusPaymentReceived
		created.PaymentScreenshotURL = "http://localhost:8080/blobs/proof.png"

		mockService.On("Create",
			mock.Anything, "user-1", mock.Anything, transaction.DirectionNairaToRupees, mock.Anything,
			mock.MatchedBy(func(p *service.PaymentProof) bool {
				return p != nil && p.Filename == "proof.png" && len(p.Data) > 0
			}),
			mock.Anything,
		).Return(created, nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, validCreateFields(), true))

		assert.Equal(t, http.StatusCreated, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "payment_received", data["status"])
		assert.Equal(t, "http://localhost:8080/blobs/proof.png", data["payment_screenshot_url"])

		mockService.AssertExpectations(t)
	})

	t.Run("MissingReceiverFields", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		fields := validCreateFields()
		delete(fields, "receiver_name")

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, fields, false))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonNumericAmount", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		fields := validCreateFields()
		fields["amount"] = "a lot"

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, fields, false))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "amount must be a decimal number")
	})

	t.Run("UnknownDirection", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		fields := validCreateFields()
		fields["direction"] = "naira-to-dollars"

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, fields, false))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("SettlementNotPositive", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		mockService.On("Create", mock.Anything, "user-1", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, transaction.ErrNegativeSettlement).Once()

		fields := validCreateFields()
		fields["amount"] = "10"

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, fields, false))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		mockService.On("Create", mock.Anything, "user-1", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db down")).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newCreateRequest(t, validCreateFields(), false))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("SenderReadsOwnTransaction", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		mockService.On("GetByID", mock.Anything, "TX12345678").Return(sampleHandlerTransaction(), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions/TX12345678", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "TX12345678")
		mockService.AssertExpectations(t)
	})

	t.Run("StrangerIsForbidden", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-2", "")

		mockService.On("GetByID", mock.Anything, "TX12345678").Return(sampleHandlerTransaction(), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions/TX12345678", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("OperatorReadsAnyTransaction", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("GetByID", mock.Anything, "TX12345678").Return(sampleHandlerTransaction(), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions/TX12345678", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MatchedReceiverReadsTransaction", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-9", "")

		matched := sampleHandlerTransaction()
		matched.ReceiverID = "user-9"
		mockService.On("GetByID", mock.Anything, "TX12345678").Return(matched, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions/TX12345678", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		mockService.On("GetByID", mock.Anything, "TXMISSING0").
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: "TXMISSING0"}).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions/TXMISSING0", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_ListMine(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		transactions := []*transaction.Transaction{sampleHandlerTransaction()}
		mockService.On("ListBySender", mock.Anything, "user-1", 2, 10).Return(transactions, int64(11), nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/transactions?page=2&per_page=10", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		meta, ok := response["meta"].(map[string]interface{})
		require.True(t, ok, "'meta' field should be a map")
		assert.Equal(t, float64(2), meta["page"])
		assert.Equal(t, float64(11), meta["total_items"])
		assert.Equal(t, float64(2), meta["total_pages"])

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "user-1", "")

		req, _ := http.NewRequest(http.MethodGet, "/transactions?page=0", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListBySender", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_UpdateStatus(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	patchStatus := func(router *gin.Engine, id, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPatch, "/admin/transactions/"+id+"/status", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		updated := sampleHandlerTransaction()
		updated.Status = transaction.StatusPaymentReceived
		mockService.On("Transition", mock.Anything, "TX12345678", transaction.StatusPaymentReceived, mock.Anything).
			Return(updated, nil).Once()

		rr := patchStatus(router, "TX12345678", `{"status":"payment_received"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "payment_received")
		mockService.AssertExpectations(t)
	})

	t.Run("UnknownStatusRejectedByBinding", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		rr := patchStatus(router, "TX12345678", `{"status":"refunded"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("Transition", mock.Anything, "TX12345678", transaction.StatusCompleted, mock.Anything).
			Return(nil, transaction.ErrInvalidTransition{From: transaction.StatusAwaitingPayment, To: transaction.StatusCompleted}).Once()

		rr := patchStatus(router, "TX12345678", `{"status":"completed"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "CONFLICT")
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("Transition", mock.Anything, "TXMISSING0", transaction.StatusPaymentReceived, mock.Anything).
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: "TXMISSING0"}).Once()

		rr := patchStatus(router, "TXMISSING0", `{"status":"payment_received"}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_AssignPaymentAccount(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	assignAccount := func(router *gin.Engine, id, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/admin/transactions/"+id+"/payment-account", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("AssignPaymentAccount", mock.Anything, "TX12345678", int64(4), mock.Anything).Return(nil).Once()

		rr := assignAccount(router, "TX12345678", `{"payment_account_id":4}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Payment account assigned successfully")
		mockService.AssertExpectations(t)
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("AssignPaymentAccount", mock.Anything, "TX12345678", int64(4), mock.Anything).
			Return(paymentaccount.ErrAccountInactive{ID: 4}).Once()

		rr := assignAccount(router, "TX12345678", `{"payment_account_id":4}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("CurrencyMismatch", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("AssignPaymentAccount", mock.Anything, "TX12345678", int64(4), mock.Anything).
			Return(paymentaccount.ErrCurrencyMismatch{AccountCurrency: "INR", TransactionCurrency: "NGN"}).Once()

		rr := assignAccount(router, "TX12345678", `{"payment_account_id":4}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingAccountID", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		rr := assignAccount(router, "TX12345678", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "AssignPaymentAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_MatchReceiver(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		mockService.On("MatchReceiver", mock.Anything, "TX12345678", "user-9").Return(nil).Once()

		req, _ := http.NewRequest(http.MethodPost, "/admin/transactions/TX12345678/receiver", bytes.NewBufferString(`{"receiver_id":"user-9"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("EmptyReceiver", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)
		router := transactionTestRouter(handler, "admin-1", middleware.RoleOperator)

		req, _ := http.NewRequest(http.MethodPost, "/admin/transactions/TX12345678/receiver", bytes.NewBufferString(`{"receiver_id":""}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "MatchReceiver", mock.Anything, mock.Anything, mock.Anything)
	})
}
