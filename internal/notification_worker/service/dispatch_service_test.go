package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/domain/user"
	"github.com/qudmeet/exchange-service/internal/notification_worker/email"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to string, content email.Content) error {
	args := m.Called(ctx, to, content)
	return args.Error(0)
}

func sampleEvent() *notification.Event {
	return notification.NewEvent(
		"user-1",
		"Payment Received",
		"We have received your payment of 1000 NGN. We are processing your transaction now.",
		notification.TypePaymentReceived,
		"TX12345678",
		"corr-1",
	)
}

func sampleRecipient() *user.User {
	return &user.User{
		ID:       "user-1",
		Name:     "Chidi Okafor",
		Email:    "chidi@example.com",
		Country:  "Nigeria",
		Currency: "NGN",
	}
}

func TestDispatchService_DispatchEvent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	t.Run("StoresNotificationAndSendsEmail", func(t *testing.T) {
		mockNotificationRepo := new(MockNotificationRepository)
		mockUserRepo := new(MockUserRepository)
		mockSender := new(MockEmailSender)
		svc := NewDispatchService(logger, mockNotificationRepo, mockUserRepo, mockSender)

		event := sampleEvent()
		mockNotificationRepo.On("Create", ctx, mock.MatchedBy(func(n *notification.Notification) bool {
			return n.ID == event.EventID && n.UserID == "user-1" && !n.IsRead
		})).Return(nil).Once()
		mockUserRepo.On("GetByID", ctx, "user-1").Return(sampleRecipient(), nil).Once()
		mockSender.On("Send", ctx, "chidi@example.com", mock.MatchedBy(func(c email.Content) bool {
			return c.Subject == "Payment Received - Pay.Qudmeet"
		})).Return(nil).Once()

		err := svc.DispatchEvent(ctx, event)

		assert.NoError(t, err)
		mockNotificationRepo.AssertExpectations(t)
		mockUserRepo.AssertExpectations(t)
		mockSender.AssertExpectations(t)
	})

	t.Run("DuplicateEventSkipsEntireDispatch", func(t *testing.T) {
		mockNotificationRepo := new(MockNotificationRepository)
		mockUserRepo := new(MockUserRepository)
		mockSender := new(MockEmailSender)
		svc := NewDispatchService(logger, mockNotificationRepo, mockUserRepo, mockSender)

		event := sampleEvent()
		mockNotificationRepo.On("Create", ctx, mock.Anything).
			Return(notification.ErrDuplicateNotification{ID: event.EventID}).Once()

		err := svc.DispatchEvent(ctx, event)

		assert.NoError(t, err, "a redelivered event must be acknowledged, not retried")
		mockUserRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreFailurePropagates", func(t *testing.T) {
		mockNotificationRepo := new(MockNotificationRepository)
		mockUserRepo := new(MockUserRepository)
		mockSender := new(MockEmailSender)
		svc := NewDispatchService(logger, mockNotificationRepo, mockUserRepo, mockSender)

		dbErr := errors.New("mongo down")
		mockNotificationRepo.On("Create", ctx, mock.Anything).Return(dbErr).Once()

		err := svc.DispatchEvent(ctx, sampleEvent())

		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InAppOnlyTypeSkipsEmail", func(t *testing.T) {
		mockNotificationRepo := new(MockNotificationRepository)
		mockUserRepo := new(MockUserRepository)
		mockSender := new(MockEmailSender)
		svc := NewDispatchService(logger, mockNotificationRepo, mockUserRepo, mockSender)

		event := sampleEvent()
		event.Type = notification.TypeTransactionFailed
		mockNotificationRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		err := svc.DispatchEvent(ctx, event)

		assert.NoError(t, err)
		mockUserRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingRecipientSkipsEmail", func(t *testing.T) {
		mockNotificationRepo := new(MockNotificationRepository)
		mockUserRepo := new(MockUserRepository)
		mockSender := new(MockEmailSender)
		svc := NewDispatchService(logger, mockNotificationRepo, mockUserRepo, mockSender)

		mockNotificationRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		mockUserRepo.On("GetByID", ctx, "user-1").Return(nil, user.ErrUserNotFound{ID: "user-1"}).Once()

		err := svc.DispatchEvent(ctx, sampleEvent())

		assert.NoError(t, err)
		mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmailFailureDoesNotFailDispatch", func(t *testing.T) {
		mockNotificationRepo := new(MockNotificationRepository)
		mockUserRepo := new(MockUserRepository)
		mockSender := new(MockEmailSender)
		svc := NewDispatchService(logger, mockNotificationRepo, mockUserRepo, mockSender)

		mockNotificationRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		mockUserRepo.On("GetByID", ctx, "user-1").Return(sampleRecipient(), nil).Once()
		mockSender.On("Send", ctx, "chidi@example.com", mock.Anything).Return(errors.New("smtp timeout")).Once()

		err := svc.DispatchEvent(ctx, sampleEvent())

		assert.NoError(t, err, "the inbox entry is the source of truth; email delivery is best effort")
		mockSender.AssertExpectations(t)
	})
}
