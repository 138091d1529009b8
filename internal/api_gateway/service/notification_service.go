package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
)

// NotificationServiceImpl implements the NotificationService interface
type NotificationServiceImpl struct {
	notificationRepo notification.Repository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification inbox service
func NewNotificationService(logger *slog.Logger, notificationRepo notification.Repository) NotificationService {
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListByUser retrieves a paginated list of the user's notifications
func (s *NotificationServiceImpl) ListByUser(ctx context.Context, userID string, page, perPage int) ([]*notification.Notification, int64, error) {
	offset := (page - 1) * perPage

	notifications, err := s.notificationRepo.ListByUser(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.notificationRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead marks a notification as read
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id)
}
