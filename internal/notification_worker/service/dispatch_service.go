// Package service contains the notification worker's dispatch pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/domain/user"
	"github.com/qudmeet/exchange-service/internal/notification_worker/email"
)

// DispatchServiceImpl implements the DispatchService interface
type DispatchServiceImpl struct {
	notificationRepo notification.Repository
	userRepo         user.Repository
	emailSender      email.Sender
	logger           *slog.Logger
}

// NewDispatchService creates a new notification dispatch service
func NewDispatchService(
	logger *slog.Logger,
	notificationRepo notification.Repository,
	userRepo user.Repository,
	emailSender email.Sender,
) DispatchService {
	return &DispatchServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emailSender:      emailSender,
		logger:           logger,
	}
}

// DispatchEvent stores the in-app inbox entry and sends the accompanying
// email. Delivery is at-least-once: a duplicate event means a previous
// delivery already succeeded and the whole dispatch is skipped, so redelivered
// broker messages never email the user twice. Email failures are logged but
// never fail the dispatch; the inbox entry is the source of truth.
func (s *DispatchServiceImpl) DispatchEvent(ctx context.Context, event *notification.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	err := s.notificationRepo.Create(ctx, notification.FromEvent(event))
	if err != nil {
		if errors.Is(err, notification.ErrDuplicateNotification{}) {
			logger.Info("Notification already dispatched, skipping",
				"event_id", event.EventID.String(),
				"user_id", event.UserID,
			)
			return nil
		}
		return fmt.Errorf("failed to store notification %s: %w", event.EventID.String(), err)
	}

	logger.Info("Notification stored",
		"event_id", event.EventID.String(),
		"user_id", event.UserID,
		"type", string(event.Type),
	)

	s.sendEmail(ctx, logger, event)
	return nil
}

func (s *DispatchServiceImpl) sendEmail(ctx context.Context, logger *slog.Logger, event *notification.Event) {
	emailType, ok := email.TypeForNotification(event.Type)
	if !ok {
		return
	}

	recipient, err := s.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound{}) {
			logger.Warn("No profile for notification recipient, skipping email",
				"event_id", event.EventID.String(),
				"user_id", event.UserID,
			)
			return
		}
		logger.Error("Failed to load notification recipient",
			"event_id", event.EventID.String(),
			"user_id", event.UserID,
			"error", err,
		)
		return
	}

	content, err := email.Render(emailType, email.Data{
		Name:          recipient.Name,
		TransactionID: event.RelatedEntityID,
		Message:       event.Message,
	})
	if err != nil {
		logger.Error("Failed to render email",
			"event_id", event.EventID.String(),
			"email_type", string(emailType),
			"error", err,
		)
		return
	}

	if err := s.emailSender.Send(ctx, recipient.Email, content); err != nil {
		logger.Error("Failed to send email",
			"event_id", event.EventID.String(),
			"user_id", event.UserID,
			"error", err,
		)
	}
}
