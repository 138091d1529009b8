// Package consumer adapts broker messages into notification dispatches.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
	"github.com/qudmeet/exchange-service/internal/notification_worker/service"
	"github.com/qudmeet/exchange-service/internal/platform/messaging/producers"
)

// NotificationEventHandler handles incoming notification event messages from Kafka
type NotificationEventHandler struct {
	dispatchService service.DispatchService
	producer        producers.DeadLetterPublisher
	logger          *slog.Logger
}

// NewNotificationEventHandler creates a new handler
func NewNotificationEventHandler(
	logger *slog.Logger,
	dispatchService service.DispatchService,
	producer producers.DeadLetterPublisher,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		dispatchService: dispatchService,
		producer:        producer,
		logger:          logger,
	}
}

// HandleMessage processes Kafka messages
func (h *NotificationEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event notification.Event
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal notification event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received notification event for dispatch",
		"event_id", event.EventID.String(),
		"user_id", event.UserID,
		"type", string(event.Type),
	)

	if err := h.dispatchService.DispatchEvent(ctx, &event); err != nil {
		logger.Error("Failed to dispatch notification event",
			"event_id", event.EventID.String(),
			"user_id", event.UserID,
			"error", err,
		)
		return fmt.Errorf("dispatching notification event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully dispatched notification event", "event_id", event.EventID.String())
	return nil // Success, commit offset
}
