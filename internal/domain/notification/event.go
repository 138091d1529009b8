package notification

import (
	"time"

	"github.com/google/uuid"
)

// Event is the message published for every notification the lifecycle
// controller emits. Delivery is at-least-once; consumers must tolerate
// duplicates, which is why the event carries its own identifier.
type Event struct {
	EventID         uuid.UUID `json:"event_id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	Type            Type      `json:"type"`
	RelatedEntityID string    `json:"related_entity_id,omitempty"`
	CorrelationID   string    `json:"correlation_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewEvent builds a notification event for the given user
func NewEvent(userID, title, message string, notificationType Type, relatedEntityID, correlationID string) *Event {
	return &Event{
		EventID:         uuid.New(),
		UserID:          userID,
		Title:           title,
		Message:         message,
		Type:            notificationType,
		RelatedEntityID: relatedEntityID,
		CorrelationID:   correlationID,
		Timestamp:       time.Now(),
	}
}
