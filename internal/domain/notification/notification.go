package notification

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes notifications; it also drives email template selection
type Type string

const (
	TypePaymentReceived        Type = "payment_received"
	TypePaymentSent            Type = "payment_sent"
	TypeTransactionCompleted   Type = "transaction_completed"
	TypeTransactionFailed      Type = "transaction_failed"
	TypeReceiptReady           Type = "receipt_ready"
	TypePaymentAccountAssigned Type = "payment_account_assigned"
)

// Notification is one entry of a user's notification inbox
type Notification struct {
	ID              uuid.UUID `json:"id" bson:"_id"`
	UserID          string    `json:"user_id" bson:"user_id"`
	Title           string    `json:"title" bson:"title"`
	Message         string    `json:"message" bson:"message"`
	Type            Type      `json:"type" bson:"type"`
	RelatedEntityID string    `json:"related_entity_id,omitempty" bson:"related_entity_id,omitempty"`
	IsRead          bool      `json:"is_read" bson:"is_read"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

// FromEvent builds an unread inbox entry from a dispatched event
func FromEvent(event *Event) *Notification {
	return &Notification{
		ID:              event.EventID,
		UserID:          event.UserID,
		Title:           event.Title,
		Message:         event.Message,
		Type:            event.Type,
		RelatedEntityID: event.RelatedEntityID,
		IsRead:          false,
		CreatedAt:       event.Timestamp,
	}
}
