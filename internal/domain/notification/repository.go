package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages the notification inbox
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// ErrNotificationNotFound indicates a missing inbox entry
type ErrNotificationNotFound struct {
	ID uuid.UUID
}

func (e ErrNotificationNotFound) Error() string {
	return "notification not found: " + e.ID.String()
}

// Is implements errors.Is; a target with a nil ID matches any ErrNotificationNotFound.
func (e ErrNotificationNotFound) Is(target error) bool {
	t, ok := target.(ErrNotificationNotFound)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrDuplicateNotification indicates the event was already dispatched once
type ErrDuplicateNotification struct {
	ID uuid.UUID
}

func (e ErrDuplicateNotification) Error() string {
	return "duplicate notification: " + e.ID.String()
}

// Is implements errors.Is; a target with a nil ID matches any ErrDuplicateNotification.
func (e ErrDuplicateNotification) Is(target error) bool {
	t, ok := target.(ErrDuplicateNotification)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
