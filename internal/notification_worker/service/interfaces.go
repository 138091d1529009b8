package service

import (
	"context"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
)

// DispatchService delivers a notification event to its targets: the user's
// in-app inbox and, for event types that warrant one, an email.
type DispatchService interface {
	DispatchEvent(ctx context.Context, event *notification.Event) error
}
