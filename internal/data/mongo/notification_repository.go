// Package mongo provides MongoDB implementations of the domain repositories
// that back the in-app notification inbox.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qudmeet/exchange-service/internal/domain/notification"
)

const (
	// NotificationCollectionName is the name of the notification collection in MongoDB
	NotificationCollectionName = "notifications"
)

// NotificationRepository implements the notification.Repository interface for MongoDB
type NotificationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewNotificationRepository creates a new MongoDB notification repository
func NewNotificationRepository(logger *slog.Logger, db *mongo.Database) notification.Repository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new notification after checking for duplicates. The event
// identifier doubles as the document id, so redelivered broker messages
// surface as ErrDuplicateNotification and are safe to acknowledge.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	collection := r.db.Collection(NotificationCollectionName)

	existing, err := r.GetByID(ctx, n.ID)
	if err != nil && !errors.Is(err, notification.ErrNotificationNotFound{}) {
		r.logger.Error("Failed to check for existing notification",
			"notification_id", n.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing notification: %w", err)
	}

	if existing != nil {
		return notification.ErrDuplicateNotification{ID: n.ID}
	}

	_, err = collection.InsertOne(ctx, n)
	if err != nil {
		r.logger.Error("Failed to create notification",
			"notification_id", n.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by its identifier.
// Returns ErrNotificationNotFound if no document exists.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"_id": id}
	var n notification.Notification
	err := collection.FindOne(ctx, filter).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notification.ErrNotificationNotFound{ID: id}
		}
		r.logger.Error("Failed to get notification",
			"notification_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

// ListByUser retrieves paginated notifications for a user.
// Results are sorted by creation time in descending order (newest first).
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*notification.Notification, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list notifications",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []*notification.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		r.logger.Error("Failed to decode notifications",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}

	return notifications, nil
}

// CountByUser counts the total number of notifications for a user
func (r *NotificationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"user_id": userID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count notifications",
			"user_id", userID,
			"error", err)
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks a notification as read.
// Returns ErrNotificationNotFound if the notification doesn't exist.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"is_read": true,
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to mark notification as read",
			"notification_id", id.String(),
			"error", err)
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	if result.MatchedCount == 0 {
		return notification.ErrNotificationNotFound{ID: id}
	}

	return nil
}
