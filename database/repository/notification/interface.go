package notificationRepo

import (
	"context"

	"estately/models"
)

// NotificationRepository is the only writer of notification records.
type NotificationRepository interface {
	// Create stores n. Storing an id that already exists is a no-op.
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListForUsers returns the notifications addressed to any of userIDs.
	ListForUsers(ctx context.Context, userIDs ...string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
