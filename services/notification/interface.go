package notification

import (
	"context"
	"errors"
	"time"

	"estately/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("notification belongs to another user")
)

// Dispatcher creates notifications on behalf of the booking engine.
type Dispatcher interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, title, message, link string) (*models.Notification, error)
}

// NotificationService is the read side used by the notification feed.
type NotificationService interface {
	// ListForUser returns userID's notifications, newest first. Broadcast
	// rows are included when includeBroadcast is set.
	ListForUser(ctx context.Context, userID string, includeBroadcast bool) ([]models.Notification, error)
	// MarkRead flips the read flag of a notification userID may see.
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// Enqueuer is the part of *asynq.Client the queue dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// builder fills in the fields every new notification gets.
type builder struct {
	Now   func() time.Time
	NewID func() string
}

func (b builder) build(userID string, typ models.NotificationType, title, message, link string) models.Notification {
	now, newID := b.Now, b.NewID
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return models.Notification{
		ID:        newID(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Link:      link,
		Read:      false,
		CreatedAt: now().UTC(),
	}
}

var _ NotificationService = (*DefaultNotificationService)(nil)
var _ Dispatcher = (*StoreDispatcher)(nil)
var _ Dispatcher = (*QueueDispatcher)(nil)
