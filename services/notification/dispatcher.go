package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "estately/database/repository/notification"
	"estately/models"
	"estately/services/tasks"

	"go.uber.org/zap"
)

// StoreDispatcher persists notifications synchronously.
type StoreDispatcher struct {
	Repo   notificationRepo.NotificationRepository
	Now    func() time.Time
	NewID  func() string
	Logger *zap.Logger
}

func (d *StoreDispatcher) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message, link string) (*models.Notification, error) {
	n := builder{Now: d.Now, NewID: d.NewID}.build(userID, typ, title, message, link)
	if err := d.Persist(ctx, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Persist stores an already built notification. It is safe to call again
// with the same notification.
func (d *StoreDispatcher) Persist(ctx context.Context, n *models.Notification) error {
	if err := d.Repo.Create(ctx, n); err != nil {
		return fmt.Errorf("notify %s: %w", n.UserID, err)
	}
	if d.Logger != nil {
		d.Logger.Debug("notification stored",
			zap.String("notificationId", n.ID),
			zap.String("userId", n.UserID),
			zap.String("title", n.Title))
	}
	return nil
}

// QueueDispatcher hands notifications to the asynq worker, which persists
// them with retries.
type QueueDispatcher struct {
	Client Enqueuer
	Now    func() time.Time
	NewID  func() string
	Logger *zap.Logger
}

func (d *QueueDispatcher) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message, link string) (*models.Notification, error) {
	n := builder{Now: d.Now, NewID: d.NewID}.build(userID, typ, title, message, link)

	task, opts, err := tasks.NewNotificationTask(n)
	if err != nil {
		return nil, fmt.Errorf("notify %s: %w", userID, err)
	}
	info, err := d.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify %s: enqueue: %w", userID, err)
	}
	if d.Logger != nil {
		d.Logger.Debug("notification queued",
			zap.String("notificationId", n.ID),
			zap.String("taskId", info.ID),
			zap.String("queue", info.Queue))
	}
	return &n, nil
}
