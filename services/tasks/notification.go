package tasks

import (
	"encoding/json"
	"fmt"

	"estately/models"

	"github.com/hibiken/asynq"
)

const TypeNotificationCreate = "notification:create"

// NotificationQueue is the asynq queue notification writes are placed on.
const NotificationQueue = "notifications"

// NewNotificationTask wraps a fully built notification. The id and createdAt
// are fixed here so a retried task stores the same record.
func NewNotificationTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationCreate, b)
	opts := []asynq.Option{
		asynq.Queue(NotificationQueue),
		asynq.MaxRetry(5),
		asynq.TaskID(n.ID),
	}
	return task, opts, nil
}

// ParseNotificationTask decodes the notification carried by task.
func ParseNotificationTask(task *asynq.Task) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid %s payload: %w", TypeNotificationCreate, err)
	}
	if n.ID == "" || n.UserID == "" {
		return n, fmt.Errorf("invalid %s payload: missing id or userId", TypeNotificationCreate)
	}
	return n, nil
}
