package notificationRepo

import (
	"context"
	"errors"
	"fmt"

	recordsRepo "estately/database/repository/records"
	"estately/models"
)

var _ NotificationRepository = (*StoreNotificationRepo)(nil)

type StoreNotificationRepo struct {
	store recordsRepo.Store
}

func NewStoreNotificationRepo(ctx context.Context, store recordsRepo.Store) (*StoreNotificationRepo, error) {
	err := store.EnsureUniqueIndex(ctx, recordsRepo.Notifications, "id")
	if err != nil && !errors.Is(err, recordsRepo.ErrUniqueUnsupported) {
		return nil, fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return &StoreNotificationRepo{store: store}, nil
}

func (r *StoreNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.ID != "" {
		// Redelivered queue tasks carry an id that may already be stored.
		if _, err := r.GetByID(ctx, n.ID); err == nil {
			return nil
		} else if !errors.Is(err, recordsRepo.ErrNotFound) {
			return err
		}
	}

	id, err := r.store.Create(ctx, recordsRepo.Notifications, n)
	if errors.Is(err, recordsRepo.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.ID = id
	return nil
}

func (r *StoreNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.store.Get(ctx, recordsRepo.Notifications, id, &n); err != nil {
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, err)
	}
	return &n, nil
}

func (r *StoreNotificationRepo) ListForUsers(ctx context.Context, userIDs ...string) ([]models.Notification, error) {
	if len(userIDs) == 0 {
		return []models.Notification{}, nil
	}
	var list []models.Notification
	if err := r.store.List(ctx, recordsRepo.Notifications, recordsRepo.In("userId", userIDs...), &list); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

func (r *StoreNotificationRepo) MarkRead(ctx context.Context, id string) error {
	if err := r.store.Patch(ctx, recordsRepo.Notifications, id, recordsRepo.Patch{"read": true}); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return nil
}
