package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"

	notificationRepo "estately/database/repository/notification"
	recordsRepo "estately/database/repository/records"
	"estately/models"
)

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo notificationRepo.NotificationRepository
}

func (s *DefaultNotificationService) ListForUser(ctx context.Context, userID string, includeBroadcast bool) ([]models.Notification, error) {
	ids := []string{userID}
	if includeBroadcast {
		ids = append(ids, models.BroadcastUserID)
	}
	list, err := s.Repo.ListForUsers(ctx, ids...)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.Repo.GetByID(ctx, notificationID)
	if errors.Is(err, recordsRepo.ErrNotFound) {
		return fmt.Errorf("%s: %w", notificationID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if n.UserID != userID && n.UserID != models.BroadcastUserID {
		return fmt.Errorf("%s: %w", notificationID, ErrForbidden)
	}
	if n.Read {
		return nil
	}
	return s.Repo.MarkRead(ctx, notificationID)
}
