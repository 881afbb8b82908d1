package usecases

import (
	"context"
	"errors"

	"agro-collector/entities"
	"agro-collector/repositories"
)

const maxNotificationPage = 200

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationUseCase struct {
	repo repositories.NotificationRepository
}

func NewNotificationUseCase(r repositories.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: r}
}

// ListForUser returns the newest notifications of a user. limit <= 0 uses the repository default.
func (uc *NotificationUseCase) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entities.Notification, error) {
	if userID == "" {
		return nil, errors.New("user_id required")
	}
	if limit > maxNotificationPage {
		limit = maxNotificationPage
	}
	return uc.repo.GetByUserID(ctx, userID, unreadOnly, limit)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("notification id required")
	}
	err := uc.repo.MarkRead(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, errors.New("user_id required")
	}
	return uc.repo.MarkAllRead(ctx, userID)
}
