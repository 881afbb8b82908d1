package repositories

import (
	"context"

	"agro-collector/db"
	"agro-collector/entities"
)

type notificationPgRepository struct {
	db db.Database
}

func NewNotificationPgRepository(database db.Database) NotificationRepository {
	return &notificationPgRepository{db: database}
}

func (r *notificationPgRepository) CreateBatch(ctx context.Context, notifications []entities.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.GetDB().WithContext(ctx).Create(&notifications).Error
}

func (r *notificationPgRepository) GetByUserID(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entities.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.GetDB().WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var notifications []entities.Notification
	err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *notificationPgRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationPgRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
