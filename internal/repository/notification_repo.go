package repository

import (
	"context"

	"dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	// ListUnseen returns the recipient's unseen notifications, newest first.
	ListUnseen(ctx context.Context, recipient string) ([]model.Notification, error)
	CountUnseen(ctx context.Context, recipient string) (int64, error)
	// MarkSeen flips seen to true only while it is still false and reports whether it did.
	MarkSeen(ctx context.Context, id uuid.UUID) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var n model.Notification
	if err := GetDB(ctx, r.db).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListUnseen(ctx context.Context, recipient string) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := GetDB(ctx, r.db).
		Where("recipient = ? AND seen = ?", recipient, false).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnseen(ctx context.Context, recipient string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("recipient = ? AND seen = ?", recipient, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkSeen(ctx context.Context, id uuid.UUID) (bool, error) {
	result := GetDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("id = ? AND seen = ?", id, false).
		Update("seen", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
