package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// Create 通知与收件人关联在同一事务中写入
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.DB.WithContext(ctx).Omit("Parents.*", "Students.*").Create(n).Error
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint) (*model.Notification, error) {
	var n model.Notification
	err := r.DB.WithContext(ctx).Preload("Parents").Preload("Students").First(&n, id).Error
	if err != nil {
		return nil, translate(err, util.ErrNotificationNotFound)
	}
	return &n, nil
}

func (r *NotificationRepository) ListBySender(ctx context.Context, senderID uint) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.WithContext(ctx).
		Preload("Parents").Preload("Students").
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// ListForParent 发给家长本人或其孩子的通知
func (r *NotificationRepository) ListForParent(ctx context.Context, parentID uint, studentIDs []uint) ([]model.Notification, error) {
	var list []model.Notification
	q := r.DB.WithContext(ctx).Where("id IN (?)",
		r.DB.Table("notification_parents").Select("notification_id").Where("parent_id = ?", parentID))
	if len(studentIDs) > 0 {
		q = q.Or("id IN (?)",
			r.DB.Table("notification_students").Select("notification_id").Where("student_id IN ?", studentIDs))
	}
	err := q.Preload("Students").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *NotificationRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM notification_parents WHERE notification_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM notification_students WHERE notification_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Notification{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrNotificationNotFound
		}
		return nil
	})
}
