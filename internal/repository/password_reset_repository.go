package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"

	"gorm.io/gorm"
)

type PasswordResetRepository struct {
	DB *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{DB: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, t *model.PasswordResetToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// Consume 查找并删除令牌；并发请求中只有一个能成功取到
func (r *PasswordResetRepository) Consume(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", token).First(&t).Error; err != nil {
			return translate(err, util.ErrTokenInvalid)
		}
		res := tx.Delete(&model.PasswordResetToken{}, t.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrTokenInvalid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PasswordResetRepository) DeleteByAccount(ctx context.Context, accountID uint) error {
	return r.DB.WithContext(ctx).Where("account_id = ?", accountID).Delete(&model.PasswordResetToken{}).Error
}
