package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"

	"gorm.io/gorm"
)

type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// Create 账户与角色资料在同一事务中写入
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.Create(account).Error, util.ErrAccountNotFound)
	})
}

func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).
		Preload("TeacherProfile").
		Preload("ParentProfile").
		First(&account, id).Error
	if err != nil {
		return nil, translate(err, util.ErrAccountNotFound)
	}
	return &account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, translate(err, util.ErrAccountNotFound)
	}
	return &account, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		return nil, translate(err, util.ErrAccountNotFound)
	}
	return &account, nil
}

func (r *AccountRepository) ListByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	var accounts []model.Account
	q := r.DB.WithContext(ctx).Where("role = ?", role).Order("id")
	switch role {
	case model.RoleTeacher:
		q = q.Preload("TeacherProfile")
	case model.RoleParent:
		q = q.Preload("ParentProfile")
	}
	err := q.Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) FindByIDs(ctx context.Context, ids []uint, role model.Role) ([]model.Account, error) {
	var accounts []model.Account
	if len(ids) == 0 {
		return accounts, nil
	}
	q := r.DB.WithContext(ctx).Where("id IN ? AND role = ?", ids, role).Order("id")
	switch role {
	case model.RoleTeacher:
		q = q.Preload("TeacherProfile")
	case model.RoleParent:
		q = q.Preload("ParentProfile")
	}
	err := q.Find(&accounts).Error
	return accounts, err
}

// Update 只更新基本信息与角色资料，密码走 UpdatePassword
func (r *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Account{}).Where("id = ?", account.ID).Updates(map[string]interface{}{
			"name":     account.Name,
			"username": account.Username,
			"email":    account.Email,
		}).Error
		if err != nil {
			return translate(err, util.ErrAccountNotFound)
		}
		if p := account.TeacherProfile; p != nil {
			p.AccountID = account.ID
			if err := tx.Where("account_id = ?", account.ID).Assign(model.TeacherProfile{Subject: p.Subject}).FirstOrCreate(p).Error; err != nil {
				return err
			}
		}
		if p := account.ParentProfile; p != nil {
			p.AccountID = account.ID
			if err := tx.Where("account_id = ?", account.ID).Assign(model.ParentProfile{Phone: p.Phone}).FirstOrCreate(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.DB.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&model.TeacherProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&model.ParentProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		// 解除家长与孩子的关联，学生档案保留
		if err := tx.Model(&model.Student{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Account{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAccountNotFound
		}
		return nil
	})
}
