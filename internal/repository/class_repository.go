package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(ctx context.Context, class *model.Class) error {
	return r.DB.WithContext(ctx).Create(class).Error
}

func (r *ClassRepository) FindByID(ctx context.Context, id uint) (*model.Class, error) {
	var class model.Class
	if err := r.DB.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, translate(err, util.ErrClassNotFound)
	}
	return &class, nil
}

func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("id").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListByIDs(ctx context.Context, ids []uint) ([]model.Class, error) {
	var classes []model.Class
	if len(ids) == 0 {
		return classes, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) Update(ctx context.Context, class *model.Class) error {
	return r.DB.WithContext(ctx).Model(class).Update("class_name", class.ClassName).Error
}

// Delete 班级下仍有科目或学生时拒绝删除
func (r *ClassRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Subject{}).Where("class_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return util.ErrClassInUse
		}
		if err := tx.Model(&model.Student{}).Where("class_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return util.ErrClassInUse
		}
		res := tx.Delete(&model.Class{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrClassNotFound
		}
		return nil
	})
}
