package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"

	"gorm.io/gorm"
)

type LearningMaterialRepository struct {
	DB *gorm.DB
}

func NewLearningMaterialRepository(db *gorm.DB) *LearningMaterialRepository {
	return &LearningMaterialRepository{DB: db}
}

func (r *LearningMaterialRepository) Create(ctx context.Context, m *model.LearningMaterial) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *LearningMaterialRepository) FindByID(ctx context.Context, id uint) (*model.LearningMaterial, error) {
	var m model.LearningMaterial
	if err := r.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, util.ErrMaterialNotFound)
	}
	return &m, nil
}

func (r *LearningMaterialRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]model.LearningMaterial, error) {
	var list []model.LearningMaterial
	err := r.DB.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("upload_date DESC").Find(&list).Error
	return list, err
}

func (r *LearningMaterialRepository) ListBySubjects(ctx context.Context, subjectIDs []uint) ([]model.LearningMaterial, error) {
	var list []model.LearningMaterial
	if len(subjectIDs) == 0 {
		return list, nil
	}
	err := r.DB.WithContext(ctx).Where("subject_id IN ?", subjectIDs).Order("upload_date DESC").Find(&list).Error
	return list, err
}

// Delete 在事务内删除记录并执行 removeFile，文件删除失败时回滚记录
func (r *LearningMaterialRepository) Delete(ctx context.Context, id uint, removeFile func() error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.LearningMaterial{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrMaterialNotFound
		}
		if removeFile != nil {
			return removeFile()
		}
		return nil
	})
}
