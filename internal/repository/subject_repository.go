package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	return r.DB.WithContext(ctx).Create(subject).Error
}

func (r *SubjectRepository) FindByID(ctx context.Context, id uint) (*model.Subject, error) {
	var subject model.Subject
	if err := r.DB.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, translate(err, util.ErrSubjectNotFound)
	}
	return &subject, nil
}

func (r *SubjectRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("id").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) ListByIDs(ctx context.Context, ids []uint) ([]model.Subject, error) {
	var subjects []model.Subject
	if len(ids) == 0 {
		return subjects, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) Update(ctx context.Context, subject *model.Subject) error {
	return r.DB.WithContext(ctx).Model(subject).Updates(map[string]interface{}{
		"subject_name": subject.SubjectName,
		"subject_code": subject.SubjectCode,
		"class_id":     subject.ClassID,
	}).Error
}

// Delete 仍有学习资料时拒绝删除，否则一并清理选课关系与成绩
func (r *SubjectRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.LearningMaterial{}).Where("subject_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return util.ErrSubjectInUse
		}
		if err := tx.Exec("DELETE FROM student_subjects WHERE subject_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&model.Grade{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Subject{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrSubjectNotFound
		}
		return nil
	})
}
