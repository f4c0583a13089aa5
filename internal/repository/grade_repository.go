package repository

import (
	"context"
	"seclink_backend/internal/model"

	"gorm.io/gorm"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

func (r *GradeRepository) GradesFor(ctx context.Context, studentID uint) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.DB.WithContext(ctx).Where("student_id = ?", studentID).Order("id").Find(&grades).Error
	return grades, err
}

// AddGrade 追加一条成绩记录，同一学生同一科目允许多条
func (r *GradeRepository) AddGrade(ctx context.Context, grade *model.Grade) error {
	return r.DB.WithContext(ctx).Create(grade).Error
}

// ReplaceGrade 删除该学生该科目的旧成绩后写入新成绩
func (r *GradeRepository) ReplaceGrade(ctx context.Context, grade *model.Grade) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ? AND subject_id = ?", grade.StudentID, grade.SubjectID).
			Delete(&model.Grade{}).Error; err != nil {
			return err
		}
		return tx.Create(grade).Error
	})
}
