package repository

import (
	"context"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	return r.DB.WithContext(ctx).Omit("Subjects.*").Create(student).Error
}

func (r *StudentRepository) FindByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	if err := r.DB.WithContext(ctx).Preload("Subjects").First(&student, id).Error; err != nil {
		return nil, translate(err, util.ErrStudentNotFound)
	}
	return &student, nil
}

func (r *StudentRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("id").Find(&students).Error
	return students, err
}

func (r *StudentRepository) ListByParent(ctx context.Context, parentID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.WithContext(ctx).Preload("Subjects").Where("parent_id = ?", parentID).Order("id").Find(&students).Error
	return students, err
}

func (r *StudentRepository) ListByAccount(ctx context.Context, accountID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.WithContext(ctx).Preload("Subjects").Where("account_id = ?", accountID).Find(&students).Error
	return students, err
}

// TaughtBy 学生是否选修了该教师任教的任一科目
func (r *StudentRepository) TaughtBy(ctx context.Context, studentID, teacherID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Table("student_subjects").
		Joins("JOIN subjects ON subjects.id = student_subjects.subject_id").
		Where("student_subjects.student_id = ? AND subjects.teacher_id = ?", studentID, teacherID).
		Count(&n).Error
	return n > 0, err
}

// ParentIDsTaughtBy 教师名下学生（班主任或任课）的家长 ID
func (r *StudentRepository) ParentIDsTaughtBy(ctx context.Context, teacherID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Student{}).
		Distinct("students.parent_id").
		Joins("LEFT JOIN student_subjects ON student_subjects.student_id = students.id").
		Joins("LEFT JOIN subjects ON subjects.id = student_subjects.subject_id").
		Where("students.parent_id IS NOT NULL").
		Where("students.teacher_id = ? OR subjects.teacher_id = ?", teacherID, teacherID).
		Pluck("students.parent_id", &ids).Error
	return ids, err
}

func (r *StudentRepository) Update(ctx context.Context, student *model.Student) error {
	return r.DB.WithContext(ctx).Model(student).Updates(map[string]interface{}{
		"name":      student.Name,
		"dob":       student.DOB,
		"class_id":  student.ClassID,
		"parent_id": student.ParentID,
	}).Error
}

func (r *StudentRepository) AddSubject(ctx context.Context, studentID uint, subject *model.Subject) error {
	student := model.Student{}
	student.ID = studentID
	return r.DB.WithContext(ctx).Model(&student).Omit("Subjects.*").Association("Subjects").Append(subject)
}

func (r *StudentRepository) LinkAccount(ctx context.Context, studentID, accountID uint) error {
	res := r.DB.WithContext(ctx).Model(&model.Student{}).Where("id = ?", studentID).Update("account_id", accountID)
	if res.Error != nil {
		return translate(res.Error, util.ErrStudentNotFound)
	}
	if res.RowsAffected == 0 {
		return util.ErrStudentNotFound
	}
	return nil
}

// UpdateOverallGrade 覆盖缓存的总评，并发刷新时以最后一次写入为准
func (r *StudentRepository) UpdateOverallGrade(ctx context.Context, studentID uint, letter string, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&model.Student{}).Where("id = ?", studentID).Updates(map[string]interface{}{
		"overall_grade":       letter,
		"overall_computed_at": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM student_subjects WHERE student_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM notification_students WHERE student_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&model.Grade{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Student{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrStudentNotFound
		}
		return nil
	})
}
