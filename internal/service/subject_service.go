package service

import (
	"context"
	"seclink_backend/internal/access"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

type SubjectInput struct {
	SubjectName *string
	SubjectCode *string
	ClassID     *uint
}

type SubjectService struct {
	Subjects SubjectStore
	Classes  ClassStore
	Students StudentStore
}

func NewSubjectService(subjects SubjectStore, classes ClassStore, students StudentStore) *SubjectService {
	return &SubjectService{Subjects: subjects, Classes: classes, Students: students}
}

// List 教师看自己任教的科目，家长看孩子选修的科目
func (s *SubjectService) List(ctx context.Context, ac access.AuthContext) ([]model.Subject, error) {
	if ac.IsTeacher() {
		return s.Subjects.ListByTeacher(ctx, ac.SubjectID)
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	return s.Subjects.ListByIDs(ctx, reach.SubjectIDList())
}

func (s *SubjectService) Get(ctx context.Context, ac access.AuthContext, id uint) (*model.Subject, error) {
	subject, err := s.Subjects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadSubject(ac, subject, reach); err != nil {
		return nil, err
	}
	return subject, nil
}

// ownedClass 科目只能挂在调用方自己的班级下
func (s *SubjectService) ownedClass(ctx context.Context, ac access.AuthContext, classID uint) error {
	class, err := s.Classes.FindByID(ctx, classID)
	if err != nil {
		return err
	}
	return access.RequireOwner(ac, class.TeacherID)
}

func (s *SubjectService) Create(ctx context.Context, ac access.AuthContext, in SubjectInput) (*model.Subject, error) {
	if err := access.RequireRole(ac, model.RoleTeacher); err != nil {
		return nil, err
	}
	if in.SubjectName == nil || strings.TrimSpace(*in.SubjectName) == "" {
		return nil, util.Validationf("subject name is required")
	}
	if in.SubjectCode == nil || strings.TrimSpace(*in.SubjectCode) == "" {
		return nil, util.Validationf("subject code is required")
	}
	if in.ClassID == nil {
		return nil, util.Validationf("class id is required")
	}
	if err := s.ownedClass(ctx, ac, *in.ClassID); err != nil {
		return nil, err
	}

	subject := &model.Subject{
		SubjectName: strings.TrimSpace(*in.SubjectName),
		SubjectCode: strings.ToUpper(strings.TrimSpace(*in.SubjectCode)),
		ClassID:     *in.ClassID,
		TeacherID:   ac.SubjectID,
	}
	if err := s.Subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	logger.Log.Info("subject created",
		zap.Uint("subject_id", subject.ID),
		zap.Uint("class_id", subject.ClassID),
		zap.Uint("teacher_id", ac.SubjectID),
	)
	return subject, nil
}

func (s *SubjectService) Update(ctx context.Context, ac access.AuthContext, id uint, in SubjectInput) (*model.Subject, error) {
	subject, err := s.Subjects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(ac, subject.TeacherID); err != nil {
		return nil, err
	}

	if in.SubjectName != nil && strings.TrimSpace(*in.SubjectName) != "" {
		subject.SubjectName = strings.TrimSpace(*in.SubjectName)
	}
	if in.SubjectCode != nil && strings.TrimSpace(*in.SubjectCode) != "" {
		subject.SubjectCode = strings.ToUpper(strings.TrimSpace(*in.SubjectCode))
	}
	if in.ClassID != nil && *in.ClassID != subject.ClassID {
		if err := s.ownedClass(ctx, ac, *in.ClassID); err != nil {
			return nil, err
		}
		subject.ClassID = *in.ClassID
	}

	if err := s.Subjects.Update(ctx, subject); err != nil {
		return nil, err
	}
	logger.Log.Info("subject updated", zap.Uint("subject_id", subject.ID), zap.Uint("class_id", subject.ClassID))
	return subject, nil
}

func (s *SubjectService) Delete(ctx context.Context, ac access.AuthContext, id uint) error {
	subject, err := s.Subjects.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(ac, subject.TeacherID); err != nil {
		return err
	}
	if err := s.Subjects.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("subject deleted", zap.Uint("subject_id", id), zap.Uint("teacher_id", ac.SubjectID))
	return nil
}
