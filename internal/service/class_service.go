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

type ClassService struct {
	Classes  ClassStore
	Students StudentStore
}

func NewClassService(classes ClassStore, students StudentStore) *ClassService {
	return &ClassService{Classes: classes, Students: students}
}

// List 教师看自己的班级，家长看孩子所在的班级
func (s *ClassService) List(ctx context.Context, ac access.AuthContext) ([]model.Class, error) {
	if ac.IsTeacher() {
		return s.Classes.ListByTeacher(ctx, ac.SubjectID)
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	return s.Classes.ListByIDs(ctx, reach.ClassIDList())
}

func (s *ClassService) Get(ctx context.Context, ac access.AuthContext, id uint) (*model.Class, error) {
	class, err := s.Classes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadClass(ac, class, reach); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *ClassService) Create(ctx context.Context, ac access.AuthContext, name string) (*model.Class, error) {
	if err := access.RequireRole(ac, model.RoleTeacher); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.Validationf("class name is required")
	}
	class := &model.Class{ClassName: name, TeacherID: ac.SubjectID}
	if err := s.Classes.Create(ctx, class); err != nil {
		return nil, err
	}
	logger.Log.Info("class created", zap.Uint("class_id", class.ID), zap.Uint("teacher_id", ac.SubjectID))
	return class, nil
}

func (s *ClassService) Update(ctx context.Context, ac access.AuthContext, id uint, name string) (*model.Class, error) {
	class, err := s.Classes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(ac, class.TeacherID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, util.Validationf("class name is required")
	}
	class.ClassName = name
	if err := s.Classes.Update(ctx, class); err != nil {
		return nil, err
	}
	logger.Log.Info("class updated", zap.Uint("class_id", class.ID))
	return class, nil
}

func (s *ClassService) Delete(ctx context.Context, ac access.AuthContext, id uint) error {
	class, err := s.Classes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(ac, class.TeacherID); err != nil {
		return err
	}
	if err := s.Classes.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("class deleted", zap.Uint("class_id", id), zap.Uint("teacher_id", ac.SubjectID))
	return nil
}
