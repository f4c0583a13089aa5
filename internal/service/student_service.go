package service

import (
	"context"
	"errors"
	"seclink_backend/internal/access"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

type StudentInput struct {
	Name     *string
	DOB      *time.Time
	ClassID  *uint
	ParentID *uint
}

// StudentAccountInput 为学生开通登录账户
type StudentAccountInput struct {
	Username string
	Email    string
	Password string
}

type StudentService struct {
	Students StudentStore
	Classes  ClassStore
	Subjects SubjectStore
	Accounts AccountStore
}

func NewStudentService(students StudentStore, classes ClassStore, subjects SubjectStore, accounts AccountStore) *StudentService {
	return &StudentService{
		Students: students,
		Classes:  classes,
		Subjects: subjects,
		Accounts: accounts,
	}
}

func (s *StudentService) List(ctx context.Context, ac access.AuthContext) ([]model.Student, error) {
	switch {
	case ac.IsTeacher():
		return s.Students.ListByTeacher(ctx, ac.SubjectID)
	case ac.IsParent():
		return s.Students.ListByParent(ctx, ac.SubjectID)
	case ac.IsStudent():
		return s.Students.ListByAccount(ctx, ac.SubjectID)
	}
	return nil, util.ErrPermissionDenied
}

// Get 班主任、任课教师、家长与学生本人可查看
func (s *StudentService) Get(ctx context.Context, ac access.AuthContext, id uint) (*model.Student, error) {
	return visibleStudent(ctx, s.Students, ac, id)
}

// findOwned 只有班主任可以修改学生档案
func (s *StudentService) findOwned(ctx context.Context, ac access.AuthContext, id uint) (*model.Student, error) {
	student, err := s.Students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanWriteStudent(ac, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) ownedClass(ctx context.Context, ac access.AuthContext, classID uint) error {
	class, err := s.Classes.FindByID(ctx, classID)
	if err != nil {
		return err
	}
	return access.RequireOwner(ac, class.TeacherID)
}

func (s *StudentService) ensureParent(ctx context.Context, parentID uint) error {
	parents, err := s.Accounts.FindByIDs(ctx, []uint{parentID}, model.RoleParent)
	if err != nil {
		return err
	}
	if len(parents) == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}

func (s *StudentService) Create(ctx context.Context, ac access.AuthContext, in StudentInput) (*model.Student, error) {
	if err := access.RequireRole(ac, model.RoleTeacher); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, util.Validationf("student name is required")
	}
	if in.DOB == nil || in.DOB.IsZero() {
		return nil, util.Validationf("date of birth is required")
	}
	if in.ClassID == nil {
		return nil, util.Validationf("class id is required")
	}
	if err := s.ownedClass(ctx, ac, *in.ClassID); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		if err := s.ensureParent(ctx, *in.ParentID); err != nil {
			return nil, err
		}
	}

	student := &model.Student{
		Name:      strings.TrimSpace(*in.Name),
		DOB:       *in.DOB,
		ClassID:   *in.ClassID,
		TeacherID: ac.SubjectID,
		ParentID:  in.ParentID,
	}
	if err := s.Students.Create(ctx, student); err != nil {
		return nil, err
	}
	logger.Log.Info("student created", zap.Uint("student_id", student.ID), zap.Uint("teacher_id", ac.SubjectID))
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, ac access.AuthContext, id uint, in StudentInput) (*model.Student, error) {
	student, err := s.findOwned(ctx, ac, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		student.Name = strings.TrimSpace(*in.Name)
	}
	if in.DOB != nil && !in.DOB.IsZero() {
		student.DOB = *in.DOB
	}
	if in.ClassID != nil && *in.ClassID != student.ClassID {
		if err := s.ownedClass(ctx, ac, *in.ClassID); err != nil {
			return nil, err
		}
		student.ClassID = *in.ClassID
	}
	if in.ParentID != nil {
		if err := s.ensureParent(ctx, *in.ParentID); err != nil {
			return nil, err
		}
		student.ParentID = in.ParentID
	}

	if err := s.Students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, ac access.AuthContext, id uint) error {
	if _, err := s.findOwned(ctx, ac, id); err != nil {
		return err
	}
	if err := s.Students.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("student deleted", zap.Uint("student_id", id))
	return nil
}

// Enroll 班主任为学生选课，重复选课不报错
func (s *StudentService) Enroll(ctx context.Context, ac access.AuthContext, studentID, subjectID uint) (*model.Student, error) {
	if _, err := s.findOwned(ctx, ac, studentID); err != nil {
		return nil, err
	}
	subject, err := s.Subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if err := s.Students.AddSubject(ctx, studentID, subject); err != nil {
		return nil, err
	}
	return s.Students.FindByID(ctx, studentID)
}

// CreateAccount 为学生开通 student 角色的登录账户，每个学生最多一个
func (s *StudentService) CreateAccount(ctx context.Context, ac access.AuthContext, studentID uint, in StudentAccountInput) (*model.Account, error) {
	student, err := s.findOwned(ctx, ac, studentID)
	if err != nil {
		return nil, err
	}
	if student.AccountID != nil {
		return nil, util.ErrStudentHasAccount
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.Accounts.FindByEmail(ctx, email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Accounts.FindByUsername(ctx, in.Username); err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	account := &model.Account{
		Name:     student.Name,
		Username: in.Username,
		Email:    email,
		Password: hashed,
		Role:     model.RoleStudent,
	}
	if err := s.Accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	if err := s.Students.LinkAccount(ctx, studentID, account.ID); err != nil {
		if derr := s.Accounts.Delete(ctx, account.ID); derr != nil {
			logger.Log.Error("failed to remove unlinked student account", zap.Uint("account_id", account.ID), zap.Error(derr))
		}
		return nil, err
	}
	logger.Log.Info("student account created", zap.Uint("student_id", studentID), zap.Uint("account_id", account.ID))
	return account, nil
}
