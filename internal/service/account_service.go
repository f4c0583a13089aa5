package service

import (
	"context"
	"errors"
	"seclink_backend/internal/access"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// UpdateAccountInput 未设置的字段保持不变
type UpdateAccountInput struct {
	Name     *string
	Username *string
	Email    *string
	Subject  *string
	Phone    *string
}

// AccountService 教师与家长资料的查询和维护
type AccountService struct {
	Accounts AccountStore
	Classes  ClassStore
	Subjects SubjectStore
	Students StudentStore
}

func NewAccountService(accounts AccountStore, classes ClassStore, subjects SubjectStore, students StudentStore) *AccountService {
	return &AccountService{
		Accounts: accounts,
		Classes:  classes,
		Subjects: subjects,
		Students: students,
	}
}

func (s *AccountService) ListTeachers(ctx context.Context) ([]model.Account, error) {
	return s.Accounts.ListByRole(ctx, model.RoleTeacher)
}

// findRole 角色不符视为不存在
func (s *AccountService) findRole(ctx context.Context, id uint, role model.Role) (*model.Account, error) {
	account, err := s.Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Role != role {
		return nil, util.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountService) GetTeacher(ctx context.Context, id uint) (*model.Account, error) {
	return s.findRole(ctx, id, model.RoleTeacher)
}

// ListParents 教师看到所教学生的家长，家长只看到自己，学生看到自己的家长
func (s *AccountService) ListParents(ctx context.Context, ac access.AuthContext) ([]model.Account, error) {
	var ids []uint
	switch ac.Role {
	case model.RoleTeacher:
		taught, err := s.Students.ParentIDsTaughtBy(ctx, ac.SubjectID)
		if err != nil {
			return nil, err
		}
		ids = taught
	case model.RoleParent:
		ids = []uint{ac.SubjectID}
	case model.RoleStudent:
		records, err := s.Students.ListByAccount(ctx, ac.SubjectID)
		if err != nil {
			return nil, err
		}
		for _, st := range records {
			if st.ParentID != nil {
				ids = append(ids, *st.ParentID)
			}
		}
	default:
		return nil, util.ErrPermissionDenied
	}

	parents, err := s.Accounts.FindByIDs(ctx, ids, model.RoleParent)
	if err != nil {
		return nil, err
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i].ID < parents[j].ID })
	return parents, nil
}

// GetParent 家长本人，或教授其任一孩子的教师可查看
func (s *AccountService) GetParent(ctx context.Context, ac access.AuthContext, id uint) (*model.Account, error) {
	parent, err := s.findRole(ctx, id, model.RoleParent)
	if err != nil {
		return nil, err
	}
	if ac.SubjectID == id {
		return parent, nil
	}
	if ac.IsTeacher() {
		ids, err := s.Students.ParentIDsTaughtBy(ctx, ac.SubjectID)
		if err != nil {
			return nil, err
		}
		for _, pid := range ids {
			if pid == id {
				return parent, nil
			}
		}
	}
	return nil, util.ErrPermissionDenied
}

func (s *AccountService) UpdateTeacher(ctx context.Context, ac access.AuthContext, id uint, in UpdateAccountInput) (*model.Account, error) {
	return s.update(ctx, ac, id, model.RoleTeacher, in)
}

func (s *AccountService) UpdateParent(ctx context.Context, ac access.AuthContext, id uint, in UpdateAccountInput) (*model.Account, error) {
	return s.update(ctx, ac, id, model.RoleParent, in)
}

func (s *AccountService) update(ctx context.Context, ac access.AuthContext, id uint, role model.Role, in UpdateAccountInput) (*model.Account, error) {
	account, err := s.findRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if err := access.RequireSelf(ac, id); err != nil {
		return nil, err
	}

	if in.Name != nil {
		account.Name = *in.Name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != account.Email {
			if err := s.ensureFree(s.Accounts.FindByEmail(ctx, email)); err != nil {
				if errors.Is(err, util.ErrConflict) {
					return nil, util.ErrEmailRegistered
				}
				return nil, err
			}
			account.Email = email
		}
	}
	if in.Username != nil && *in.Username != account.Username {
		if err := s.ensureFree(s.Accounts.FindByUsername(ctx, *in.Username)); err != nil {
			if errors.Is(err, util.ErrConflict) {
				return nil, util.ErrUsernameTaken
			}
			return nil, err
		}
		account.Username = *in.Username
	}

	switch role {
	case model.RoleTeacher:
		if in.Subject != nil {
			if account.TeacherProfile == nil {
				account.TeacherProfile = &model.TeacherProfile{AccountID: account.ID}
			}
			account.TeacherProfile.Subject = *in.Subject
		}
	case model.RoleParent:
		if in.Phone != nil {
			if account.ParentProfile == nil {
				account.ParentProfile = &model.ParentProfile{AccountID: account.ID}
			}
			account.ParentProfile.Phone = *in.Phone
		}
	}

	if err := s.Accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ensureFree 查询到记录说明已被占用
func (s *AccountService) ensureFree(_ *model.Account, err error) error {
	if err == nil {
		return util.ErrConflict
	}
	if errors.Is(err, util.ErrNotFound) {
		return nil
	}
	return err
}

// DeleteTeacher 仍有班级或任教科目的教师不能删除
func (s *AccountService) DeleteTeacher(ctx context.Context, ac access.AuthContext, id uint) error {
	if _, err := s.findRole(ctx, id, model.RoleTeacher); err != nil {
		return err
	}
	if err := access.RequireSelf(ac, id); err != nil {
		return err
	}
	classes, err := s.Classes.ListByTeacher(ctx, id)
	if err != nil {
		return err
	}
	if len(classes) > 0 {
		return util.ErrTeacherInUse
	}
	subjects, err := s.Subjects.ListByTeacher(ctx, id)
	if err != nil {
		return err
	}
	if len(subjects) > 0 {
		return util.ErrTeacherInUse
	}
	if err := s.Accounts.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("teacher account deleted", zap.Uint("account_id", id))
	return nil
}

func (s *AccountService) DeleteParent(ctx context.Context, ac access.AuthContext, id uint) error {
	if _, err := s.findRole(ctx, id, model.RoleParent); err != nil {
		return err
	}
	if err := access.RequireSelf(ac, id); err != nil {
		return err
	}
	if err := s.Accounts.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("parent account deleted", zap.Uint("account_id", id))
	return nil
}
