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

type NotificationInput struct {
	Message    string
	ParentIDs  []uint
	StudentIDs []uint
}

type NotificationService struct {
	Notifications NotificationStore
	Students      StudentStore
	Accounts      AccountStore
}

func NewNotificationService(notifications NotificationStore, students StudentStore, accounts AccountStore) *NotificationService {
	return &NotificationService{
		Notifications: notifications,
		Students:      students,
		Accounts:      accounts,
	}
}

// List 教师看自己发出的，家长看发给自己或孩子的，学生看发给自己的
func (s *NotificationService) List(ctx context.Context, ac access.AuthContext) ([]model.Notification, error) {
	if ac.IsTeacher() {
		return s.Notifications.ListBySender(ctx, ac.SubjectID)
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	var parentID uint
	if ac.IsParent() {
		parentID = ac.SubjectID
	}
	return s.Notifications.ListForParent(ctx, parentID, reach.StudentIDList())
}

func (s *NotificationService) Get(ctx context.Context, ac access.AuthContext, id uint) (*model.Notification, error) {
	n, err := s.Notifications.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadNotification(ac, n, reach); err != nil {
		return nil, err
	}
	return n, nil
}

// Send 收件家长必须是调用方所教学生的家长，收件学生必须由调用方任教
func (s *NotificationService) Send(ctx context.Context, ac access.AuthContext, in NotificationInput) (*model.Notification, error) {
	if err := access.RequireRole(ac, model.RoleTeacher); err != nil {
		return nil, err
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, util.Validationf("message is required")
	}
	parentIDs := dedupe(in.ParentIDs)
	studentIDs := dedupe(in.StudentIDs)
	if len(parentIDs) == 0 && len(studentIDs) == 0 {
		return nil, util.Validationf("at least one parent or student recipient is required")
	}

	parents, err := s.Accounts.FindByIDs(ctx, parentIDs, model.RoleParent)
	if err != nil {
		return nil, err
	}
	if len(parents) != len(parentIDs) {
		return nil, util.ErrAccountNotFound
	}
	if len(parentIDs) > 0 {
		reachable, err := s.Students.ParentIDsTaughtBy(ctx, ac.SubjectID)
		if err != nil {
			return nil, err
		}
		allowed := make(map[uint]bool, len(reachable))
		for _, id := range reachable {
			allowed[id] = true
		}
		for _, id := range parentIDs {
			if !allowed[id] {
				return nil, util.ErrPermissionDenied
			}
		}
	}

	students := make([]model.Student, 0, len(studentIDs))
	for _, id := range studentIDs {
		student, err := s.Students.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if student.TeacherID != ac.SubjectID {
			taught, err := s.Students.TaughtBy(ctx, id, ac.SubjectID)
			if err != nil {
				return nil, err
			}
			if !taught {
				return nil, util.ErrPermissionDenied
			}
		}
		student.Subjects = nil
		students = append(students, *student)
	}

	n := &model.Notification{
		Message:  msg,
		SenderID: ac.SubjectID,
		Parents:  parents,
		Students: students,
	}
	if err := s.Notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	logger.Log.Info("notification sent",
		zap.Uint("notification_id", n.ID),
		zap.Uint("sender_id", ac.SubjectID),
		zap.Int("parents", len(parents)),
		zap.Int("students", len(students)),
	)
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, ac access.AuthContext, id uint) error {
	n, err := s.Notifications.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanDeleteNotification(ac, n); err != nil {
		return err
	}
	return s.Notifications.Delete(ctx, id)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
