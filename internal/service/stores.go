package service

import (
	"context"
	"io"
	"seclink_backend/internal/model"
	"time"
)

// 以下接口由 repository 包中的 gorm / redis 实现，测试中使用内存实现

type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id uint) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByIDs(ctx context.Context, ids []uint, role model.Role) ([]model.Account, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
}

type ClassStore interface {
	Create(ctx context.Context, class *model.Class) error
	FindByID(ctx context.Context, id uint) (*model.Class, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]model.Class, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	Delete(ctx context.Context, id uint) error
}

type SubjectStore interface {
	Create(ctx context.Context, subject *model.Subject) error
	FindByID(ctx context.Context, id uint) (*model.Subject, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]model.Subject, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id uint) error
}

type StudentStore interface {
	Create(ctx context.Context, student *model.Student) error
	FindByID(ctx context.Context, id uint) (*model.Student, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]model.Student, error)
	ListByParent(ctx context.Context, parentID uint) ([]model.Student, error)
	ListByAccount(ctx context.Context, accountID uint) ([]model.Student, error)
	TaughtBy(ctx context.Context, studentID, teacherID uint) (bool, error)
	ParentIDsTaughtBy(ctx context.Context, teacherID uint) ([]uint, error)
	Update(ctx context.Context, student *model.Student) error
	AddSubject(ctx context.Context, studentID uint, subject *model.Subject) error
	LinkAccount(ctx context.Context, studentID, accountID uint) error
	UpdateOverallGrade(ctx context.Context, studentID uint, letter string, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

// GradeStore 成绩存取契约
type GradeStore interface {
	GradesFor(ctx context.Context, studentID uint) ([]model.Grade, error)
	AddGrade(ctx context.Context, grade *model.Grade) error
	ReplaceGrade(ctx context.Context, grade *model.Grade) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id uint) (*model.Notification, error)
	ListBySender(ctx context.Context, senderID uint) ([]model.Notification, error)
	ListForParent(ctx context.Context, parentID uint, studentIDs []uint) ([]model.Notification, error)
	Delete(ctx context.Context, id uint) error
}

type MaterialStore interface {
	Create(ctx context.Context, m *model.LearningMaterial) error
	FindByID(ctx context.Context, id uint) (*model.LearningMaterial, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]model.LearningMaterial, error)
	ListBySubjects(ctx context.Context, subjectIDs []uint) ([]model.LearningMaterial, error)
	Delete(ctx context.Context, id uint, removeFile func() error) error
}

type ResetTokenStore interface {
	Create(ctx context.Context, t *model.PasswordResetToken) error
	Consume(ctx context.Context, token string) (*model.PasswordResetToken, error)
	DeleteByAccount(ctx context.Context, accountID uint) error
}

type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, filename string) (io.ReadCloser, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}
