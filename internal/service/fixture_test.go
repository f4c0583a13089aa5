package service

import (
	"context"
	"seclink_backend/internal/access"
	"seclink_backend/internal/config"
	"seclink_backend/internal/memstore"
	"seclink_backend/internal/model"
	"seclink_backend/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observeLogs 在测试期间捕获 Info 及以上日志
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

// world 一所最小的学校：两位教师、两位家长、一个班级、两门科目、两名学生
type world struct {
	now time.Time

	accounts      *memstore.Accounts
	classes       *memstore.Classes
	subjects      *memstore.Subjects
	students      *memstore.Students
	grades        *memstore.Grades
	notifications *memstore.Notifications
	materials     *memstore.Materials
	tokens        *memstore.ResetTokens
	denylist      *memstore.Denylist
	storage       *memstore.Storage
	mailer        *memstore.Mailer

	teacher      model.Account // 班主任，任教 maths
	otherTeacher model.Account // 任教 english
	parent       model.Account
	otherParent  model.Account

	class   model.Class
	maths   model.Subject
	english model.Subject
	child   model.Student // parent 的孩子，选修 maths 与 english
	other   model.Student // otherParent 的孩子，未选课
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	w := &world{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	w.accounts = memstore.NewAccounts()
	w.classes = memstore.NewClasses()
	w.subjects = memstore.NewSubjects()
	w.students = memstore.NewStudents(w.subjects)
	w.grades = memstore.NewGrades(w.clock)
	w.notifications = memstore.NewNotifications()
	w.materials = memstore.NewMaterials()
	w.tokens = memstore.NewResetTokens()
	w.denylist = memstore.NewDenylist()
	w.storage = memstore.NewStorage()
	w.mailer = &memstore.Mailer{}

	mk := func(name string, role model.Role) model.Account {
		a := model.Account{Name: name, Username: name, Email: name + "@example.com", Password: "x", Role: role}
		require.NoError(t, w.accounts.Create(ctx, &a))
		return a
	}
	w.teacher = mk("teacher", model.RoleTeacher)
	w.otherTeacher = mk("other-teacher", model.RoleTeacher)
	w.parent = mk("parent", model.RoleParent)
	w.otherParent = mk("other-parent", model.RoleParent)

	w.class = model.Class{ClassName: "Form 1", TeacherID: w.teacher.ID}
	require.NoError(t, w.classes.Create(ctx, &w.class))

	w.maths = model.Subject{SubjectName: "Mathematics", SubjectCode: "MAT", ClassID: w.class.ID, TeacherID: w.teacher.ID}
	require.NoError(t, w.subjects.Create(ctx, &w.maths))
	w.english = model.Subject{SubjectName: "English", SubjectCode: "ENG", ClassID: w.class.ID, TeacherID: w.otherTeacher.ID}
	require.NoError(t, w.subjects.Create(ctx, &w.english))

	parentID, otherParentID := w.parent.ID, w.otherParent.ID
	w.child = model.Student{Name: "Amani", DOB: time.Date(2012, 5, 4, 0, 0, 0, 0, time.UTC), ClassID: w.class.ID, TeacherID: w.teacher.ID, ParentID: &parentID}
	require.NoError(t, w.students.Create(ctx, &w.child))
	require.NoError(t, w.students.AddSubject(ctx, w.child.ID, &w.maths))
	require.NoError(t, w.students.AddSubject(ctx, w.child.ID, &w.english))

	w.other = model.Student{Name: "Baraka", DOB: time.Date(2012, 8, 1, 0, 0, 0, 0, time.UTC), ClassID: w.class.ID, TeacherID: w.teacher.ID, ParentID: &otherParentID}
	require.NoError(t, w.students.Create(ctx, &w.other))

	return w
}

func (w *world) clock() time.Time { return w.now }

func (w *world) advance(d time.Duration) { w.now = w.now.Add(d) }

func as(a model.Account) access.AuthContext {
	return access.AuthContext{SubjectID: a.ID, Role: a.Role}
}

func (w *world) gradeService(scale, policy string) *GradeService {
	s := NewGradeService(w.grades, w.students, w.subjects, config.GradingConfig{Scale: scale, Policy: policy})
	s.Now = w.clock
	return s
}

func (w *world) materialService() *MaterialService {
	cfg := &config.StorageConfig{MaxUploadMB: 1, AllowedExtensions: []string{".pdf", ".docx", ".txt"}}
	return NewMaterialService(w.materials, w.subjects, w.students, w.storage, cfg)
}
