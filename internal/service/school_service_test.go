package service

import (
	"context"
	"seclink_backend/internal/access"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func uintp(u uint) *uint    { return &u }

func TestStudentAccessFilter(t *testing.T) {
	w := newWorld(t)
	svc := NewStudentService(w.students, w.classes, w.subjects, w.accounts)
	ctx := context.Background()

	s, err := svc.Get(ctx, as(w.parent), w.child.ID)
	require.NoError(t, err)
	assert.Equal(t, w.child.ID, s.ID)

	// 家长只能看到 parent_id 为自己的学生
	_, err = svc.Get(ctx, as(w.parent), w.other.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.Get(ctx, as(w.otherTeacher), w.child.ID)
	assert.NoError(t, err, "subject teacher may read enrolled student")
	_, err = svc.Get(ctx, as(w.otherTeacher), w.other.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.Get(ctx, as(w.parent), 999)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	list, err := svc.List(ctx, as(w.parent))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, w.child.ID, list[0].ID)

	list, err = svc.List(ctx, as(w.teacher))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStudentMutations(t *testing.T) {
	w := newWorld(t)
	svc := NewStudentService(w.students, w.classes, w.subjects, w.accounts)
	ctx := context.Background()
	dob := time.Date(2013, 1, 2, 0, 0, 0, 0, time.UTC)

	created, err := svc.Create(ctx, as(w.teacher), StudentInput{Name: strp("Chege"), DOB: &dob, ClassID: &w.class.ID, ParentID: uintp(w.parent.ID)})
	require.NoError(t, err)
	assert.Equal(t, w.teacher.ID, created.TeacherID)

	_, err = svc.Create(ctx, as(w.otherTeacher), StudentInput{Name: strp("X"), DOB: &dob, ClassID: &w.class.ID})
	assert.ErrorIs(t, err, util.ErrPermissionDenied, "class owned by someone else")
	_, err = svc.Create(ctx, as(w.teacher), StudentInput{Name: strp("X"), DOB: &dob, ClassID: &w.class.ID, ParentID: uintp(w.teacher.ID)})
	assert.ErrorIs(t, err, util.ErrAccountNotFound, "parent id must be a parent")
	_, err = svc.Create(ctx, as(w.teacher), StudentInput{Name: strp("X"), ClassID: &w.class.ID})
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = svc.Create(ctx, as(w.parent), StudentInput{Name: strp("X"), DOB: &dob, ClassID: &w.class.ID})
	assert.ErrorIs(t, err, util.ErrForbidden)

	updated, err := svc.Update(ctx, as(w.teacher), created.ID, StudentInput{Name: strp("Chege K.")})
	require.NoError(t, err)
	assert.Equal(t, "Chege K.", updated.Name)

	_, err = svc.Update(ctx, as(w.otherTeacher), created.ID, StudentInput{Name: strp("nope")})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	enrolled, err := svc.Enroll(ctx, as(w.teacher), created.ID, w.maths.ID)
	require.NoError(t, err)
	require.Len(t, enrolled.Subjects, 1)
	enrolled, err = svc.Enroll(ctx, as(w.teacher), created.ID, w.maths.ID)
	require.NoError(t, err)
	assert.Len(t, enrolled.Subjects, 1, "enrolling twice is a no-op")
	_, err = svc.Enroll(ctx, as(w.teacher), created.ID, 999)
	assert.ErrorIs(t, err, util.ErrSubjectNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, as(w.parent), created.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, as(w.teacher), created.ID))
	_, err = svc.Get(ctx, as(w.teacher), created.ID)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

func TestStudentCreateAccount(t *testing.T) {
	w := newWorld(t)
	svc := NewStudentService(w.students, w.classes, w.subjects, w.accounts)
	ctx := context.Background()
	in := StudentAccountInput{Username: "amani", Email: "amani@example.com", Password: "pupil-pass"}

	_, err := svc.CreateAccount(ctx, as(w.otherTeacher), w.child.ID, in)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	account, err := svc.CreateAccount(ctx, as(w.teacher), w.child.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, account.Role)

	_, err = svc.CreateAccount(ctx, as(w.teacher), w.child.ID, StudentAccountInput{Username: "amani2", Email: "amani2@example.com", Password: "p"})
	assert.ErrorIs(t, err, util.ErrStudentHasAccount)
	_, err = svc.CreateAccount(ctx, as(w.teacher), w.other.ID, StudentAccountInput{Username: "amani", Email: "b@example.com", Password: "p"})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)

	own, err := svc.Get(ctx, as(*account), w.child.ID)
	require.NoError(t, err)
	assert.Equal(t, w.child.ID, own.ID)
	_, err = svc.Get(ctx, as(*account), w.other.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestClassService(t *testing.T) {
	w := newWorld(t)
	svc := NewClassService(w.classes, w.students)
	ctx := context.Background()

	c, err := svc.Create(ctx, as(w.otherTeacher), "Form 2")
	require.NoError(t, err)
	assert.Equal(t, w.otherTeacher.ID, c.TeacherID)

	_, err = svc.Create(ctx, as(w.parent), "Form 3")
	assert.ErrorIs(t, err, util.ErrForbidden)
	_, err = svc.Create(ctx, as(w.teacher), " ")
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.Update(ctx, as(w.teacher), c.ID, "Mine now")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	renamed, err := svc.Update(ctx, as(w.otherTeacher), c.ID, "Form 2B")
	require.NoError(t, err)
	assert.Equal(t, "Form 2B", renamed.ClassName)

	_, err = svc.Get(ctx, as(w.parent), w.class.ID)
	assert.NoError(t, err, "child's class")
	_, err = svc.Get(ctx, as(w.parent), c.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Get(ctx, as(w.parent), 999)
	assert.ErrorIs(t, err, util.ErrClassNotFound)

	list, err := svc.List(ctx, as(w.parent))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, w.class.ID, list[0].ID)

	assert.ErrorIs(t, svc.Delete(ctx, as(w.teacher), c.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, as(w.otherTeacher), c.ID))
}

func TestSubjectService(t *testing.T) {
	w := newWorld(t)
	svc := NewSubjectService(w.subjects, w.classes, w.students)
	ctx := context.Background()

	s, err := svc.Create(ctx, as(w.teacher), SubjectInput{SubjectName: strp("Kiswahili"), SubjectCode: strp("kis"), ClassID: &w.class.ID})
	require.NoError(t, err)
	assert.Equal(t, "KIS", s.SubjectCode)
	assert.Equal(t, w.teacher.ID, s.TeacherID)

	_, err = svc.Create(ctx, as(w.otherTeacher), SubjectInput{SubjectName: strp("Art"), SubjectCode: strp("ART"), ClassID: &w.class.ID})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Create(ctx, as(w.teacher), SubjectInput{SubjectName: strp("Art"), ClassID: &w.class.ID})
	assert.ErrorIs(t, err, util.ErrValidation)

	// 教师 5 不能删除 teacher_id 为 7 的科目
	assert.ErrorIs(t, svc.Delete(ctx, as(w.teacher), w.english.ID), util.ErrPermissionDenied)
	_, err = w.subjects.FindByID(ctx, w.english.ID)
	assert.NoError(t, err)
	_, err = svc.Update(ctx, as(w.teacher), w.english.ID, SubjectInput{SubjectName: strp("Literature")})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	list, err := svc.List(ctx, as(w.parent))
	require.NoError(t, err)
	assert.Len(t, list, 2)
	list, err = svc.List(ctx, as(w.otherParent))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, as(w.otherParent), w.maths.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	require.NoError(t, svc.Delete(ctx, as(w.teacher), s.ID))
	assert.ErrorIs(t, svc.Delete(ctx, as(w.teacher), s.ID), util.ErrSubjectNotFound)
}

func TestNotificationService(t *testing.T) {
	w := newWorld(t)
	svc := NewNotificationService(w.notifications, w.students, w.accounts)
	ctx := context.Background()

	n, err := svc.Send(ctx, as(w.teacher), NotificationInput{Message: "Sports day on Friday", ParentIDs: []uint{w.parent.ID, w.parent.ID}})
	require.NoError(t, err)
	assert.Len(t, n.Parents, 1)

	n2, err := svc.Send(ctx, as(w.otherTeacher), NotificationInput{Message: "English essay due", StudentIDs: []uint{w.child.ID}})
	require.NoError(t, err)

	// otherTeacher 不教 other，无法联系其家长
	_, err = svc.Send(ctx, as(w.otherTeacher), NotificationInput{Message: "hi", ParentIDs: []uint{w.otherParent.ID}})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Send(ctx, as(w.otherTeacher), NotificationInput{Message: "hi", StudentIDs: []uint{w.other.ID}})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Send(ctx, as(w.teacher), NotificationInput{Message: "hi", ParentIDs: []uint{w.otherTeacher.ID}})
	assert.ErrorIs(t, err, util.ErrAccountNotFound)
	_, err = svc.Send(ctx, as(w.teacher), NotificationInput{Message: "  "})
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = svc.Send(ctx, as(w.teacher), NotificationInput{Message: "nobody"})
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = svc.Send(ctx, as(w.parent), NotificationInput{Message: "hi", ParentIDs: []uint{w.otherParent.ID}})
	assert.ErrorIs(t, err, util.ErrForbidden)

	list, err := svc.List(ctx, as(w.parent))
	require.NoError(t, err)
	assert.Len(t, list, 2, "addressed to the parent and to the child")
	list, err = svc.List(ctx, as(w.otherParent))
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = svc.List(ctx, as(w.teacher))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Get(ctx, as(w.parent), n2.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, as(w.otherParent), n.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Get(ctx, as(w.teacher), n2.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	assert.ErrorIs(t, svc.Delete(ctx, as(w.otherTeacher), n.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, as(w.teacher), n.ID))
	_, err = svc.Get(ctx, as(w.teacher), n.ID)
	assert.ErrorIs(t, err, util.ErrNotificationNotFound)
}

func TestAccountService(t *testing.T) {
	w := newWorld(t)
	svc := NewAccountService(w.accounts, w.classes, w.subjects, w.students)
	ctx := context.Background()

	teachers, err := svc.ListTeachers(ctx)
	require.NoError(t, err)
	assert.Len(t, teachers, 2)

	_, err = svc.GetTeacher(ctx, w.parent.ID)
	assert.ErrorIs(t, err, util.ErrAccountNotFound)

	parentIDs := func(ac access.AuthContext) []uint {
		list, err := svc.ListParents(ctx, ac)
		require.NoError(t, err)
		var ids []uint
		for _, a := range list {
			assert.Equal(t, model.RoleParent, a.Role)
			ids = append(ids, a.ID)
		}
		return ids
	}
	assert.Equal(t, []uint{w.parent.ID, w.otherParent.ID}, parentIDs(as(w.teacher)))
	assert.Equal(t, []uint{w.parent.ID}, parentIDs(as(w.otherTeacher)), "only english pupils")
	assert.Equal(t, []uint{w.otherParent.ID}, parentIDs(as(w.otherParent)))

	p, err := svc.GetParent(ctx, as(w.otherTeacher), w.parent.ID)
	require.NoError(t, err, "teaches the parent's child")
	assert.Equal(t, w.parent.ID, p.ID)
	_, err = svc.GetParent(ctx, as(w.otherTeacher), w.otherParent.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.GetParent(ctx, as(w.parent), w.otherParent.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	updated, err := svc.UpdateParent(ctx, as(w.parent), w.parent.ID, UpdateAccountInput{Name: strp("Mama Amani"), Phone: strp("0711")})
	require.NoError(t, err)
	assert.Equal(t, "Mama Amani", updated.Name)
	require.NotNil(t, updated.ParentProfile)
	assert.Equal(t, "0711", updated.ParentProfile.Phone)

	_, err = svc.UpdateParent(ctx, as(w.parent), w.parent.ID, UpdateAccountInput{Email: strp("other-parent@example.com")})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
	_, err = svc.UpdateTeacher(ctx, as(w.teacher), w.otherTeacher.ID, UpdateAccountInput{Name: strp("x")})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	assert.ErrorIs(t, svc.DeleteTeacher(ctx, as(w.teacher), w.teacher.ID), util.ErrTeacherInUse)
	assert.ErrorIs(t, svc.DeleteTeacher(ctx, as(w.otherTeacher), w.otherTeacher.ID), util.ErrTeacherInUse, "still teaches english")
	assert.ErrorIs(t, svc.DeleteParent(ctx, as(w.parent), w.otherParent.ID), util.ErrPermissionDenied)
	require.NoError(t, svc.DeleteParent(ctx, as(w.otherParent), w.otherParent.ID))
}

func TestClassAndSubjectEventsLogged(t *testing.T) {
	w := newWorld(t)
	logs := observeLogs(t)
	classes := NewClassService(w.classes, w.students)
	subjects := NewSubjectService(w.subjects, w.classes, w.students)
	ctx := context.Background()

	c, err := classes.Create(ctx, as(w.teacher), "Form 4")
	require.NoError(t, err)
	s, err := subjects.Create(ctx, as(w.teacher), SubjectInput{SubjectName: strp("Physics"), SubjectCode: strp("PHY"), ClassID: &c.ID})
	require.NoError(t, err)
	_, err = subjects.Update(ctx, as(w.teacher), s.ID, SubjectInput{SubjectName: strp("Applied Physics")})
	require.NoError(t, err)
	require.NoError(t, subjects.Delete(ctx, as(w.teacher), s.ID))
	_, err = classes.Update(ctx, as(w.teacher), c.ID, "Form 4A")
	require.NoError(t, err)
	require.NoError(t, classes.Delete(ctx, as(w.teacher), c.ID))

	var messages []string
	for _, e := range logs.All() {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{
		"class created", "subject created", "subject updated",
		"subject deleted", "class updated", "class deleted",
	}, messages)

	created := logs.FilterMessage("subject created").All()[0].ContextMap()
	assert.EqualValues(t, s.ID, created["subject_id"])
	assert.EqualValues(t, c.ID, created["class_id"])

	// 被拒绝的操作不记录
	_, err = classes.Create(ctx, as(w.parent), "Form 5")
	require.Error(t, err)
	assert.Equal(t, 6, logs.Len())
}
