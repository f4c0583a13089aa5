package access

import (
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func student(id, teacherID uint, parentID *uint) *model.Student {
	s := &model.Student{TeacherID: teacherID, ParentID: parentID, ClassID: 10}
	s.ID = id
	return s
}

func TestCanReadStudent(t *testing.T) {
	tests := []struct {
		name    string
		ac      AuthContext
		student *model.Student
		allowed bool
	}{
		{name: "parent of child", ac: AuthContext{SubjectID: 2, Role: model.RoleParent}, student: student(1, 5, uintPtr(2)), allowed: true},
		{name: "parent of another child", ac: AuthContext{SubjectID: 1, Role: model.RoleParent}, student: student(1, 5, uintPtr(2))},
		{name: "parent and orphan record", ac: AuthContext{SubjectID: 1, Role: model.RoleParent}, student: student(1, 5, nil)},
		{name: "owning teacher", ac: AuthContext{SubjectID: 5, Role: model.RoleTeacher}, student: student(1, 5, nil), allowed: true},
		{name: "other teacher", ac: AuthContext{SubjectID: 7, Role: model.RoleTeacher}, student: student(1, 5, nil)},
		{name: "teacher id equals parent id", ac: AuthContext{SubjectID: 2, Role: model.RoleTeacher}, student: student(1, 5, uintPtr(2))},
		{name: "student self", ac: AuthContext{SubjectID: 9, Role: model.RoleStudent}, student: &model.Student{AccountID: uintPtr(9)}, allowed: true},
		{name: "student other", ac: AuthContext{SubjectID: 8, Role: model.RoleStudent}, student: &model.Student{AccountID: uintPtr(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanReadStudent(tt.ac, tt.student)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, util.ErrForbidden)
			assert.NotErrorIs(t, err, util.ErrNotFound)
		})
	}
}

func TestTeacherCannotMutateForeignSubject(t *testing.T) {
	subject := &model.Subject{TeacherID: 7}
	ac := AuthContext{SubjectID: 5, Role: model.RoleTeacher}

	assert.ErrorIs(t, RequireOwner(ac, subject.TeacherID), util.ErrPermissionDenied)
	assert.ErrorIs(t, CanWriteGrade(ac, subject), util.ErrPermissionDenied)
	assert.NoError(t, RequireOwner(AuthContext{SubjectID: 7, Role: model.RoleTeacher}, subject.TeacherID))
	// 家长即使 id 相同也不能当作教师
	assert.Error(t, RequireOwner(AuthContext{SubjectID: 7, Role: model.RoleParent}, subject.TeacherID))
}

func TestCanReadGrades(t *testing.T) {
	s := student(1, 5, uintPtr(2))

	assert.NoError(t, CanReadGrades(AuthContext{SubjectID: 5, Role: model.RoleTeacher}, s, false))
	assert.NoError(t, CanReadGrades(AuthContext{SubjectID: 6, Role: model.RoleTeacher}, s, true))
	assert.Error(t, CanReadGrades(AuthContext{SubjectID: 6, Role: model.RoleTeacher}, s, false))
	assert.NoError(t, CanReadGrades(AuthContext{SubjectID: 2, Role: model.RoleParent}, s, false))
	assert.Error(t, CanReadGrades(AuthContext{SubjectID: 3, Role: model.RoleParent}, s, true))
}

func TestReachMaterialsAndSubjects(t *testing.T) {
	child := model.Student{ClassID: 3, Subjects: []model.Subject{{BaseModel: model.BaseModel{ID: 11}}}}
	child.ID = 1
	reach := NewReach([]model.Student{child})
	parent := AuthContext{SubjectID: 2, Role: model.RoleParent}

	assert.NoError(t, CanReadMaterial(parent, &model.LearningMaterial{SubjectID: 11, TeacherID: 5}, reach))
	assert.ErrorIs(t, CanReadMaterial(parent, &model.LearningMaterial{SubjectID: 12, TeacherID: 5}, reach), util.ErrForbidden)

	subject := &model.Subject{TeacherID: 5}
	subject.ID = 11
	assert.NoError(t, CanReadSubject(parent, subject, reach))

	class := &model.Class{TeacherID: 5}
	class.ID = 3
	assert.NoError(t, CanReadClass(parent, class, reach))
	class.ID = 4
	assert.Error(t, CanReadClass(parent, class, reach))

	assert.ElementsMatch(t, []uint{11}, reach.SubjectIDList())
	assert.ElementsMatch(t, []uint{1}, reach.StudentIDList())
	assert.ElementsMatch(t, []uint{3}, reach.ClassIDList())
}

func TestMaterialDeleteRequiresOwner(t *testing.T) {
	m := &model.LearningMaterial{TeacherID: 5}
	assert.NoError(t, CanDeleteMaterial(AuthContext{SubjectID: 5, Role: model.RoleTeacher}, m))
	assert.ErrorIs(t, CanDeleteMaterial(AuthContext{SubjectID: 7, Role: model.RoleTeacher}, m), util.ErrForbidden)
}

func TestCanReadNotification(t *testing.T) {
	parent := model.Account{Role: model.RoleParent}
	parent.ID = 2
	child := model.Student{}
	child.ID = 1
	n := &model.Notification{SenderID: 5, Parents: []model.Account{parent}}
	toChild := &model.Notification{SenderID: 5, Students: []model.Student{child}}

	reach := NewReach([]model.Student{child})
	empty := NewReach(nil)

	assert.NoError(t, CanReadNotification(AuthContext{SubjectID: 2, Role: model.RoleParent}, n, empty))
	assert.Error(t, CanReadNotification(AuthContext{SubjectID: 3, Role: model.RoleParent}, n, empty))
	assert.NoError(t, CanReadNotification(AuthContext{SubjectID: 3, Role: model.RoleParent}, toChild, reach))
	assert.NoError(t, CanReadNotification(AuthContext{SubjectID: 5, Role: model.RoleTeacher}, n, empty))
	assert.Error(t, CanReadNotification(AuthContext{SubjectID: 6, Role: model.RoleTeacher}, n, empty))
	assert.Error(t, CanDeleteNotification(AuthContext{SubjectID: 2, Role: model.RoleParent}, n))
}

func TestRequireRole(t *testing.T) {
	ac := AuthContext{SubjectID: 1, Role: model.RoleParent}
	assert.NoError(t, RequireRole(ac, model.RoleTeacher, model.RoleParent))
	assert.ErrorIs(t, RequireRole(ac, model.RoleTeacher), util.ErrForbidden)
}
