// Package access 实现基于角色与归属关系的记录访问控制。
// 记录存在但不在调用方范围内时统一返回 util.ErrPermissionDenied（403），
// 不存在的记录由调用方在查询阶段返回 404。
package access

import (
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
)

// AuthContext 由认证中间件生成并显式传入业务层
type AuthContext struct {
	SubjectID uint
	Role      model.Role
}

// FromClaims 由已校验的令牌声明构造调用方身份
func FromClaims(c *util.Claims) AuthContext {
	return AuthContext{SubjectID: c.AccountID, Role: c.Role}
}

func (a AuthContext) IsTeacher() bool { return a.Role == model.RoleTeacher }
func (a AuthContext) IsParent() bool  { return a.Role == model.RoleParent }
func (a AuthContext) IsStudent() bool { return a.Role == model.RoleStudent }

func deny() error { return util.ErrPermissionDenied }

// RequireRole 调用方角色必须在 roles 中
func RequireRole(ac AuthContext, roles ...model.Role) error {
	for _, r := range roles {
		if ac.Role == r {
			return nil
		}
	}
	return deny()
}

// RequireOwner 教师只能操作 teacher_id 为自己的记录
func RequireOwner(ac AuthContext, teacherID uint) error {
	if ac.IsTeacher() && ac.SubjectID == teacherID {
		return nil
	}
	return deny()
}

// RequireSelf 账户只能修改自己的资料
func RequireSelf(ac AuthContext, accountID uint) error {
	if ac.SubjectID == accountID {
		return nil
	}
	return deny()
}

func isParentOf(ac AuthContext, s *model.Student) bool {
	return ac.IsParent() && s.ParentID != nil && *s.ParentID == ac.SubjectID
}

func isStudentSelf(ac AuthContext, s *model.Student) bool {
	return ac.IsStudent() && s.AccountID != nil && *s.AccountID == ac.SubjectID
}

// CanReadStudent 教师读自己名下学生，家长读自己的孩子，学生读自己
func CanReadStudent(ac AuthContext, s *model.Student) error {
	switch {
	case ac.IsTeacher() && s.TeacherID == ac.SubjectID:
		return nil
	case isParentOf(ac, s), isStudentSelf(ac, s):
		return nil
	}
	return deny()
}

func CanWriteStudent(ac AuthContext, s *model.Student) error {
	return RequireOwner(ac, s.TeacherID)
}

// CanReadGrades 学生的班主任或任一科目的任课教师可读；家长与学生本人可读
func CanReadGrades(ac AuthContext, s *model.Student, teachesStudent bool) error {
	if ac.IsTeacher() && (s.TeacherID == ac.SubjectID || teachesStudent) {
		return nil
	}
	if isParentOf(ac, s) || isStudentSelf(ac, s) {
		return nil
	}
	return deny()
}

// CanWriteGrade 只有该科目的任课教师可以录入成绩
func CanWriteGrade(ac AuthContext, subject *model.Subject) error {
	return RequireOwner(ac, subject.TeacherID)
}

// CanRecomputeOverall 学生的班主任负责刷新总评
func CanRecomputeOverall(ac AuthContext, s *model.Student) error {
	return RequireOwner(ac, s.TeacherID)
}

// Reach 家长/学生可以间接访问的范围（由孩子推导）
type Reach struct {
	StudentIDs map[uint]bool
	SubjectIDs map[uint]bool
	ClassIDs   map[uint]bool
}

func NewReach(students []model.Student) Reach {
	r := Reach{
		StudentIDs: map[uint]bool{},
		SubjectIDs: map[uint]bool{},
		ClassIDs:   map[uint]bool{},
	}
	for _, s := range students {
		r.StudentIDs[s.ID] = true
		r.ClassIDs[s.ClassID] = true
		for _, sub := range s.Subjects {
			r.SubjectIDs[sub.ID] = true
		}
	}
	return r
}

func (r Reach) SubjectIDList() []uint {
	ids := make([]uint, 0, len(r.SubjectIDs))
	for id := range r.SubjectIDs {
		ids = append(ids, id)
	}
	return ids
}

func (r Reach) StudentIDList() []uint {
	ids := make([]uint, 0, len(r.StudentIDs))
	for id := range r.StudentIDs {
		ids = append(ids, id)
	}
	return ids
}

func (r Reach) ClassIDList() []uint {
	ids := make([]uint, 0, len(r.ClassIDs))
	for id := range r.ClassIDs {
		ids = append(ids, id)
	}
	return ids
}

func CanReadClass(ac AuthContext, c *model.Class, reach Reach) error {
	if ac.IsTeacher() {
		return RequireOwner(ac, c.TeacherID)
	}
	if reach.ClassIDs[c.ID] {
		return nil
	}
	return deny()
}

func CanReadSubject(ac AuthContext, s *model.Subject, reach Reach) error {
	if ac.IsTeacher() {
		return RequireOwner(ac, s.TeacherID)
	}
	if reach.SubjectIDs[s.ID] {
		return nil
	}
	return deny()
}

func CanReadMaterial(ac AuthContext, m *model.LearningMaterial, reach Reach) error {
	if ac.IsTeacher() {
		return RequireOwner(ac, m.TeacherID)
	}
	if reach.SubjectIDs[m.SubjectID] {
		return nil
	}
	return deny()
}

func CanDeleteMaterial(ac AuthContext, m *model.LearningMaterial) error {
	return RequireOwner(ac, m.TeacherID)
}

// CanReadNotification 教师读自己发出的；家长读发给自己或自己孩子的
func CanReadNotification(ac AuthContext, n *model.Notification, reach Reach) error {
	if ac.IsTeacher() {
		return RequireOwner(ac, n.SenderID)
	}
	if ac.IsParent() {
		for _, p := range n.Parents {
			if p.ID == ac.SubjectID {
				return nil
			}
		}
	}
	for _, s := range n.Students {
		if reach.StudentIDs[s.ID] {
			return nil
		}
	}
	return deny()
}

func CanDeleteNotification(ac AuthContext, n *model.Notification) error {
	return RequireOwner(ac, n.SenderID)
}
