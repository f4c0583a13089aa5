package service

import (
	"context"
	"seclink_backend/internal/access"
	"seclink_backend/internal/model"
)

// reachFor 家长/学生经由孩子（或本人档案）能访问到的学生、科目、班级；教师的范围由 teacher_id 判断，返回空集合
func reachFor(ctx context.Context, students StudentStore, ac access.AuthContext) (access.Reach, error) {
	var (
		list []model.Student
		err  error
	)
	switch {
	case ac.IsParent():
		list, err = students.ListByParent(ctx, ac.SubjectID)
	case ac.IsStudent():
		list, err = students.ListByAccount(ctx, ac.SubjectID)
	}
	if err != nil {
		return access.Reach{}, err
	}
	return access.NewReach(list), nil
}

// visibleStudent 在 access.CanReadStudent 之外，任课教师也可以查看选修其科目的学生
func visibleStudent(ctx context.Context, students StudentStore, ac access.AuthContext, id uint) (*model.Student, error) {
	student, err := students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	denied := access.CanReadStudent(ac, student)
	if denied == nil {
		return student, nil
	}
	if !ac.IsTeacher() {
		return nil, denied
	}
	taught, err := students.TaughtBy(ctx, id, ac.SubjectID)
	if err != nil {
		return nil, err
	}
	if !taught {
		return nil, denied
	}
	return student, nil
}
