package service

import (
	"context"
	"seclink_backend/internal/access"
	"seclink_backend/internal/config"
	"seclink_backend/internal/grading"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"seclink_backend/pkg/monitoring"
	"seclink_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	PolicyAppend    = "append"
	PolicyOverwrite = "overwrite"
)

// OverallGrade 缓存的总评及其是否落后于当前成绩集合
// swagger:model OverallGrade
type OverallGrade struct {
	StudentID  uint       `json:"studentId"`
	Grade      *string    `json:"overallGrade"`
	ComputedAt *time.Time `json:"computedAt,omitempty"`
	GradeCount int        `json:"gradeCount"`
	Scale      string     `json:"scale"`
	Stale      bool       `json:"stale"`
}

type GradeService struct {
	Grades   GradeStore
	Students StudentStore
	Subjects SubjectStore
	Now      func() time.Time

	mu     sync.RWMutex
	scale  grading.Scale
	policy string
}

func NewGradeService(grades GradeStore, students StudentStore, subjects SubjectStore, cfg config.GradingConfig) *GradeService {
	s := &GradeService{
		Grades:   grades,
		Students: students,
		Subjects: subjects,
		Now:      time.Now,
	}
	s.SetGradingConfig(cfg)
	return s
}

// SetGradingConfig 配置热更新时调用
func (s *GradeService) SetGradingConfig(cfg config.GradingConfig) {
	policy := PolicyAppend
	if cfg.Policy == PolicyOverwrite {
		policy = PolicyOverwrite
	}

	s.mu.Lock()
	s.scale = grading.ParseScale(cfg.Scale)
	s.policy = policy
	s.mu.Unlock()

	logger.Log.Info("grading config applied", zap.String("scale", cfg.Scale), zap.String("policy", policy))
}

func (s *GradeService) settings() (grading.Scale, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale, s.policy
}

// AddGrade 科目任课教师为已选课学生录入成绩
func (s *GradeService) AddGrade(ctx context.Context, ac access.AuthContext, studentID, subjectID uint, letter string) (*model.Grade, error) {
	l, err := grading.NormalizeLetter(letter)
	if err != nil {
		return nil, err
	}

	student, err := s.Students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	subject, err := s.Subjects.FindByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if err := access.CanWriteGrade(ac, subject); err != nil {
		return nil, err
	}
	if !enrolled(student, subjectID) {
		return nil, util.Validationf("student %d is not enrolled in subject %d", studentID, subjectID)
	}

	_, policy := s.settings()
	grade := &model.Grade{
		Letter:    l,
		StudentID: studentID,
		SubjectID: subjectID,
	}
	if policy == PolicyOverwrite {
		err = s.Grades.ReplaceGrade(ctx, grade)
	} else {
		err = s.Grades.AddGrade(ctx, grade)
	}
	if err != nil {
		return nil, err
	}

	monitoring.GradesRecorded.WithLabelValues(l, policy).Inc()
	logger.Log.Info("grade recorded",
		zap.Uint("student_id", studentID),
		zap.Uint("subject_id", subjectID),
		zap.String("grade", l),
		zap.String("policy", policy),
	)
	return grade, nil
}

func enrolled(student *model.Student, subjectID uint) bool {
	for _, sub := range student.Subjects {
		if sub.ID == subjectID {
			return true
		}
	}
	return false
}

// readableStudent 返回学生以及调用方是否只能看到自己任教科目的成绩
func (s *GradeService) readableStudent(ctx context.Context, ac access.AuthContext, studentID uint) (*model.Student, bool, error) {
	student, err := s.Students.FindByID(ctx, studentID)
	if err != nil {
		return nil, false, err
	}
	subjectOnly := false
	if ac.IsTeacher() && student.TeacherID != ac.SubjectID {
		taught, err := s.Students.TaughtBy(ctx, studentID, ac.SubjectID)
		if err != nil {
			return nil, false, err
		}
		subjectOnly = taught
	}
	if err := access.CanReadGrades(ac, student, subjectOnly); err != nil {
		return nil, false, err
	}
	return student, subjectOnly, nil
}

// GradesFor 任课教师（非班主任）只能看到自己科目下的成绩
func (s *GradeService) GradesFor(ctx context.Context, ac access.AuthContext, studentID uint) ([]model.Grade, error) {
	_, subjectOnly, err := s.readableStudent(ctx, ac, studentID)
	if err != nil {
		return nil, err
	}
	grades, err := s.Grades.GradesFor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !subjectOnly {
		return grades, nil
	}

	owned, err := s.Subjects.ListByTeacher(ctx, ac.SubjectID)
	if err != nil {
		return nil, err
	}
	mine := make(map[uint]bool, len(owned))
	for _, sub := range owned {
		mine[sub.ID] = true
	}
	filtered := make([]model.Grade, 0, len(grades))
	for _, g := range grades {
		if mine[g.SubjectID] {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

// RecomputeOverall 重新计算并覆盖缓存的总评，并发调用以最后一次写入为准
func (s *GradeService) RecomputeOverall(ctx context.Context, ac access.AuthContext, studentID uint) (result *OverallGrade, err error) {
	ctx, span := tracing.Tracer.Start(ctx, "GradeService.RecomputeOverall")
	span.SetAttributes(attribute.Int64("student.id", int64(studentID)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	student, err := s.Students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := access.CanRecomputeOverall(ac, student); err != nil {
		return nil, err
	}

	grades, err := s.Grades.GradesFor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	letters := make([]string, len(grades))
	for i, g := range grades {
		letters[i] = g.Letter
	}

	scale, _ := s.settings()
	letter, err := grading.NewAggregator(scale).Overall(letters)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	if err := s.Students.UpdateOverallGrade(ctx, studentID, letter, now); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("grading.scale", string(scale)),
		attribute.String("grading.overall", letter),
		attribute.Int("grading.count", len(letters)),
	)
	monitoring.OverallComputations.WithLabelValues(letter, string(scale)).Inc()
	logger.Log.Info("overall grade recomputed",
		zap.Uint("student_id", studentID),
		zap.String("overall", letter),
		zap.String("scale", string(scale)),
		zap.Int("grades", len(letters)),
	)

	return &OverallGrade{
		StudentID:  studentID,
		Grade:      &letter,
		ComputedAt: &now,
		GradeCount: len(letters),
		Scale:      string(scale),
	}, nil
}

// OverallGrade 读取缓存值；晚于计算时间写入的成绩会使其标记为 stale
func (s *GradeService) OverallGrade(ctx context.Context, ac access.AuthContext, studentID uint) (*OverallGrade, error) {
	student, _, err := s.readableStudent(ctx, ac, studentID)
	if err != nil {
		return nil, err
	}
	grades, err := s.Grades.GradesFor(ctx, studentID)
	if err != nil {
		return nil, err
	}

	scale, _ := s.settings()
	out := &OverallGrade{
		StudentID:  studentID,
		Grade:      student.OverallGrade,
		ComputedAt: student.OverallComputedAt,
		GradeCount: len(grades),
		Scale:      string(scale),
	}
	switch {
	case student.OverallGrade == nil || student.OverallComputedAt == nil:
		out.Stale = len(grades) > 0
	default:
		for _, g := range grades {
			if g.CreatedAt.After(*student.OverallComputedAt) || g.UpdatedAt.After(*student.OverallComputedAt) {
				out.Stale = true
				break
			}
		}
	}
	return out, nil
}
