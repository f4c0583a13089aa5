package model

import "time"

// swagger:model Class
type Class struct {
	BaseModel
	ClassName string `gorm:"size:50;not null" json:"className"`
	TeacherID uint   `gorm:"index;not null" json:"teacherId"`

	Subjects []Subject `gorm:"foreignKey:ClassID" json:"subjects,omitempty"`
}

func (Class) TableName() string {
	return "classes"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	SubjectName string `gorm:"size:100;not null" json:"subjectName"`
	SubjectCode string `gorm:"size:10;not null" json:"subjectCode"`
	ClassID     uint   `gorm:"index;not null" json:"classId"`
	TeacherID   uint   `gorm:"index;not null" json:"teacherId"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Student 学生档案；OverallGrade 是成绩集合的缓存值，录入新成绩后不会自动刷新
// swagger:model Student
type Student struct {
	BaseModel
	Name              string     `gorm:"size:100;not null" json:"name"`
	DOB               time.Time  `gorm:"type:date;not null" json:"dob"`
	ClassID           uint       `gorm:"index;not null" json:"classId"`
	TeacherID         uint       `gorm:"index;not null" json:"teacherId"`
	ParentID          *uint      `gorm:"index" json:"parentId"`
	AccountID         *uint      `gorm:"uniqueIndex" json:"accountId,omitempty"`
	OverallGrade      *string    `gorm:"size:2" json:"overallGrade"`
	OverallComputedAt *time.Time `json:"overallComputedAt,omitempty"`

	Subjects []Subject `gorm:"many2many:student_subjects;" json:"subjects,omitempty"`
}

func (Student) TableName() string {
	return "students"
}
