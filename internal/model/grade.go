package model

import "time"

// Grade 单科成绩，字母取值 A-E
// swagger:model Grade
type Grade struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Letter    string    `gorm:"column:grade;size:2;not null" json:"grade"`
	StudentID uint      `gorm:"index;not null" json:"studentId"`
	SubjectID uint      `gorm:"index;not null" json:"subjectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Grade) TableName() string {
	return "grades"
}
