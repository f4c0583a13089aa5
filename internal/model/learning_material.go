package model

import "time"

// swagger:model LearningMaterial
type LearningMaterial struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	FilePath    string    `gorm:"size:200;not null" json:"filePath"`
	FileName    string    `gorm:"size:200" json:"fileName"`
	ContentType string    `gorm:"size:100" json:"contentType"`
	Size        int64     `json:"size"`
	UploadDate  time.Time `gorm:"autoCreateTime" json:"uploadDate"`
	TeacherID   uint      `gorm:"index;not null" json:"teacherId"`
	SubjectID   uint      `gorm:"index;not null" json:"subjectId"`
}

func (LearningMaterial) TableName() string {
	return "learning_material"
}
