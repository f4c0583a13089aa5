package model

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

// Account 教师/家长/学生共用的身份与登录信息，角色专属字段放在各自的 Profile 表中
// swagger:model Account
type Account struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	Username string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:128;not null" json:"-"`
	Role     Role   `gorm:"size:16;index;not null" json:"role"`

	TeacherProfile *TeacherProfile `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"teacherProfile,omitempty"`
	ParentProfile  *ParentProfile  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"parentProfile,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

type TeacherProfile struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	AccountID uint   `gorm:"uniqueIndex;not null" json:"accountId"`
	Subject   string `gorm:"size:50" json:"subject"`
}

func (TeacherProfile) TableName() string {
	return "teacher_profiles"
}

type ParentProfile struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	AccountID uint   `gorm:"uniqueIndex;not null" json:"accountId"`
	Phone     string `gorm:"size:30" json:"phone"`
}

func (ParentProfile) TableName() string {
	return "parent_profiles"
}
