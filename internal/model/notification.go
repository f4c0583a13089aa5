package model

// swagger:model Notification
type Notification struct {
	BaseModel
	Message  string `gorm:"type:text;not null" json:"message"`
	SenderID uint   `gorm:"index;not null" json:"senderId"`

	Parents  []Account `gorm:"many2many:notification_parents;joinForeignKey:NotificationID;joinReferences:ParentID" json:"parents,omitempty"`
	Students []Student `gorm:"many2many:notification_students;" json:"students,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
