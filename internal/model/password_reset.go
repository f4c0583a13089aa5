package model

import "time"

type PasswordResetToken struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID  uint      `gorm:"index;not null" json:"accountId"`
	Token      string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	ExpiryDate time.Time `gorm:"not null" json:"expiryDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiryDate)
}
