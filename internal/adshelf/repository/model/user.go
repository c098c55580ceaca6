package model

import (
	"time"
)

// User 控制台用户
type User struct {
	ID           string    `gorm:"primaryKey;type:text;column:id" json:"id"` // u-{sonyflake}
	Email        string    `gorm:"type:text;not null;uniqueIndex:idx_users_email;column:email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null;column:password_hash" json:"-"` // bcrypt
	CreatedAt    time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
