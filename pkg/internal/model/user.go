package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型，密码只存 bcrypt 哈希.
type User struct {
	ID       uint   `gorm:"primaryKey"              json:"id"`
	Name     string `gorm:"size:255;not null"       json:"name"`
	Email    string `gorm:"size:255;uniqueIndex"    json:"email"`
	Password string `gorm:"size:255;not null"       json:"-"`
	Role     string `gorm:"size:64;default:member"  json:"role"`
	// LastActive 每次通过认证请求时刷新
	LastActive time.Time `gorm:"index" json:"last_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
