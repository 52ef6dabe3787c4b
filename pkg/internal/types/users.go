package types

import "time"

// RegisterRequest 用户注册请求.
type RegisterRequest struct {
	Name     string `json:"name"     rule:"required,max=255"`
	Email    string `json:"email"    rule:"required,email"`
	Password string `json:"password" rule:"required,min=8,max=128"`
}

// LoginRequest 用户登录请求.
type LoginRequest struct {
	Email    string `json:"email"    rule:"required,email"`
	Password string `json:"password" rule:"required"`
}

// UserInfo 对外暴露的用户信息，不含密码哈希.
type UserInfo struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateProfileRequest 更新当前用户信息请求.
type UpdateProfileRequest struct {
	Name     string `json:"name"     rule:"omitempty,max=255"`
	Email    string `json:"email"    rule:"omitempty,email"`
	Password string `json:"password" rule:"omitempty,min=8,max=128"`
}

// UserListItem 用户列表项，活跃时间格式化为日期串，从未活跃显示 "Never".
type UserListItem struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	LastActive string `json:"lastActive"`
}

// RegisterResponse 注册响应. 注册即登录，随用户信息返回可用的 JWT.
type RegisterResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// LoginResponse 登录响应，返回 JWT 与用户信息.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}
