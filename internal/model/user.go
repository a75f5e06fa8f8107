package model

import (
	"time"
)

// UserModel 用户模型
type UserModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 账号信息
	Email        string `json:"email" gorm:"not null;uniqueIndex" binding:"required,email"`
	PasswordHash string `json:"-" gorm:"not null"`

	// 角色与审核状态
	Role       UserRole `json:"role" gorm:"default:'investor'"`
	IsVerified bool     `json:"is_verified" gorm:"default:false"`

	// 个人资料
	FullName  string `json:"full_name" gorm:"not null"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Bio       string `json:"bio" gorm:"type:text"`
	AvatarURL string `json:"avatar_url"`
}

// UserRole 用户角色
type UserRole string

const (
	UserRoleFounder  UserRole = "founder"  // 发起人
	UserRoleInvestor UserRole = "investor" // 投资人
	UserRoleAdmin    UserRole = "admin"    // 管理员
)

// IsValid 校验角色取值
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleFounder, UserRoleInvestor, UserRoleAdmin:
		return true
	}
	return false
}

// TableName 自定义表名
func (UserModel) TableName() string {
	return "user"
}
