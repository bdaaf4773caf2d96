package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// StartupUser 主站用户 - 获客站点的独立身份，不属于任何租户，
// 通过UserProfile与零个或多个租户建立成员关系
type StartupUser struct {
	BaseModel
	Email           string     `json:"email" gorm:"uniqueIndex;not null;size:100"`
	FirstName       string     `json:"first_name" gorm:"not null;size:50"`
	LastName        string     `json:"last_name" gorm:"not null;size:50"`
	PasswordHash    string     `json:"-" gorm:"not null;size:255"`
	SubjectID       string     `json:"-" gorm:"size:100;index"` // 身份服务的主体ID
	Status          string     `json:"status" gorm:"default:'active';size:20"`
	IsPlatformAdmin bool       `json:"is_platform_admin" gorm:"default:false"`
	LastLoginAt     *time.Time `json:"last_login_at"`
}

// TableName 表名
func (u *StartupUser) TableName() string {
	return "startup_users"
}

// 主站用户状态常量
const (
	StartupUserStatusActive   = "active"
	StartupUserStatusInactive = "inactive"
)

// SetPassword 设置密码
func (u *StartupUser) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *StartupUser) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
