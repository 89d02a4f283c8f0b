package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User 用户
//
// RecoveryCode / RecoveryCodeGeneratedAt 构成密码找回状态机：
// 两者同时为 NULL（无找回流程）或同时非 NULL（找回码已签发，计时中）。
type User struct {
	ID                      string     `json:"id" db:"id"`
	Username                string     `json:"username" db:"username"`
	Email                   string     `json:"email" db:"email"`
	PasswordHash            string     `json:"-" db:"password_hash"` // never expose in JSON
	Role                    UserRole   `json:"role" db:"role"`
	RecoveryCode            *string    `json:"-" db:"recovery_code"`
	RecoveryCodeGeneratedAt *time.Time `json:"-" db:"recovery_code_generated_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// HasPendingRecovery 是否存在进行中的密码找回流程
func (u *User) HasPendingRecovery() bool {
	return u.RecoveryCode != nil
}

// LoginAudit 登录审计记录
type LoginAudit struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	IP        string    `json:"ip" db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
