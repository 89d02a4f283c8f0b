// Package model 核心数据模型测试
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserRole_Values 验证 UserRole 枚举值
func TestUserRole_Values(t *testing.T) {
	assert.Equal(t, UserRole("admin"), UserRoleAdmin)
	assert.Equal(t, UserRole("user"), UserRoleUser)
}

// TestUser_IsAdmin 验证角色判断
func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: UserRoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: UserRoleUser}).IsAdmin())
}

// TestUser_HasPendingRecovery 验证找回状态判断
func TestUser_HasPendingRecovery(t *testing.T) {
	code := "A1B2"
	now := time.Now()

	u := &User{}
	assert.False(t, u.HasPendingRecovery())

	u.RecoveryCode = &code
	u.RecoveryCodeGeneratedAt = &now
	assert.True(t, u.HasPendingRecovery())
}

// TestUser_JSONHidesSecrets 验证密码哈希和找回码不出现在 JSON 中
func TestUser_JSONHidesSecrets(t *testing.T) {
	code := "Z9X8"
	now := time.Now()
	u := &User{
		ID:                      "usr-001",
		Username:                "ana",
		Email:                   "ana@example.com",
		PasswordHash:            "$2a$12$secret",
		Role:                    UserRoleUser,
		RecoveryCode:            &code,
		RecoveryCodeGeneratedAt: &now,
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "Z9X8")
	assert.Contains(t, string(data), "ana@example.com")
}

// TestProductVariant_BelowMinimum 验证最低库存判断
func TestProductVariant_BelowMinimum(t *testing.T) {
	v := &ProductVariant{Stock: 5, StockMin: 3}
	assert.False(t, v.BelowMinimum())

	v.Stock = 2
	assert.True(t, v.BelowMinimum())
}
