package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/titech/leadpro_server/internal/model"
)

// HashPassword 与 passwd.Hash 相同的 sha256 摘要，避免 testutil 依赖被测包
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		Username:        fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000),
		Password:        HashPassword("password123"),
		Role:            model.RoleUser,
		Active:          true,
		CreatedAt:       time.Now(),
		DefaultProvider: "openrouter",
		Plan:            model.PlanFree,
		UsageLimit:      model.DefaultUsageLimit,
		EmailLimit:      model.DefaultEmailLimit,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithPassword 设置密码（存摘要）
func WithPassword(password string) func(*model.User) {
	return func(u *model.User) {
		u.Password = HashPassword(password)
	}
}

// WithPlainPassword 直接存明文，模拟手工录入的老数据
func WithPlainPassword(password string) func(*model.User) {
	return func(u *model.User) {
		u.Password = password
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithActive 设置激活状态
func WithActive(active bool) func(*model.User) {
	return func(u *model.User) {
		u.Active = active
	}
}

// WithPlan 设置套餐和额度
func WithPlan(plan string, usageLimit, emailLimit int) func(*model.User) {
	return func(u *model.User) {
		u.Plan = plan
		u.UsageLimit = usageLimit
		u.EmailLimit = emailLimit
	}
}
