package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
)

// BootstrapAdminPassword 首次初始化时种子管理员的公开初始密码，
// 上线后应立即修改。
const (
	BootstrapAdminUsername = "admin"
	BootstrapAdminPassword = "admin"
)

// columnMigration 一次只增不减的列变更。列表有序、可重复执行：
// 已存在的列直接跳过。禁止删除或改名已有列，老库里还有活数据。
type columnMigration struct {
	Column string
	DDL    string
}

var columnMigrations = []columnMigration{
	{"created_at", "created_at DATETIME"},
	{"openrouter_key", "openrouter_key VARCHAR(255)"},
	{"aimlapi_key", "aimlapi_key VARCHAR(255)"},
	{"bytez_key", "bytez_key VARCHAR(255)"},
	{"default_provider", "default_provider VARCHAR(50) DEFAULT 'openrouter'"},
	{"smtp_user", "smtp_user VARCHAR(255)"},
	{"smtp_pass", "smtp_pass VARCHAR(255)"},
	{"gsheets_creds", "gsheets_creds TEXT"},
	{"plan", "plan VARCHAR(20) DEFAULT 'free'"},
	{"usage_count", "usage_count INTEGER DEFAULT 0"},
	{"usage_limit", "usage_limit INTEGER DEFAULT 50"},
	{"email_count", "email_count INTEGER DEFAULT 0"},
	{"email_limit", "email_limit INTEGER DEFAULT 100"},
}

// EnsureSchema 把关系库的物理结构补齐到当前版本，幂等。
// 建表用最初的列形态，之后的列全部走增量迁移，这样老库和新库走同一条路径。
// 任何一步 ALTER 失败都直接返回错误：半截结构必须暴露出来，不能静默重试。
func EnsureSchema(db *gorm.DB) error {
	err := db.Exec(`CREATE TABLE IF NOT EXISTS users (
		username VARCHAR(50) PRIMARY KEY,
		password VARCHAR(255),
		role VARCHAR(20) DEFAULT 'user',
		active INTEGER DEFAULT 1
	)`).Error
	if err != nil {
		return fmt.Errorf("创建 users 表失败: %w", err)
	}

	migrator := db.Migrator()
	for _, m := range columnMigrations {
		if migrator.HasColumn(&model.User{}, m.Column) {
			continue
		}
		if err := db.Exec("ALTER TABLE users ADD COLUMN " + m.DDL).Error; err != nil {
			return fmt.Errorf("增加列 %s 失败: %w", m.Column, err)
		}
	}

	return seedBootstrapAdmin(db)
}

// seedBootstrapAdmin 没有任何管理员时种入一个，已有管理员绝不覆盖
func seedBootstrapAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("检查管理员账户失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := BootstrapAdminUser()
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("种入管理员账户失败: %w", err)
	}
	return nil
}

// BootstrapAdminUser 种子管理员记录，表格后端初始化时也用它
func BootstrapAdminUser() *model.User {
	return &model.User{
		Username:        BootstrapAdminUsername,
		Password:        passwd.Hash(BootstrapAdminPassword),
		Role:            model.RoleAdmin,
		Active:          true,
		CreatedAt:       time.Now(),
		DefaultProvider: "openrouter",
		Plan:            model.PlanEnterprise,
		UsageLimit:      model.UnlimitedLimit,
		EmailLimit:      model.UnlimitedLimit,
	}
}
