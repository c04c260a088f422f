package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// 角色与套餐取值
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// UnlimitedLimit 管理员账户的额度哨兵值
const UnlimitedLimit = 1000000

// 普通用户的默认额度
const (
	DefaultUsageLimit = 50
	DefaultEmailLimit = 100
)

// User 用户记录。username 为唯一主键（统一小写），password 存 sha256 摘要。
type User struct {
	Username        string    `gorm:"primaryKey;size:50" json:"username"`
	Password        string    `gorm:"size:255" json:"-"`
	Role            string    `gorm:"size:20;default:user" json:"role"`
	Active          bool      `gorm:"default:true" json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	OpenrouterKey   string    `gorm:"column:openrouter_key;size:255" json:"-"`
	AimlapiKey      string    `gorm:"column:aimlapi_key;size:255" json:"-"`
	BytezKey        string    `gorm:"column:bytez_key;size:255" json:"-"`
	DefaultProvider string    `gorm:"size:50;default:openrouter" json:"default_provider"`
	SMTPUser        string    `gorm:"column:smtp_user;size:255" json:"-"`
	SMTPPass        string    `gorm:"column:smtp_pass;size:255" json:"-"`
	GSheetsCreds    string    `gorm:"column:gsheets_creds;type:text" json:"-"`
	Plan            string    `gorm:"size:20;default:free" json:"plan"`
	UsageCount      int       `gorm:"default:0" json:"usage_count"`
	UsageLimit      int       `gorm:"default:50" json:"usage_limit"`
	EmailCount      int       `gorm:"default:0" json:"email_count"`
	EmailLimit      int       `gorm:"default:100" json:"email_limit"`
}

func (User) TableName() string {
	return "users"
}

// Columns 规范列集合，只增不减，顺序即表格和 CSV 备份的列顺序
var Columns = []string{
	"username",
	"password",
	"role",
	"active",
	"created_at",
	"openrouter_key",
	"aimlapi_key",
	"bytez_key",
	"default_provider",
	"smtp_user",
	"smtp_pass",
	"gsheets_creds",
	"plan",
	"usage_count",
	"usage_limit",
	"email_count",
	"email_limit",
}

// NormalizeUsername 用户名统一小写并去除首尾空白
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ParseActive 宽松的布尔解析：true/1/yes 视为激活，其余（包括解析失败）一律视为停用
func ParseActive(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// ParseCount 宽松的整数解析，表格单元格里可能存着 "50.0" 这类浮点文本。
// 计数列必须非负，NaN/Inf 或负数一律回落默认值。
func ParseCount(v string, def int) int {
	s := strings.TrimSpace(v)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return def
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return def
		}
		return int(f)
	}
	return def
}

// ToRow 导出为规范列名到单元格文本的映射，表格后端与备份导出共用
func (u *User) ToRow() map[string]string {
	active := "0"
	if u.Active {
		active = "1"
	}
	created := ""
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.Format(time.RFC3339)
	}
	return map[string]string{
		"username":         u.Username,
		"password":         u.Password,
		"role":             u.Role,
		"active":           active,
		"created_at":       created,
		"openrouter_key":   u.OpenrouterKey,
		"aimlapi_key":      u.AimlapiKey,
		"bytez_key":        u.BytezKey,
		"default_provider": u.DefaultProvider,
		"smtp_user":        u.SMTPUser,
		"smtp_pass":        u.SMTPPass,
		"gsheets_creds":    u.GSheetsCreds,
		"plan":             u.Plan,
		"usage_count":      strconv.Itoa(u.UsageCount),
		"usage_limit":      strconv.Itoa(u.UsageLimit),
		"email_count":      strconv.Itoa(u.EmailCount),
		"email_limit":      strconv.Itoa(u.EmailLimit),
	}
}

// UserFromRow 从列名映射还原记录，缺失的新列按默认值补齐（只在读取侧，不回写远端）
func UserFromRow(row map[string]string) *User {
	get := func(key, def string) string {
		if v, ok := row[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	u := &User{
		Username:        NormalizeUsername(get("username", "")),
		Password:        get("password", ""),
		Role:            get("role", RoleUser),
		Active:          ParseActive(get("active", "1")),
		OpenrouterKey:   get("openrouter_key", ""),
		AimlapiKey:      get("aimlapi_key", ""),
		BytezKey:        get("bytez_key", ""),
		DefaultProvider: get("default_provider", "openrouter"),
		SMTPUser:        get("smtp_user", ""),
		SMTPPass:        get("smtp_pass", ""),
		GSheetsCreds:    get("gsheets_creds", ""),
		Plan:            get("plan", PlanFree),
		UsageCount:      ParseCount(row["usage_count"], 0),
		UsageLimit:      ParseCount(row["usage_limit"], DefaultUsageLimit),
		EmailCount:      ParseCount(row["email_count"], 0),
		EmailLimit:      ParseCount(row["email_limit"], DefaultEmailLimit),
	}

	if created := get("created_at", ""); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			u.CreatedAt = t
		}
	}

	return u
}

// UserSummary 管理列表用的投影
type UserSummary struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// UserUpdate 按字段补丁更新，nil 表示不改动
type UserUpdate struct {
	Password   *string
	Role       *string
	Active     *bool
	Plan       *string
	UsageLimit *int
	EmailLimit *int
}
