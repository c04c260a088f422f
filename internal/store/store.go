package store

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/titech/leadpro_server/internal/model"
)

// 错误分类。调用方用 errors.Is 区分，不要靠字符串匹配。
var (
	ErrNotFound    = errors.New("用户不存在")
	ErrConflict    = errors.New("用户名已存在")
	ErrUnavailable = errors.New("远程存储暂时不可用")
	ErrValidation  = errors.New("字段值无效")
)

// Kind 存储后端类型
type Kind string

const (
	KindSQL   Kind = "sqlite"
	KindSheet Kind = "gsheets"
)

// DisplayName 给运维界面的持久性提示文案
func (k Kind) DisplayName() string {
	if k == KindSheet {
		return "Google Sheets (Persistent)"
	}
	return "Local SQLite (Temporary on Cloud)"
}

// Persistent 表格后端跨部署持久，本地库在云端容器里随实例销毁
func (k Kind) Persistent() bool {
	return k == KindSheet
}

// Store 用户记录存储的统一契约，进程启动时二选一，运行期不切换。
//
// Insert 直接写入一条已归一化的记录（密码已是摘要），只给迁移与备份恢复用；
// 常规建号走 Add，由 Add 负责散列密码。
type Store interface {
	Get(username string) (*model.User, error)
	All() ([]model.User, error)
	List() ([]model.UserSummary, error)
	Add(username, password, role string) error
	Insert(u *model.User) error
	UpdateSettings(username string, settings map[string]any) error
	UpdateUser(username string, upd *model.UserUpdate) error
	Delete(username string) error
	Kind() Kind
}

// settableFields 可经 UpdateSettings 修改的列。本地库严格按白名单拒绝未知键，
// 防止任意列名注入；表格后端天然无模式，未知键会新建列。
var settableFields = map[string]bool{
	"openrouter_key":   true,
	"aimlapi_key":      true,
	"bytez_key":        true,
	"default_provider": true,
	"smtp_user":        true,
	"smtp_pass":        true,
	"gsheets_creds":    true,
	"plan":             true,
	"usage_count":      true,
	"usage_limit":      true,
	"email_count":      true,
	"email_limit":      true,
}

// integerFields 必须是非负整数的列，整列校验失败就整体拒绝，不落脏值
var integerFields = map[string]bool{
	"usage_count": true,
	"usage_limit": true,
	"email_count": true,
	"email_limit": true,
}

// settingValue 校验并归一化单个设置值。整数列返回 int，其余返回字符串。
func settingValue(key string, value any) (any, error) {
	if integerFields[key] {
		n, err := toInt(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s 需要非负整数", ErrValidation, key)
		}
		return n, nil
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		// JSON 数字经 encoding/json 解出来就是 float64
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("不支持的类型 %T", value)
	}
}
