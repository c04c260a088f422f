package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
)

// Conn 远程表格连接。实现见 internal/pkg/gsheets，测试用 testutil 里的内存假表。
// 网络超时由提供连接的一方保证，这一层不做重试。
type Conn interface {
	// ReadAll 读整张表，第一行是表头
	ReadAll() ([][]string, error)
	// WriteAll 整表覆盖写回
	WriteAll(rows [][]string) error
}

// SheetStore 把远程表格当行式数据库用。没有任何事务隔离：
// 每次操作都是整表读、内存改、整表写回，并发写同一用户名时后写覆盖先写
// （last write wins）。这是接受的限制，管理类批量操作需要调用方自行串行化。
type SheetStore struct {
	conn Conn
}

func NewSheetStore(conn Conn) *SheetStore {
	return &SheetStore{conn: conn}
}

// Ensure 初始化远程表格，幂等。连不上时原样跳过，绝不能把连接失败
// 当成"表是空的"去覆盖远端数据；空表或缺 username 表头才写入
// 规范表头和种子管理员。已有数据的表原样保留，新列只在读取时按默认值补齐。
func (s *SheetStore) Ensure() error {
	tab, err := s.load()
	if err != nil {
		return err
	}

	if tab.hasColumn("username") && len(tab.rows) > 0 {
		return nil
	}

	admin := BootstrapAdminUser()
	fresh := &sheetTable{header: append([]string(nil), model.Columns...)}
	fresh.append(admin.ToRow())
	return s.save(fresh)
}

func (s *SheetStore) Get(username string) (*model.User, error) {
	username = model.NormalizeUsername(username)

	tab, err := s.load()
	if err != nil {
		return nil, err
	}
	idx := tab.find(username)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return model.UserFromRow(tab.rowMap(idx)), nil
}

func (s *SheetStore) All() ([]model.User, error) {
	tab, err := s.load()
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(tab.rows))
	for i := range tab.rows {
		u := model.UserFromRow(tab.rowMap(i))
		if u.Username == "" {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

// List 按表格行序返回，调用方不应依赖顺序
func (s *SheetStore) List() ([]model.UserSummary, error) {
	users, err := s.All()
	if err != nil {
		return nil, err
	}
	items := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		items = append(items, model.UserSummary{
			Username: u.Username,
			Role:     u.Role,
			Active:   u.Active,
		})
	}
	return items, nil
}

func (s *SheetStore) Add(username, password, role string) error {
	username = model.NormalizeUsername(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return fmt.Errorf("%w: 用户名和密码不能为空", ErrValidation)
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return fmt.Errorf("%w: 未知角色 %q", ErrValidation, role)
	}

	return s.Insert(&model.User{
		Username:        username,
		Password:        passwd.Hash(password),
		Role:            role,
		Active:          true,
		CreatedAt:       time.Now(),
		DefaultProvider: "openrouter",
		Plan:            model.PlanFree,
		UsageLimit:      model.DefaultUsageLimit,
		EmailLimit:      model.DefaultEmailLimit,
	})
}

func (s *SheetStore) Insert(u *model.User) error {
	u.Username = model.NormalizeUsername(u.Username)

	tab, err := s.load()
	if err != nil {
		return err
	}
	if tab.find(u.Username) >= 0 {
		return ErrConflict
	}

	// 老表可能缺新列，先把规范列补齐再追加整行
	for _, col := range model.Columns {
		tab.ensureColumn(col)
	}
	tab.append(u.ToRow())
	return s.save(tab)
}

func (s *SheetStore) UpdateSettings(username string, settings map[string]any) error {
	username = model.NormalizeUsername(username)

	tab, err := s.load()
	if err != nil {
		return err
	}
	idx := tab.find(username)
	if idx < 0 {
		return ErrNotFound
	}

	for key, value := range settings {
		// 表格天然无模式，未知键直接新建列
		v, err := settingValue(key, value)
		if err != nil {
			return err
		}
		tab.ensureColumn(key)
		tab.set(idx, key, fmt.Sprint(v))
	}
	return s.save(tab)
}

func (s *SheetStore) UpdateUser(username string, upd *model.UserUpdate) error {
	username = model.NormalizeUsername(username)

	updates, err := userUpdateFields(upd)
	if err != nil {
		return err
	}

	tab, err := s.load()
	if err != nil {
		return err
	}
	idx := tab.find(username)
	if idx < 0 {
		return ErrNotFound
	}

	for key, value := range updates {
		tab.ensureColumn(key)
		tab.set(idx, key, cellText(value))
	}
	return s.save(tab)
}

func (s *SheetStore) Delete(username string) error {
	username = model.NormalizeUsername(username)

	tab, err := s.load()
	if err != nil {
		return err
	}
	idx := tab.find(username)
	if idx < 0 {
		return ErrNotFound
	}

	tab.rows = append(tab.rows[:idx], tab.rows[idx+1:]...)
	return s.save(tab)
}

func (s *SheetStore) Kind() Kind {
	return KindSheet
}

func (s *SheetStore) load() (*sheetTable, error) {
	rows, err := s.conn.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tab := &sheetTable{}
	if len(rows) > 0 {
		tab.header = rows[0]
		tab.rows = rows[1:]
	}
	return tab, nil
}

func (s *SheetStore) save(tab *sheetTable) error {
	out := make([][]string, 0, len(tab.rows)+1)
	out = append(out, tab.header)
	out = append(out, tab.rows...)
	if err := s.conn.WriteAll(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func cellText(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "1"
		}
		return "0"
	}
	return fmt.Sprint(v)
}

// sheetTable 整表的内存镜像
type sheetTable struct {
	header []string
	rows   [][]string
}

func (t *sheetTable) hasColumn(name string) bool {
	return t.colIndex(name) >= 0
}

func (t *sheetTable) colIndex(name string) int {
	for i, col := range t.header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

// ensureColumn 表头里没有就加一列，已有行补空单元格
func (t *sheetTable) ensureColumn(name string) {
	if t.hasColumn(name) {
		return
	}
	t.header = append(t.header, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
}

func (t *sheetTable) find(username string) int {
	c := t.colIndex("username")
	if c < 0 {
		return -1
	}
	for i, row := range t.rows {
		if c < len(row) && model.NormalizeUsername(row[c]) == username {
			return i
		}
	}
	return -1
}

func (t *sheetTable) rowMap(idx int) map[string]string {
	row := t.rows[idx]
	m := make(map[string]string, len(t.header))
	for i, col := range t.header {
		key := strings.ToLower(strings.TrimSpace(col))
		if i < len(row) {
			m[key] = row[i]
		}
	}
	return m
}

func (t *sheetTable) set(idx int, column, value string) {
	c := t.colIndex(column)
	if c < 0 {
		return
	}
	row := t.rows[idx]
	for len(row) <= c {
		row = append(row, "")
	}
	row[c] = value
	t.rows[idx] = row
}

func (t *sheetTable) append(rowMap map[string]string) {
	row := make([]string, len(t.header))
	for i, col := range t.header {
		row[i] = rowMap[strings.ToLower(strings.TrimSpace(col))]
	}
	t.rows = append(t.rows, row)
}
