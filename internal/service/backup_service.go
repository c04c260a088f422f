package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
	"github.com/titech/leadpro_server/internal/store"
)

var (
	ErrSheetNotConnected = errors.New("Google Sheets 未连接")
	ErrMissingUsername   = errors.New("备份文件缺少 username 列")
)

// PlaceholderPassword 恢复出来的账号统一的占位密码，要求用户事后重置
const PlaceholderPassword = "temp123"

// BackupService 负责跨后端迁移和备份文件的恢复/合并。
// 这些批量操作不和常规 CRUD 做并发互斥，需要调用方自行串行化。
type BackupService struct {
	active store.Store
	local  *store.SQLStore
	sheet  *store.SheetStore
}

// NewBackupService sheet 未连接时传 nil，迁移会直接报错
func NewBackupService(active store.Store, local *store.SQLStore, sheet *store.SheetStore) *BackupService {
	return &BackupService{
		active: active,
		local:  local,
		sheet:  sheet,
	}
}

// MigrateToSheet 把本地库用户补进表格，只插缺失的用户名，
// 表格里已有的记录原样保留（冲突时表格数据优先）。幂等：重跑第二遍插入 0 条。
func (s *BackupService) MigrateToSheet() (*dto.MigrateResult, error) {
	if s.sheet == nil {
		return nil, ErrSheetNotConnected
	}

	locals, err := s.local.All()
	if err != nil {
		return nil, err
	}
	remote, err := s.sheet.All()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(remote))
	for _, u := range remote {
		existing[u.Username] = true
	}

	inserted := 0
	for _, u := range locals {
		if existing[u.Username] {
			continue
		}
		rec := u
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}
		if err := s.sheet.Insert(&rec); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return nil, err
		}
		inserted++
	}

	msg := "没有需要迁移的用户（已全部同步）"
	if inserted > 0 {
		msg = fmt.Sprintf("成功迁移 %d 个用户到 Google Sheets", inserted)
	}
	return &dto.MigrateResult{Inserted: inserted, Message: msg}, nil
}

// Restore 仅插入式恢复：已存在的用户名跳过并计数，绝不更新已有记录。
// 新账号用占位密码落库，调用方要提示用户重置。
func (s *BackupService) Restore(rows []dto.BackupRow) *dto.RestoreReport {
	report := &dto.RestoreReport{}

	for _, row := range rows {
		username := model.NormalizeUsername(row.Username)
		if username == "" {
			report.Failed = append(report.Failed, dto.RowError{Username: row.Username, Reason: "用户名为空"})
			continue
		}

		err := s.active.Insert(restoredUser(username, row))
		switch {
		case err == nil:
			report.Restored++
		case errors.Is(err, store.ErrConflict):
			report.Skipped++
		default:
			report.Failed = append(report.Failed, dto.RowError{Username: username, Reason: err.Error()})
		}
	}
	return report
}

// Merge 合并备份：已有用户就地更新 role/active/plan/limits（密码绝不动），
// 缺失的按 Restore 的方式插入。单行失败只记录，不中断整批。
func (s *BackupService) Merge(rows []dto.BackupRow) *dto.MergeReport {
	report := &dto.MergeReport{}

	for _, row := range rows {
		username := model.NormalizeUsername(row.Username)
		if username == "" {
			report.Failed = append(report.Failed, dto.RowError{Username: row.Username, Reason: "用户名为空"})
			continue
		}

		_, err := s.active.Get(username)
		switch {
		case err == nil:
			role, plan := row.Role, row.Plan
			active := row.Active
			usageLimit, emailLimit := row.UsageLimit, row.EmailLimit
			upd := &model.UserUpdate{
				Role:       &role,
				Active:     &active,
				Plan:       &plan,
				UsageLimit: &usageLimit,
				EmailLimit: &emailLimit,
			}
			if err := s.active.UpdateUser(username, upd); err != nil {
				report.Failed = append(report.Failed, dto.RowError{Username: username, Reason: err.Error()})
				continue
			}
			report.Updated++
		case errors.Is(err, store.ErrNotFound):
			if err := s.active.Insert(restoredUser(username, row)); err != nil {
				report.Failed = append(report.Failed, dto.RowError{Username: username, Reason: err.Error()})
				continue
			}
			report.Inserted++
		default:
			report.Failed = append(report.Failed, dto.RowError{Username: username, Reason: err.Error()})
		}
	}
	return report
}

func restoredUser(username string, row dto.BackupRow) *model.User {
	role := row.Role
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	plan := row.Plan
	switch plan {
	case model.PlanPro, model.PlanEnterprise:
	default:
		plan = model.PlanFree
	}

	return &model.User{
		Username:        username,
		Password:        passwd.Hash(PlaceholderPassword),
		Role:            role,
		Active:          row.Active,
		CreatedAt:       time.Now(),
		DefaultProvider: "openrouter",
		Plan:            plan,
		UsageCount:      0,
		UsageLimit:      row.UsageLimit,
		EmailCount:      0,
		EmailLimit:      row.EmailLimit,
	}
}

// ParseBackupCSV 解析备份 CSV。表头至少要有 username，其余列可缺省。
func ParseBackupCSV(r io.Reader) ([]dto.BackupRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// 手工编辑或 pandas 导出的备份常有长短不齐的行，缺的列按默认值补
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取备份表头失败: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["username"]; !ok {
		return nil, ErrMissingUsername
	}

	cell := func(record []string, name, def string) string {
		i, ok := col[name]
		if !ok || i >= len(record) || strings.TrimSpace(record[i]) == "" {
			return def
		}
		return strings.TrimSpace(record[i])
	}

	var rows []dto.BackupRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取备份行失败: %w", err)
		}

		rows = append(rows, dto.BackupRow{
			Username:   cell(record, "username", ""),
			Role:       cell(record, "role", model.RoleUser),
			Active:     model.ParseActive(cell(record, "active", "1")),
			Plan:       cell(record, "plan", model.PlanFree),
			UsageLimit: model.ParseCount(cell(record, "usage_limit", ""), model.DefaultUsageLimit),
			EmailLimit: model.ParseCount(cell(record, "email_limit", ""), model.DefaultEmailLimit),
		})
	}
	return rows, nil
}

// ExportCSV 把当前后端的全部记录按规范列序导出
func (s *BackupService) ExportCSV(w io.Writer) error {
	users, err := s.active.All()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(model.Columns); err != nil {
		return err
	}
	for i := range users {
		rowMap := users[i].ToRow()
		record := make([]string, len(model.Columns))
		for j, colName := range model.Columns {
			record[j] = rowMap[colName]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// EmergencyExport 应急快照，只用于迁移排障，恢复仍走 CSV
func (s *BackupService) EmergencyExport() (*dto.EmergencyExport, error) {
	users, err := s.active.All()
	if err != nil {
		return nil, err
	}

	data := make([]map[string]string, 0, len(users))
	for i := range users {
		data = append(data, users[i].ToRow())
	}

	return &dto.EmergencyExport{
		ExportTimestamp: time.Now().Format(time.RFC3339),
		StorageType:     s.active.Kind().DisplayName(),
		TotalUsers:      len(users),
		UserData:        data,
	}, nil
}
