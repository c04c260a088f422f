package dto

// BackupRow 备份 CSV 的一行，username 之外的列都可缺省
type BackupRow struct {
	Username   string
	Role       string
	Active     bool
	Plan       string
	UsageLimit int
	EmailLimit int
}

// RestoreReport 仅插入式恢复的结果
type RestoreReport struct {
	Restored int        `json:"restored"`
	Skipped  int        `json:"skipped"`
	Failed   []RowError `json:"failed,omitempty"`
}

// MergeReport 合并（upsert）的结果
type MergeReport struct {
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Failed   []RowError `json:"failed,omitempty"`
}

// RowError 批量操作里单行的失败，不会中断整批
type RowError struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// MigrateResult 本地库迁移到表格的结果
type MigrateResult struct {
	Inserted int    `json:"inserted"`
	Message  string `json:"message"`
}

// EmergencyExport 应急导出：某一时刻的完整快照，不可用于恢复
type EmergencyExport struct {
	ExportTimestamp string              `json:"export_timestamp"`
	StorageType     string              `json:"storage_type"`
	TotalUsers      int                 `json:"total_users"`
	UserData        []map[string]string `json:"user_data"`
}
