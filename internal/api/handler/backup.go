package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/pkg/response"
	"github.com/titech/leadpro_server/internal/service"
)

type BackupHandler struct {
	backupService *service.BackupService
}

func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// Migrate 本地库迁移到 Google Sheets
// POST /api/v1/admin/migrate
func (h *BackupHandler) Migrate(c *gin.Context) {
	result, err := h.backupService.MigrateToSheet()
	if err != nil {
		if errors.Is(err, service.ErrSheetNotConnected) {
			response.ParamError(c, err.Error())
			return
		}
		storeError(c, err)
		return
	}
	response.SuccessWithMessage(c, result.Message, result)
}

// Restore 从备份 CSV 仅插入式恢复
// POST /api/v1/admin/backup/restore (multipart: file)
func (h *BackupHandler) Restore(c *gin.Context) {
	rows, ok := h.readBackupFile(c)
	if !ok {
		return
	}
	report := h.backupService.Restore(rows)
	response.Success(c, report)
}

// Merge 备份 CSV 与现有数据合并
// POST /api/v1/admin/backup/merge (multipart: file)
func (h *BackupHandler) Merge(c *gin.Context) {
	rows, ok := h.readBackupFile(c)
	if !ok {
		return
	}
	report := h.backupService.Merge(rows)
	response.Success(c, report)
}

func (h *BackupHandler) readBackupFile(c *gin.Context) ([]dto.BackupRow, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请上传备份 CSV 文件")
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ServerError(c, "")
		return nil, false
	}
	defer file.Close()

	rows, err := service.ParseBackupCSV(file)
	if err != nil {
		response.ParamError(c, err.Error())
		return nil, false
	}
	return rows, true
}

// Export 下载当前后端的 CSV 备份
// GET /api/v1/admin/backup/export
func (h *BackupHandler) Export(c *gin.Context) {
	// 先在内存里导完，失败还能走 JSON 错误响应，不会带着下载头吐半截文件
	var buf bytes.Buffer
	if err := h.backupService.ExportCSV(&buf); err != nil {
		storeError(c, err)
		return
	}

	filename := fmt.Sprintf("user_backup_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// Emergency 应急 JSON 快照
// GET /api/v1/admin/backup/emergency
func (h *BackupHandler) Emergency(c *gin.Context) {
	snapshot, err := h.backupService.EmergencyExport()
	if err != nil {
		storeError(c, err)
		return
	}
	response.Success(c, snapshot)
}
