package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/titech/leadpro_server/internal/api/middleware"
	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/pkg/response"
	"github.com/titech/leadpro_server/internal/service"
	"github.com/titech/leadpro_server/internal/store"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// storeError 把存储层的错误分类翻译成响应码
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, store.ErrConflict):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, store.ErrValidation):
		response.ParamError(c, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		response.UnavailableError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}

// List 用户列表
// GET /api/v1/admin/users
func (h *UserHandler) List(c *gin.Context) {
	items, err := h.userService.ListUsers()
	if err != nil {
		storeError(c, err)
		return
	}
	response.Success(c, items)
}

// Add 新增用户
// POST /api/v1/admin/users
func (h *UserHandler) Add(c *gin.Context) {
	var req dto.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.AddUser(&req); err != nil {
		storeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已创建", nil)
}

// Update 按字段更新用户
// PUT /api/v1/admin/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.UpdateUser(c.Param("username"), &req); err != nil {
		storeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已更新", nil)
}

// Delete 删除用户
// DELETE /api/v1/admin/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Param("username")); err != nil {
		storeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已删除", nil)
}

// UpdateSettings 管理员替任意用户改设置
// PUT /api/v1/admin/users/:username/settings
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.UpdateSettings(c.Param("username"), req.Settings); err != nil {
		storeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "设置已保存", nil)
}

// UpdateMySettings 当前用户改自己的设置
// PUT /api/v1/me/settings
func (h *UserHandler) UpdateMySettings(c *gin.Context) {
	username, ok := middleware.GetUsername(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.userService.UpdateSettings(username, req.Settings); err != nil {
		storeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "设置已保存", nil)
}

// StorageStatus 存储后端状态
// GET /api/v1/admin/storage
func (h *UserHandler) StorageStatus(c *gin.Context) {
	status, err := h.userService.StorageStatus()
	if err != nil {
		storeError(c, err)
		return
	}
	response.Success(c, status)
}
