package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/pkg/response"
	"github.com/titech/leadpro_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		// 后端不可用不能伪装成密码错误
		response.UnavailableError(c, "")
		return
	}

	// 三种判定都按结果值下发，data.status 供前端区分提示文案
	switch resp.Status {
	case dto.StatusSuccess:
		response.SuccessWithMessage(c, "登录成功", resp)
	case dto.StatusInactive:
		response.SuccessWithMessage(c, "账号已停用，请联系管理员", resp)
	default:
		response.SuccessWithMessage(c, "用户名或密码错误", resp)
	}
}
