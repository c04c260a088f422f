package service

import (
	"errors"
	"log"

	"github.com/titech/leadpro_server/config"
	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/pkg/jwt"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
	"github.com/titech/leadpro_server/internal/store"
)

type AuthService struct {
	store store.Store
	cfg   *config.Config
}

func NewAuthService(st store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: st,
		cfg:   cfg,
	}
}

// Authenticate 登录判定：查记录 → 验密码 → 查激活状态。
// 三种结果走 AuthResult.Status，只有后端不可用才返回 error。
func (s *AuthService) Authenticate(username, password string) (*dto.AuthResult, error) {
	user, err := s.store.Get(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &dto.AuthResult{Status: dto.StatusInvalid}, nil
		}
		return nil, err
	}

	ok, legacy := passwd.Verify(password, user.Password)
	if !ok {
		return &dto.AuthResult{Status: dto.StatusInvalid}, nil
	}

	if legacy {
		// 存的是历史明文，趁登录改写成摘要。只试这一次，
		// 改写失败不影响本次登录，下次登录再有机会升级。
		np := password
		if err := s.store.UpdateUser(user.Username, &model.UserUpdate{Password: &np}); err != nil {
			log.Printf("Warning: legacy password upgrade failed for %s: %v", user.Username, err)
		}
	}

	if !user.Active {
		return &dto.AuthResult{Status: dto.StatusInactive}, nil
	}

	return &dto.AuthResult{
		Status:  dto.StatusSuccess,
		Role:    user.Role,
		Session: buildSession(user),
	}, nil
}

// Login HTTP 入口，认证通过后签发 token
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	result, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	resp := &dto.LoginResponse{Status: result.Status}
	if result.Status != dto.StatusSuccess {
		return resp, nil
	}

	token, err := jwt.GenerateToken(result.Session.Username, result.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	resp.Token = token
	resp.Role = result.Role
	resp.Session = result.Session
	return resp, nil
}

// buildSession 组装会话快照。管理员无视存储值，
// 一律按 enterprise 套餐和额度哨兵值下发。
func buildSession(user *model.User) *dto.SessionInfo {
	info := &dto.SessionInfo{
		Username:        user.Username,
		Role:            user.Role,
		Plan:            user.Plan,
		OpenrouterKey:   user.OpenrouterKey,
		AimlapiKey:      user.AimlapiKey,
		BytezKey:        user.BytezKey,
		DefaultProvider: user.DefaultProvider,
		SMTPUser:        user.SMTPUser,
		SMTPPass:        user.SMTPPass,
		GSheetsCreds:    user.GSheetsCreds,
		UsageCount:      user.UsageCount,
		UsageLimit:      user.UsageLimit,
		EmailCount:      user.EmailCount,
		EmailLimit:      user.EmailLimit,
	}

	if user.Role == model.RoleAdmin {
		info.Plan = model.PlanEnterprise
		info.UsageLimit = model.UnlimitedLimit
		info.EmailLimit = model.UnlimitedLimit
	}

	return info
}
