package service

import (
	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/store"
)

// UserService 账号管理门面，错误分类（NotFound/Conflict/Unavailable/Validation）
// 原样透传给 handler 层翻译
type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

func (s *UserService) ListUsers() ([]model.UserSummary, error) {
	return s.store.List()
}

func (s *UserService) GetUser(username string) (*model.User, error) {
	return s.store.Get(username)
}

func (s *UserService) AddUser(req *dto.AddUserRequest) error {
	return s.store.Add(req.Username, req.Password, req.Role)
}

func (s *UserService) UpdateUser(username string, req *dto.UpdateUserRequest) error {
	return s.store.UpdateUser(username, &model.UserUpdate{
		Password:   req.Password,
		Role:       req.Role,
		Active:     req.Active,
		Plan:       req.Plan,
		UsageLimit: req.UsageLimit,
		EmailLimit: req.EmailLimit,
	})
}

func (s *UserService) DeleteUser(username string) error {
	return s.store.Delete(username)
}

func (s *UserService) UpdateSettings(username string, settings map[string]any) error {
	return s.store.UpdateSettings(username, settings)
}

// UpdateAPIKey 设置 OpenRouter key 的快捷入口
func (s *UserService) UpdateAPIKey(username, key string) error {
	return s.store.UpdateSettings(username, map[string]any{"openrouter_key": key})
}

// StorageStatus 存储后端状态面板数据
func (s *UserService) StorageStatus() (*dto.StorageStatus, error) {
	items, err := s.store.List()
	if err != nil {
		return nil, err
	}

	kind := s.store.Kind()
	return &dto.StorageStatus{
		Kind:        string(kind),
		DisplayName: kind.DisplayName(),
		Persistent:  kind.Persistent(),
		TotalUsers:  len(items),
	}, nil
}

func (s *UserService) StorageKind() store.Kind {
	return s.store.Kind()
}
