package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
)

// SQLStore 关系库后端。每个逻辑操作一条语句，不持有跨语句事务。
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(username string) (*model.User, error) {
	username = model.NormalizeUsername(username)

	var user model.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) All() ([]model.User, error) {
	var users []model.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *SQLStore) List() ([]model.UserSummary, error) {
	var items []model.UserSummary
	err := s.db.Model(&model.User{}).
		Select("username", "role", "active").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SQLStore) Add(username, password, role string) error {
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

func (s *SQLStore) Insert(u *model.User) error {
	u.Username = model.NormalizeUsername(u.Username)

	var count int64
	if err := s.db.Model(&model.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}

	if err := s.db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *SQLStore) UpdateSettings(username string, settings map[string]any) error {
	username = model.NormalizeUsername(username)

	updates := make(map[string]any, len(settings))
	for key, value := range settings {
		// 白名单之外的键一律拒绝，列名不能来自调用方
		if !settableFields[key] {
			return fmt.Errorf("%w: 不允许的设置项 %q", ErrValidation, key)
		}
		v, err := settingValue(key, value)
		if err != nil {
			return err
		}
		updates[key] = v
	}
	if len(updates) == 0 {
		return nil
	}

	if _, err := s.Get(username); err != nil {
		return err
	}
	return s.db.Model(&model.User{}).Where("username = ?", username).Updates(updates).Error
}

func (s *SQLStore) UpdateUser(username string, upd *model.UserUpdate) error {
	username = model.NormalizeUsername(username)

	updates, err := userUpdateFields(upd)
	if err != nil {
		return err
	}

	if _, err := s.Get(username); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&model.User{}).Where("username = ?", username).Updates(updates).Error
}

func (s *SQLStore) Delete(username string) error {
	username = model.NormalizeUsername(username)

	result := s.db.Where("username = ?", username).Delete(&model.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Kind() Kind {
	return KindSQL
}

// userUpdateFields 校验补丁并展开成列名映射，密码在这里散列
func userUpdateFields(upd *model.UserUpdate) (map[string]any, error) {
	updates := make(map[string]any)

	if upd.Password != nil {
		if strings.TrimSpace(*upd.Password) == "" {
			return nil, fmt.Errorf("%w: 密码不能为空", ErrValidation)
		}
		updates["password"] = passwd.Hash(*upd.Password)
	}
	if upd.Role != nil {
		if *upd.Role != model.RoleAdmin && *upd.Role != model.RoleUser {
			return nil, fmt.Errorf("%w: 未知角色 %q", ErrValidation, *upd.Role)
		}
		updates["role"] = *upd.Role
	}
	if upd.Active != nil {
		updates["active"] = *upd.Active
	}
	if upd.Plan != nil {
		switch *upd.Plan {
		case model.PlanFree, model.PlanPro, model.PlanEnterprise:
			updates["plan"] = *upd.Plan
		default:
			return nil, fmt.Errorf("%w: 未知套餐 %q", ErrValidation, *upd.Plan)
		}
	}
	if upd.UsageLimit != nil {
		if *upd.UsageLimit < 0 {
			return nil, fmt.Errorf("%w: usage_limit 需要非负整数", ErrValidation)
		}
		updates["usage_limit"] = *upd.UsageLimit
	}
	if upd.EmailLimit != nil {
		if *upd.EmailLimit < 0 {
			return nil, fmt.Errorf("%w: email_limit 需要非负整数", ErrValidation)
		}
		updates["email_limit"] = *upd.EmailLimit
	}

	return updates, nil
}
