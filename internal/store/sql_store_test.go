package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
	"github.com/titech/leadpro_server/internal/testutil"
)

func setupSQLStore(t *testing.T) (*SQLStore, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return NewSQLStore(db), cleanup
}

func TestSQLStore_AddAndGet(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("Alice ", "secret", model.RoleUser))

	// 用户名统一小写，大小写混写也能查到
	user, err := store.Get("ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, model.PlanFree, user.Plan)

	ok, legacy := passwd.Verify("secret", user.Password)
	assert.True(t, ok)
	assert.False(t, legacy)
}

func TestSQLStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	_, err := store.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_Add_Conflict(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))

	err := store.Add("alice", "another", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrConflict)

	// 原记录不能被动过
	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	ok, _ := passwd.Verify("secret", user.Password)
	assert.True(t, ok)
}

func TestSQLStore_Add_Validation(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	assert.ErrorIs(t, store.Add("", "secret", model.RoleUser), ErrValidation)
	assert.ErrorIs(t, store.Add("alice", "  ", model.RoleUser), ErrValidation)
	assert.ErrorIs(t, store.Add("alice", "secret", "superuser"), ErrValidation)
}

func TestSQLStore_List(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))
	require.NoError(t, store.Add("bob", "secret", model.RoleAdmin))

	items, err := store.List()
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := make(map[string]model.UserSummary)
	for _, it := range items {
		byName[it.Username] = it
	}
	assert.Equal(t, model.RoleAdmin, byName["bob"].Role)
	assert.True(t, byName["alice"].Active)
}

func TestSQLStore_UpdateUser(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))

	active := false
	plan := model.PlanPro
	limit := 200
	err := store.UpdateUser("alice", &model.UserUpdate{
		Active:     &active,
		Plan:       &plan,
		UsageLimit: &limit,
	})
	require.NoError(t, err)

	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.Equal(t, model.PlanPro, user.Plan)
	assert.Equal(t, 200, user.UsageLimit)

	// 没动的字段保持原值
	assert.Equal(t, model.DefaultEmailLimit, user.EmailLimit)
	ok, _ := passwd.Verify("secret", user.Password)
	assert.True(t, ok)
}

func TestSQLStore_UpdateUser_NotFound(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	active := false
	err := store.UpdateUser("ghost", &model.UserUpdate{Active: &active})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_UpdateUser_Validation(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))

	badPlan := "platinum"
	assert.ErrorIs(t, store.UpdateUser("alice", &model.UserUpdate{Plan: &badPlan}), ErrValidation)

	negative := -1
	assert.ErrorIs(t, store.UpdateUser("alice", &model.UserUpdate{UsageLimit: &negative}), ErrValidation)

	// 整个补丁被拒绝，不允许部分成功
	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, user.Plan)
}

func TestSQLStore_UpdateSettings(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))

	err := store.UpdateSettings("alice", map[string]any{
		"openrouter_key": "sk-or-123",
		"smtp_user":      "mail@example.com",
		"usage_limit":    float64(300), // JSON 数字
	})
	require.NoError(t, err)

	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "sk-or-123", user.OpenrouterKey)
	assert.Equal(t, "mail@example.com", user.SMTPUser)
	assert.Equal(t, 300, user.UsageLimit)
}

func TestSQLStore_UpdateSettings_RejectsUnknownKey(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))

	// 关系库按白名单拒绝未知列名
	err := store.UpdateSettings("alice", map[string]any{"password": "hacked"})
	assert.ErrorIs(t, err, ErrValidation)

	err = store.UpdateSettings("alice", map[string]any{"evil_column": "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSQLStore_UpdateSettings_RejectsBadInteger(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))

	err := store.UpdateSettings("alice", map[string]any{"usage_limit": "abc"})
	assert.ErrorIs(t, err, ErrValidation)

	// 校验失败时整个字段被拒绝，不落脏值
	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultUsageLimit, user.UsageLimit)
}

func TestSQLStore_Delete(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	require.NoError(t, store.Add("alice", "secret", model.RoleUser))
	require.NoError(t, store.Delete("alice"))

	_, err := store.Get("alice")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete("alice"), ErrNotFound)
}

func TestSQLStore_Kind(t *testing.T) {
	store, cleanup := setupSQLStore(t)
	defer cleanup()

	assert.Equal(t, KindSQL, store.Kind())
	assert.False(t, store.Kind().Persistent())
}
