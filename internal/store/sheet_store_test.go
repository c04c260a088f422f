package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/pkg/passwd"
	"github.com/titech/leadpro_server/internal/testutil"
)

func TestSheetStore_Ensure_EmptySheet(t *testing.T) {
	fake := testutil.NewFakeSheet(nil)
	store := NewSheetStore(fake)

	require.NoError(t, store.Ensure())
	assert.Equal(t, 1, fake.Writes)

	admin, err := store.Get("admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, model.PlanEnterprise, admin.Plan)
	assert.Equal(t, model.UnlimitedLimit, admin.UsageLimit)
}

func TestSheetStore_Ensure_PopulatedSheetUntouched(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"alice", testutil.HashPassword("secret"), "user", "1"},
	})
	store := NewSheetStore(fake)

	require.NoError(t, store.Ensure())

	// 已有数据的表绝不重建，也不补写新列
	assert.Equal(t, 0, fake.Writes)
	assert.Len(t, fake.Rows[0], 4)
}

func TestSheetStore_Ensure_Unreachable(t *testing.T) {
	fake := testutil.NewFakeSheet(nil)
	fake.ReadFail = true
	store := NewSheetStore(fake)

	// 连不上不等于表是空的，绝不能写
	err := store.Ensure()
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, fake.Writes)
}

func TestSheetStore_Get_BackfillsMissingColumns(t *testing.T) {
	// 老表只有最初的四列
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"alice", testutil.HashPassword("secret"), "user", "TRUE"},
	})
	store := NewSheetStore(fake)

	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.Equal(t, model.PlanFree, user.Plan)
	assert.Equal(t, model.DefaultUsageLimit, user.UsageLimit)
	assert.Equal(t, model.DefaultEmailLimit, user.EmailLimit)
	assert.Equal(t, "openrouter", user.DefaultProvider)

	// 懒补齐只发生在读取侧，远端没有被改写
	assert.Equal(t, 0, fake.Writes)
}

func TestSheetStore_Get_TruthyActiveValues(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"a1", "x", "user", "yes"},
		{"a2", "x", "user", "0"},
		{"a3", "x", "user", "banana"},
	})
	store := NewSheetStore(fake)

	u1, err := store.Get("a1")
	require.NoError(t, err)
	assert.True(t, u1.Active)

	u2, err := store.Get("a2")
	require.NoError(t, err)
	assert.False(t, u2.Active)

	// 解析不了的值按停用处理
	u3, err := store.Get("a3")
	require.NoError(t, err)
	assert.False(t, u3.Active)
}

func TestSheetStore_AddAndConflict(t *testing.T) {
	fake := testutil.NewFakeSheet(nil)
	store := NewSheetStore(fake)
	require.NoError(t, store.Ensure())

	require.NoError(t, store.Add("Bob", "secret", model.RoleUser))

	user, err := store.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	ok, legacy := passwd.Verify("secret", user.Password)
	assert.True(t, ok)
	assert.False(t, legacy)

	assert.ErrorIs(t, store.Add("bob", "other", model.RoleUser), ErrConflict)
}

func TestSheetStore_List_KeepsSheetOrder(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"zoe", "x", "user", "1"},
		{"adam", "x", "admin", "0"},
	})
	store := NewSheetStore(fake)

	items, err := store.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "zoe", items[0].Username)
	assert.Equal(t, "adam", items[1].Username)
	assert.False(t, items[1].Active)
}

func TestSheetStore_UpdateSettings_AddsColumnOnTheFly(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"alice", "x", "user", "1"},
	})
	store := NewSheetStore(fake)

	// 表格后端无模式，未知键新建列
	err := store.UpdateSettings("alice", map[string]any{"custom_flag": "on"})
	require.NoError(t, err)

	assert.Contains(t, fake.Rows[0], "custom_flag")

	// 已有字段不受影响
	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "x", user.Password)
}

func TestSheetStore_UpdateUser(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"alice", testutil.HashPassword("secret"), "user", "1"},
	})
	store := NewSheetStore(fake)

	active := false
	plan := model.PlanPro
	require.NoError(t, store.UpdateUser("alice", &model.UserUpdate{Active: &active, Plan: &plan}))

	user, err := store.Get("alice")
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.Equal(t, model.PlanPro, user.Plan)
	// 密码没被动过
	assert.Equal(t, testutil.HashPassword("secret"), user.Password)
}

func TestSheetStore_UpdateUser_NotFound(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
	})
	store := NewSheetStore(fake)

	active := false
	assert.ErrorIs(t, store.UpdateUser("ghost", &model.UserUpdate{Active: &active}), ErrNotFound)
}

func TestSheetStore_Delete(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"alice", "x", "user", "1"},
		{"bob", "y", "user", "1"},
	})
	store := NewSheetStore(fake)

	require.NoError(t, store.Delete("alice"))

	_, err := store.Get("alice")
	assert.ErrorIs(t, err, ErrNotFound)

	bob, err := store.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, "y", bob.Password)
}

func TestSheetStore_WriteFailureSurfacesUnavailable(t *testing.T) {
	fake := testutil.NewFakeSheet([][]string{
		{"username", "password", "role", "active"},
		{"alice", "x", "user", "1"},
	})
	fake.WriteFail = true
	store := NewSheetStore(fake)

	// 读成功写失败也要报不可用，不能和校验失败混在一起
	active := false
	err := store.UpdateUser("alice", &model.UserUpdate{Active: &active})
	assert.ErrorIs(t, err, ErrUnavailable)
}
