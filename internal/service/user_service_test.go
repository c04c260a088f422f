package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titech/leadpro_server/internal/model"
	"github.com/titech/leadpro_server/internal/model/dto"
	"github.com/titech/leadpro_server/internal/store"
	"github.com/titech/leadpro_server/internal/testutil"
)

func setupUserService(t *testing.T) (*UserService, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := NewUserService(store.NewSQLStore(db))

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return service, cleanup
}

func TestUserService_AddListDelete(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	require.NoError(t, service.AddUser(&dto.AddUserRequest{
		Username: "alice",
		Password: "secret",
		Role:     model.RoleUser,
	}))

	items, err := service.ListUsers()
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, service.DeleteUser("alice"))

	items, err = service.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	active := false
	err := service.UpdateUser("ghost", &dto.UpdateUserRequest{Active: &active})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserService_UpdateAPIKey(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	require.NoError(t, service.AddUser(&dto.AddUserRequest{
		Username: "alice",
		Password: "secret",
		Role:     model.RoleUser,
	}))

	require.NoError(t, service.UpdateAPIKey("alice", "sk-or-xyz"))

	user, err := service.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "sk-or-xyz", user.OpenrouterKey)
}

func TestUserService_StorageStatus(t *testing.T) {
	service, cleanup := setupUserService(t)
	defer cleanup()

	require.NoError(t, service.AddUser(&dto.AddUserRequest{
		Username: "alice",
		Password: "secret",
		Role:     model.RoleUser,
	}))

	status, err := service.StorageStatus()
	require.NoError(t, err)
	assert.Equal(t, string(store.KindSQL), status.Kind)
	assert.False(t, status.Persistent)
	assert.Equal(t, 1, status.TotalUsers)
}
