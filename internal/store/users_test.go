// ABOUTME: Tests for user store operations
// ABOUTME: Covers create, lookup, role updates, enable/disable, and delete

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func newTestUser(username string, roles ...string) *User {
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$2a$10$fakehashfortesting",
		Roles:        roles,
		Enabled:      true,
	}
}

func TestUserStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := newTestUser("alice", "USER", "ADMIN")
	require.NoError(t, store.CreateUser(ctx, user))

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.True(t, got.Enabled)
	// Roles come back sorted
	assert.Equal(t, []string{"ADMIN", "USER"}, got.Roles)
}

func TestUserStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_Create_DuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("alice", "USER")))

	err := store.CreateUser(ctx, newTestUser("alice", "USER"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserStore_NoRoles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("bob")))

	got, err := store.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)

	// Empty slice, not nil
	assert.NotNil(t, got.Roles)
	assert.Empty(t, got.Roles)
}

func TestUserStore_RolesDeduplicated(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("carol", "USER", "USER", "ADMIN")))

	got, err := store.GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN", "USER"}, got.Roles)
}

func TestUserStore_SetUserEnabled(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("alice", "USER")))

	require.NoError(t, store.SetUserEnabled(ctx, "alice", false))

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	err = store.SetUserEnabled(ctx, "nobody", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_SetUserRoles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("alice", "USER")))

	require.NoError(t, store.SetUserRoles(ctx, "alice", []string{"ADMIN"}))

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, got.Roles)

	err = store.SetUserRoles(ctx, "nobody", []string{"ADMIN"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_SetUserPassword(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("alice", "USER")))

	require.NoError(t, store.SetUserPassword(ctx, "alice", "new-hash"))

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	err = store.SetUserPassword(ctx, "nobody", "new-hash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("carol", "USER")))
	require.NoError(t, store.CreateUser(ctx, newTestUser("alice", "ADMIN")))
	require.NoError(t, store.CreateUser(ctx, newTestUser("bob")))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Ordered by username
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "carol", users[2].Username)
}

func TestUserStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("alice", "USER")))
	require.NoError(t, store.DeleteUser(ctx, "alice"))

	_, err := store.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteUser(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
