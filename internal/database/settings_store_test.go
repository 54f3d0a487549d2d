package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a migrated SQLite DB in a temp dir for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to connect to test DB")
	t.Cleanup(func() {
		assert.NoError(t, db.Close(), "Failed to close test DB")
	})
	return db
}

func TestSettingsStore_SetGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, ScopeGuild, "1", "reactlog_channel")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, ScopeGuild, "1", "reactlog_channel", "100"))
	v, ok, err := store.Get(ctx, ScopeGuild, "1", "reactlog_channel")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "100", v)

	require.NoError(t, store.Set(ctx, ScopeGuild, "1", "reactlog_channel", "200"), "upsert")
	v, _, err = store.Get(ctx, ScopeGuild, "1", "reactlog_channel")
	require.NoError(t, err)
	assert.Equal(t, "200", v)

	_, ok, err = store.Get(ctx, ScopeGuild, "2", "reactlog_channel")
	require.NoError(t, err)
	assert.False(t, ok, "scope ids are isolated")
}

func TestSettingsStore_Bool(t *testing.T) {
	db := setupTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	b, err := store.GetBool(ctx, ScopeGuild, "1", "log_add", true)
	require.NoError(t, err)
	assert.True(t, b, "default when unset")

	require.NoError(t, store.SetBool(ctx, ScopeGuild, "1", "log_add", false))
	b, err = store.GetBool(ctx, ScopeGuild, "1", "log_add", true)
	require.NoError(t, err)
	assert.False(t, b)

	require.NoError(t, store.Set(ctx, ScopeGuild, "1", "log_add", "nope"))
	b, err = store.GetBool(ctx, ScopeGuild, "1", "log_add", true)
	assert.Error(t, err)
	assert.True(t, b)
}

func TestSettingsStore_ClearAndList(t *testing.T) {
	db := setupTestDB(t)
	store := NewSettingsStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, ScopeGuild, "1", "b", "2"))
	require.NoError(t, store.Set(ctx, ScopeGuild, "1", "a", "1"))
	require.NoError(t, store.Set(ctx, ScopeUser, "1", "a", "x"))

	list, err := store.List(ctx, ScopeGuild, "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Key)
	assert.Equal(t, "b", list[1].Key)

	require.NoError(t, store.Clear(ctx, ScopeGuild, "1", "a"))
	require.NoError(t, store.Clear(ctx, ScopeGuild, "1", "missing"))
	list, err = store.List(ctx, ScopeGuild, "1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.ClearScope(ctx, ScopeGuild, "1"))
	list, err = store.List(ctx, ScopeGuild, "1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, ok, err := store.Get(ctx, ScopeUser, "1", "a")
	require.NoError(t, err)
	assert.True(t, ok, "other scopes untouched")
}

func TestDB_BackupRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.db")
	db, err := Connect(path)
	require.NoError(t, err)
	ctx := context.Background()

	store := NewSettingsStore(db)
	require.NoError(t, store.Set(ctx, ScopeGlobal, "", "k", "before"))
	backup := filepath.Join(dir, "backup.db")
	require.NoError(t, db.Backup(ctx, backup))

	require.NoError(t, store.Set(ctx, ScopeGlobal, "", "k", "after"))
	require.NoError(t, db.Restore(path, backup))

	db, err = Connect(path)
	require.NoError(t, err)
	defer db.Close()
	v, ok, err := NewSettingsStore(db).Get(ctx, ScopeGlobal, "", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "before", v)
}
