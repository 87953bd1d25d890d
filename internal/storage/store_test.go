package storage_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puremark/puremark-go/internal/constants"
	"github.com/puremark/puremark-go/internal/storage"
)

func openStore(t *testing.T, path string) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.Open(path)
	require.NoError(t, err, "Opening the store should succeed")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_StampsSchemaVersion(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "puremark.db"))

	raw, found, err := store.Get(context.Background(), constants.StorageKeySchemaVersion)

	require.NoError(t, err)
	require.True(t, found, "A fresh store should be stamped with the schema version")
	assert.Equal(t, strconv.Itoa(constants.StorageSchemaVersion), raw)
}

func TestSetGetDelete(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "puremark.db"))
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err, "An absent key is not an error")
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "user_profile", `{"diet":"halal"}`))

	value, found, err := store.Get(ctx, "user_profile")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"diet":"halal"}`, value)

	require.NoError(t, store.Set(ctx, "user_profile", `{"diet":"kosher"}`),
		"Setting an existing key should replace its value")

	value, _, err = store.Get(ctx, "user_profile")
	require.NoError(t, err)
	assert.Equal(t, `{"diet":"kosher"}`, value)

	require.NoError(t, store.Delete(ctx, "user_profile"))

	_, found, err = store.Get(ctx, "user_profile")
	require.NoError(t, err)
	assert.False(t, found, "A deleted key should read as absent")

	assert.NoError(t, store.Delete(ctx, "user_profile"), "Deleting an absent key is a no-op")
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puremark.db")
	ctx := context.Background()

	first, err := storage.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "scan_history", `[{"id":"abc"}]`))
	require.NoError(t, first.Close())

	second := openStore(t, path)

	value, found, err := second.Get(ctx, "scan_history")
	require.NoError(t, err)
	require.True(t, found, "Values must survive a close and reopen")
	assert.Equal(t, `[{"id":"abc"}]`, value)
}

func TestNewerSchemaDegradesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puremark.db")
	ctx := context.Background()

	first, err := storage.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "user_profile", `{"diet":"kosher"}`))
	require.NoError(t, first.Set(ctx, constants.StorageKeySchemaVersion,
		strconv.Itoa(constants.StorageSchemaVersion+1)))
	require.NoError(t, first.Close())

	second, err := storage.Open(path)
	require.NoError(t, err, "A future schema version must not block opening")
	defer second.Close()

	_, found, err := second.Get(ctx, "user_profile")
	require.NoError(t, err)
	assert.False(t, found, "Blobs written by a newer client should read as absent")
}
