package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "hrunity.db"))
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Get(ctx, "hrunity:employees")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "hrunity:employees", []byte(`[{"employeeId":"EMP001"}]`)))
	require.NoError(t, store.Set(ctx, "hrunity:employees", []byte(`[{"employeeId":"EMP002"}]`)))
	require.NoError(t, store.Set(ctx, "other:employees", []byte(`[]`)))

	value, found, err := store.Get(ctx, "hrunity:employees")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `[{"employeeId":"EMP002"}]`, string(value))

	keys, err := store.Keys(ctx, "hrunity:")
	require.NoError(t, err)
	require.Equal(t, []string{"hrunity:employees"}, keys)

	require.NoError(t, store.Delete(ctx, "hrunity:employees"))
	_, found, err = store.Get(ctx, "hrunity:employees")
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, store.Ping(ctx))
}

func TestSQLiteMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrunity.db")
	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	value, found, err := second.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", string(value))
}
