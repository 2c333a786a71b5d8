package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	prefix := "test-" + uuid.NewString() + ":"
	key := prefix + "quarters"
	require.NoError(t, store.Set(ctx, key, []byte(`[]`)))
	value, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "[]", string(value))

	keys, err := store.Keys(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, []string{key}, keys)

	require.NoError(t, store.Delete(ctx, key))
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, found)
}
