package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"hrunity/internal/apperr"
)

func TestRegistryResetAndSeed(t *testing.T) {
	ctx := context.Background()
	ns := NewNamespace(NewMemory(), "test")
	seeded := NewTable[row](ns, "seeded", WithSeed(func() []row { return []row{{ID: "a"}} }))
	plain := NewTable[row](ns, "plain")

	require.NoError(t, seeded.Mutate(ctx, func(rows []row) ([]row, error) { return append(rows, row{ID: "b"}), nil }))
	require.NoError(t, plain.Mutate(ctx, func(rows []row) ([]row, error) { return append(rows, row{ID: "x"}), nil }))

	reg := NewRegistry(seeded, plain)
	require.Equal(t, []string{"plain", "seeded"}, reg.Names())

	reset, err := reg.Reset(ctx, "plain")
	require.NoError(t, err)
	require.Equal(t, []string{"plain"}, reset)
	require.Empty(t, plain.Rows(ctx))
	require.Len(t, seeded.Rows(ctx), 2)

	_, err = reg.Seed(ctx)
	require.NoError(t, err)
	raw, found, err := ns.Adapter().Get(ctx, ns.Key("seeded"))
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `[{"id":"a"}]`, string(raw))

	_, err = reg.Reset(ctx, "missing")
	require.True(t, errors.Is(err, apperr.ErrValidation))
}
