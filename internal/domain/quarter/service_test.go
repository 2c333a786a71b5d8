package quarter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrunity/internal/apperr"
	"hrunity/internal/platform/storage"
)

func newTestService(seed bool) *Service {
	return NewService(storage.NewNamespace(storage.NewMemory(), "test"), 0, seed)
}

func activeCount(rows []Quarter) int {
	n := 0
	for _, q := range rows {
		if q.IsActive {
			n++
		}
	}
	return n
}

func TestSeedHasFirstQuarterActive(t *testing.T) {
	svc := newTestService(true)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, 1, activeCount(rows))

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, ID(year, 1), active.ID)
	require.Equal(t, "Q1", active.Name)
}

func TestCalendarDates(t *testing.T) {
	rows := Calendar(2024, time.Now())
	require.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), rows[0].StartDate)
	require.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), rows[0].EndDate)
	require.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), rows[1].EndDate)
	require.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), rows[3].EndDate)
	require.Equal(t, "2024-Q4", rows[3].ID)
}

func TestActivateKeepsExactlyOneActive(t *testing.T) {
	svc := newTestService(true)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	active, err := svc.Activate(ctx, ID(year, 3))
	require.NoError(t, err)
	require.True(t, active.IsActive)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, activeCount(rows))

	_, err = svc.Activate(ctx, "1999-Q9")
	require.ErrorIs(t, err, ErrQuarterNotFound)
	current, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, ID(year, 3), current.ID)
}

func TestActiveWithoutQuarters(t *testing.T) {
	svc := newTestService(false)
	_, err := svc.Active(context.Background())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEnsureYear(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()

	created, err := svc.EnsureYear(ctx, 2030)
	require.NoError(t, err)
	require.Equal(t, 4, created)
	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, "2030-Q1", active.ID)

	created, err = svc.EnsureYear(ctx, 2030)
	require.NoError(t, err)
	require.Zero(t, created)

	created, err = svc.EnsureYear(ctx, 2031)
	require.NoError(t, err)
	require.Equal(t, 4, created)
	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	require.Equal(t, 1, activeCount(rows))
}

func TestUpdateDates(t *testing.T) {
	svc := newTestService(false)
	ctx := context.Background()
	_, err := svc.EnsureYear(ctx, 2030)
	require.NoError(t, err)

	start := time.Date(2030, 1, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2030, 4, 4, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, "2030-Q1", start, end)
	require.NoError(t, err)
	require.Equal(t, start, updated.StartDate)
	require.Equal(t, end, updated.EndDate)

	_, err = svc.Update(ctx, "2030-Q1", end, start)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Update(ctx, "2030-Q7", start, end)
	require.ErrorIs(t, err, ErrQuarterNotFound)
}
