package questions

import (
	"context"
	"slices"
	"strings"
	"time"

	"hrunity/internal/platform/storage"
)

// catalog holds the table plumbing shared by both question kinds.
type catalog[T any] struct {
	table   *storage.Table[T]
	latency time.Duration
	now     func() time.Time
	id      func(T) string
	created func(T) time.Time
}

func newCatalog[T any](ns *storage.Namespace, name string, latency time.Duration, seed func() []T, id func(T) string, created func(T) time.Time) catalog[T] {
	var opts []storage.TableOption[T]
	if seed != nil {
		opts = append(opts, storage.WithSeed(seed))
	}
	return catalog[T]{
		table:   storage.NewTable(ns, name, opts...),
		latency: latency,
		now:     func() time.Time { return time.Now().UTC() },
		id:      id,
		created: created,
	}
}

func (c catalog[T]) list(ctx context.Context) ([]T, error) {
	if err := storage.Pause(ctx, c.latency); err != nil {
		return nil, err
	}
	rows := c.table.Rows(ctx)
	slices.SortStableFunc(rows, func(a, b T) int {
		return c.created(b).Compare(c.created(a))
	})
	return rows, nil
}

func (c catalog[T]) get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := storage.Pause(ctx, c.latency); err != nil {
		return zero, err
	}
	for _, row := range c.table.Rows(ctx) {
		if c.id(row) == id {
			return row, nil
		}
	}
	return zero, ErrQuestionNotFound
}

func (c catalog[T]) insert(ctx context.Context, row T) error {
	if err := storage.Pause(ctx, c.latency); err != nil {
		return err
	}
	return c.table.Mutate(ctx, func(rows []T) ([]T, error) {
		return append(rows, row), nil
	})
}

func (c catalog[T]) update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var zero, updated T
	if err := storage.Pause(ctx, c.latency); err != nil {
		return zero, err
	}
	err := c.table.Mutate(ctx, func(rows []T) ([]T, error) {
		idx := c.indexOf(rows, id)
		if idx < 0 {
			return nil, ErrQuestionNotFound
		}
		if err := fn(&rows[idx]); err != nil {
			return nil, err
		}
		updated = rows[idx]
		return rows, nil
	})
	if err != nil {
		return zero, err
	}
	return updated, nil
}

func (c catalog[T]) delete(ctx context.Context, id string) error {
	if err := storage.Pause(ctx, c.latency); err != nil {
		return err
	}
	return c.table.Mutate(ctx, func(rows []T) ([]T, error) {
		idx := c.indexOf(rows, id)
		if idx < 0 {
			return nil, ErrQuestionNotFound
		}
		return slices.Delete(rows, idx, idx+1), nil
	})
}

func (c catalog[T]) search(ctx context.Context, term string, fields func(T) []string) ([]T, error) {
	rows, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows, nil
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if slices.ContainsFunc(fields(row), func(f string) bool {
			return strings.Contains(strings.ToLower(f), term)
		}) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (c catalog[T]) indexOf(rows []T, id string) int {
	return slices.IndexFunc(rows, func(row T) bool { return c.id(row) == id })
}
