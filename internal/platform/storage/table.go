package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Table is an in-process cache of one stored list, mirrored to the adapter
// on every write. Reads and writes are serialized by a mutex.
type Table[T any] struct {
	ns     *Namespace
	name   string
	seed   func() []T
	accept func(raw []byte) bool

	mu     sync.Mutex
	rows   []T
	loaded bool
	// degraded is set while the stored copy could not be read. The empty
	// cache is then never written back until a caller mutates it.
	degraded bool
}

type TableOption[T any] func(*Table[T])

// WithSeed supplies the rows written when the key is absent.
func WithSeed[T any](seed func() []T) TableOption[T] {
	return func(t *Table[T]) {
		t.seed = seed
	}
}

// WithShapeCheck discards and reseeds stored data that accept rejects.
func WithShapeCheck[T any](accept func(raw []byte) bool) TableOption[T] {
	return func(t *Table[T]) {
		t.accept = accept
	}
}

func NewTable[T any](ns *Namespace, name string, opts ...TableOption[T]) *Table[T] {
	t := &Table[T]{ns: ns, name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table[T]) Name() string {
	return t.name
}

// Load (re)reads the table from the adapter. Read or decode failures are
// logged and leave the table empty until a later access reads it.
func (t *Table[T]) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.load(ctx)
}

// Rows returns a copy of the cached rows, loading them on first use.
func (t *Table[T]) Rows(ctx context.Context) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure(ctx)
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

// Mutate applies fn to a copy of the rows and, when fn succeeds, replaces
// the cache and persists it. Persist failures are logged, not returned.
func (t *Table[T]) Mutate(ctx context.Context, fn func(rows []T) ([]T, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure(ctx)
	working := make([]T, len(t.rows))
	copy(working, t.rows)
	next, err := fn(working)
	if err != nil {
		return err
	}
	t.rows = next
	t.loaded = true
	t.degraded = false
	t.persist(ctx)
	return nil
}

// Flush writes the cache to the adapter and reports any failure. A table
// whose stored copy could not be read is left untouched.
func (t *Table[T]) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensure(ctx)
	if !t.loaded {
		slog.Warn("skipping flush of unread table", "table", t.name)
		return nil
	}
	return t.ns.Save(ctx, t.name, t.storedRows())
}

// Reset deletes the stored key and drops the cache; the next access
// reloads, reseeding when a seed is configured.
func (t *Table[T]) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.ns.Clear(ctx, t.name); err != nil {
		return err
	}
	t.rows = nil
	t.loaded = false
	t.degraded = false
	return nil
}

// ensure loads the table on first use. The load outlives a cancelled
// request so one dropped client does not empty the cache.
func (t *Table[T]) ensure(ctx context.Context) {
	if !t.loaded {
		t.load(context.WithoutCancel(ctx))
	}
}

func (t *Table[T]) load(ctx context.Context) {
	t.rows = nil

	raw, found, err := t.ns.adapter.Get(ctx, t.ns.Key(t.name))
	if err != nil {
		t.markDegraded("read", err)
		return
	}
	if found && t.accept != nil && !t.accept(raw) {
		slog.Warn("stored table has an unexpected shape, reseeding", "table", t.name)
		found = false
	}
	if !found {
		t.loaded = true
		t.degraded = false
		if t.seed != nil {
			t.rows = t.seed()
			t.persist(ctx)
		}
		return
	}

	var rows []T
	if err := json.Unmarshal(bytes.TrimSpace(raw), &rows); err != nil {
		t.markDegraded("decode", err)
		return
	}
	t.rows = rows
	t.loaded = true
	t.degraded = false
}

func (t *Table[T]) markDegraded(op string, err error) {
	t.ns.failure(op, t.name, err)
	t.rows = nil
	t.loaded = false
	t.degraded = true
}

func (t *Table[T]) persist(ctx context.Context) {
	if t.degraded {
		return
	}
	if err := t.ns.Save(ctx, t.name, t.storedRows()); err != nil {
		t.ns.failure("write", t.name, err)
	}
}

// storedRows is the cache as written to the adapter: never null.
func (t *Table[T]) storedRows() []T {
	if t.rows == nil {
		return []T{}
	}
	return t.rows
}
