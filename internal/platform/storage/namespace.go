package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// FailureRecorder is notified of every swallowed storage failure.
type FailureRecorder interface {
	RecordStorageFailure(op string)
}

// Namespace prefixes every table key so several deployments can share one
// adapter.
type Namespace struct {
	adapter  Adapter
	prefix   string
	failures FailureRecorder
}

func NewNamespace(adapter Adapter, prefix string) *Namespace {
	return &Namespace{adapter: adapter, prefix: strings.TrimSuffix(prefix, ":")}
}

func (n *Namespace) WithFailureRecorder(r FailureRecorder) *Namespace {
	n.failures = r
	return n
}

func (n *Namespace) Adapter() Adapter {
	return n.adapter
}

func (n *Namespace) Key(table string) string {
	return n.prefix + ":" + table
}

// Load decodes the table into v. found is false when the key is absent.
func (n *Namespace) Load(ctx context.Context, table string, v any) (bool, error) {
	raw, found, err := n.adapter.Get(ctx, n.Key(table))
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", table, err)
	}
	return true, nil
}

func (n *Namespace) Save(ctx context.Context, table string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}
	return n.adapter.Set(ctx, n.Key(table), raw)
}

// Clear removes the given tables, or every table of the namespace when none
// are named.
func (n *Namespace) Clear(ctx context.Context, tables ...string) ([]string, error) {
	keys := make([]string, 0, len(tables))
	if len(tables) == 0 {
		all, err := n.adapter.Keys(ctx, n.prefix+":")
		if err != nil {
			return nil, err
		}
		keys = all
	} else {
		for _, table := range tables {
			keys = append(keys, n.Key(table))
		}
	}
	for _, key := range keys {
		if err := n.adapter.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return keys, nil
}

func (n *Namespace) failure(op, table string, err error) {
	slog.Warn("storage "+op+" failed", "table", table, "err", err)
	if n.failures != nil {
		n.failures.RecordStorageFailure(op)
	}
}
