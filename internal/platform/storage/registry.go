package storage

import (
	"context"
	"fmt"
	"sort"

	"hrunity/internal/apperr"
)

// Resettable is a table that can be dropped and reloaded by name.
type Resettable interface {
	Name() string
	Load(ctx context.Context)
	Reset(ctx context.Context) error
}

// Registry resets or reseeds the tables of one deployment.
type Registry struct {
	tables map[string]Resettable
}

func NewRegistry(tables ...Resettable) *Registry {
	r := &Registry{tables: make(map[string]Resettable, len(tables))}
	for _, t := range tables {
		r.tables[t.Name()] = t
	}
	return r
}

// Names lists the registered tables in name order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops the named tables, or all of them when none are named. Tables
// with seed data are reseeded on their next access.
func (r *Registry) Reset(ctx context.Context, names ...string) ([]string, error) {
	targets, err := r.resolve(names)
	if err != nil {
		return nil, err
	}
	for _, name := range targets {
		if err := r.tables[name].Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset %s: %w", name, err)
		}
	}
	return targets, nil
}

// Seed resets every table and reloads it so sample data is written
// immediately.
func (r *Registry) Seed(ctx context.Context) ([]string, error) {
	targets, err := r.Reset(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range targets {
		r.tables[name].Load(ctx)
	}
	return targets, nil
}

func (r *Registry) resolve(names []string) ([]string, error) {
	if len(names) == 0 {
		return r.Names(), nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := r.tables[name]; !ok {
			return nil, apperr.Invalid("tables", "unknown table "+name)
		}
		out = append(out, name)
	}
	return out, nil
}
