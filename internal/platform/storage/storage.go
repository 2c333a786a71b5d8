// Package storage persists each logical table as one JSON document under a
// namespaced key of a key/value adapter.
package storage

import (
	"context"
	"time"
)

// Adapter is a key/value store holding serialized tables.
type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Pause waits for d or until ctx is done. Services use it to emulate the
// latency of a remote database; a zero duration only checks ctx.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
