// Package genstore keeps the per-run generation counters that make run store
// writes compare-and-set.
package genstore

import (
	"context"
	"time"
)

// GenStore abstracts where generations live. Use LocalGenStore for a single
// process, RedisGenStore when several pollers or workers share a provider.
type GenStore interface {
	// Snapshot returns the current generation; missing => 0.
	Snapshot(ctx context.Context, storageKey string) (uint64, error)
	// SnapshotMany returns generations for every key; missing => 0.
	SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup prunes entries idle for longer than retention, where applicable.
	Cleanup(retention time.Duration)
	Close(context.Context) error
}
