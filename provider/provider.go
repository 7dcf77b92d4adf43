// Package provider defines the byte store behind a run store.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// []byte previously passed to Set for a key. No metadata, re-encoding or
// mutation. A store that compresses internally must fully reverse it.
//
// The keyspace "run:<namespace>:" is owned by runstore. Foreign values written
// under it fail frame validation and are deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs, safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	// IO or remote failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for ttl; ttl <= 0 means the store's default lifetime.
	// cost is a hint for admission-based stores. ok=false means the store
	// rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	Close(ctx context.Context) error
}
