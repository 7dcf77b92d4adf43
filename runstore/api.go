// Package runstore caches optimization run documents by run id behind a
// provider, with generation-checked (compare-and-set) writes.
//
// A poller or worker reads the current generation with SnapshotGen, builds
// the document, then writes it with SetWithGen. If the run was invalidated in
// between, the write is skipped, so a slow writer cannot resurrect an outdated
// status. Reads validate the frame, the generation and the payload, and delete
// (self-heal) entries that fail any of them.
package runstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/optwire"
	c "github.com/unkn0wn-root/optwire/codec"
	"github.com/unkn0wn-root/optwire/genstore"
	"github.com/unkn0wn-root/optwire/internal/wire"
	"github.com/unkn0wn-root/optwire/provider"
)

// Format tags stored payloads with their tree codec. Entries written with a
// different format are treated as stale.
type Format = wire.Format

const (
	FormatOpaque   = wire.FormatOpaque
	FormatJSON     = wire.FormatJSON
	FormatCBOR     = wire.FormatCBOR
	FormatMsgpack  = wire.FormatMsgpack
	FormatProtobuf = wire.FormatProtobuf
)

type Options[V any] struct {
	// Namespace isolates keys: entries live under "run:<Namespace>:<id>".
	Namespace string

	Provider provider.Provider
	Codec    c.Codec[V]
	Format   Format

	// GenStore holds generations. If nil, a LocalGenStore is used; pass a
	// RedisGenStore when several processes share Provider.
	GenStore genstore.GenStore

	Logger optwire.Logger // if nil, NopLogger
	Hooks  Hooks          // if nil, NopHooks

	DefaultTTL      time.Duration // used when SetWithGen gets ttl=0; default 10m
	CleanupInterval time.Duration // local gen sweep; default 1h
	GenRetention    time.Duration // local gen retention; default 30d

	// SetCost computes the admission cost passed to the provider. Defaults to
	// the frame length in bytes.
	SetCost func(storageKey string, frame []byte) int64

	Disabled bool
}

// NewRunID returns a fresh random run id.
func NewRunID() string { return uuid.NewString() }

// ParseRunID validates a run id produced by NewRunID.
func ParseRunID(id string) (uuid.UUID, error) { return uuid.Parse(id) }

// Store is safe for concurrent use.
type Store[V any] struct {
	ns       string
	provider provider.Provider
	codec    c.Codec[V]
	format   Format
	gen      genstore.GenStore
	log      optwire.Logger
	hooks    Hooks
	enabled  bool

	defaultTTL time.Duration
	setCost    func(string, []byte) int64
}

func (s *Store[V]) Enabled() bool { return s.enabled }

// Close releases the generation store, then the provider.
func (s *Store[V]) Close(ctx context.Context) error {
	if s.gen != nil {
		_ = s.gen.Close(ctx)
	}
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}
