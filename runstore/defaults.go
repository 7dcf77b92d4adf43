package runstore

import (
	"errors"
	"time"

	"github.com/unkn0wn-root/optwire"
	"github.com/unkn0wn-root/optwire/genstore"
)

const (
	defaultTTL          = 10 * time.Minute
	defaultGenRetention = 30 * 24 * time.Hour
	defaultSweep        = time.Hour
)

var (
	ErrNoProvider  = errors.New("runstore: provider is required")
	ErrNoCodec     = errors.New("runstore: codec is required")
	ErrNoNamespace = errors.New("runstore: namespace is required")
)

func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func frameLen(_ string, frame []byte) int64 { return int64(len(frame)) }

func New[V any](opts Options[V]) (*Store[V], error) {
	switch {
	case opts.Provider == nil:
		return nil, ErrNoProvider
	case opts.Codec == nil:
		return nil, ErrNoCodec
	case opts.Namespace == "":
		return nil, ErrNoNamespace
	}

	s := &Store[V]{
		ns:         opts.Namespace,
		provider:   opts.Provider,
		codec:      opts.Codec,
		format:     opts.Format,
		enabled:    !opts.Disabled,
		log:        coalesce[optwire.Logger](opts.Logger, optwire.NopLogger{}),
		hooks:      coalesce[Hooks](opts.Hooks, NopHooks{}),
		defaultTTL: coalesce(opts.DefaultTTL, defaultTTL),
		setCost:    frameLen,
	}
	if opts.SetCost != nil {
		s.setCost = opts.SetCost
	}

	if opts.GenStore != nil {
		s.gen = opts.GenStore
	} else {
		s.gen = genstore.NewLocalGenStore(
			coalesce(opts.CleanupInterval, defaultSweep),
			coalesce(opts.GenRetention, defaultGenRetention),
		)
	}
	return s, nil
}
