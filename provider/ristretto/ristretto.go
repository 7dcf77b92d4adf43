// Package ristretto is an in-process run store provider on dgraph-io/ristretto.
// Costs are frame sizes in bytes, so MaxCost is a memory budget.
package ristretto

import (
	"context"
	"errors"
	"fmt"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/optwire/provider"
)

var ErrInvalidConfig = errors.New("ristretto provider: invalid config")

type Provider struct {
	c *rc.Cache
}

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

// ForBudget sizes a cache for maxBytes of frames, assuming documents of a few
// KiB each and ten counters per expected entry.
func ForBudget(maxBytes int64) Config {
	counters := maxBytes / 4096 * 10
	if counters < 1000 {
		counters = 1000
	}
	return Config{NumCounters: counters, MaxCost: maxBytes, BufferItems: 64}
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, fmt.Errorf("%w: counters=%d maxCost=%d buffer=%d",
			ErrInvalidConfig, cfg.NumCounters, cfg.MaxCost, cfg.BufferItems)
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set stores a private copy of value; callers may reuse their buffer.
func (p *Provider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if cost <= 0 {
		cost = int64(len(value))
	}
	cp := append([]byte(nil), value...)
	if ttl <= 0 {
		return p.c.Set(key, cp, cost), nil
	}
	return p.c.SetWithTTL(key, cp, cost, ttl), nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

// Wait blocks until buffered writes are applied.
func (p *Provider) Wait() { p.c.Wait() }

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics is nil unless Config.Metrics was set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
