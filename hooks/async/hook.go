// Package asynchook moves hook callbacks off the decode and store paths onto a
// bounded queue served by worker goroutines. Events are dropped, never
// blocked on, when the queue is full or closed.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	q := asynchook.New(1, 1000)
//	defer q.Close()
//
//	engine := optwire.New(optwire.Options{Hooks: q.Codec(raw)})
//	store, _ := runstore.New(runstore.Options[optschema.Job]{
//	    Namespace: "jobs",
//	    Provider:  p,
//	    Codec:     optschema.NewJobCodec(engine, nil),
//	    Hooks:     q.Store(raw),
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/optwire"
	"github.com/unkn0wn-root/optwire/runstore"
)

type Queue struct {
	mu      sync.RWMutex
	closed  bool
	q       chan func()
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

func New(workers, qlen int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}
	q := &Queue{q: make(chan func(), qlen)}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer q.wg.Done()
			for f := range q.q {
				f()
			}
		}()
	}
	return q
}

// Close drains queued events and stops the workers. Later events are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.q)
	q.mu.Unlock()
	q.wg.Wait()
}

// Dropped counts events lost to a full or closed queue.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

func (q *Queue) try(f func()) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.q <- f:
	default:
		q.dropped.Add(1)
	}
}

// Codec wraps engine hooks.
func (q *Queue) Codec(inner optwire.Hooks) optwire.Hooks { return codecHooks{q: q, inner: inner} }

// Store wraps run store hooks.
func (q *Queue) Store(inner runstore.Hooks) runstore.Hooks { return storeHooks{q: q, inner: inner} }

type codecHooks struct {
	q     *Queue
	inner optwire.Hooks
}

func (h codecHooks) DecodeFailed(s string, kind optwire.ErrorKind, path string) {
	h.q.try(func() { h.inner.DecodeFailed(s, kind, path) })
}
func (h codecHooks) LeapSecondClamped(path string) {
	h.q.try(func() { h.inner.LeapSecondClamped(path) })
}
func (h codecHooks) RequiredFieldMissing(record, key string) {
	h.q.try(func() { h.inner.RequiredFieldMissing(record, key) })
}

type storeHooks struct {
	q     *Queue
	inner runstore.Hooks
}

func (h storeHooks) SelfHeal(k, r string)               { h.q.try(func() { h.inner.SelfHeal(k, r) }) }
func (h storeHooks) ProviderSetRejected(k string)       { h.q.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h storeHooks) GenSnapshotError(k string, e error) { h.q.try(func() { h.inner.GenSnapshotError(k, e) }) }
func (h storeHooks) GenBumpError(k string, e error)     { h.q.try(func() { h.inner.GenBumpError(k, e) }) }
func (h storeHooks) InvalidateOutage(id string, be, de error) {
	h.q.try(func() { h.inner.InvalidateOutage(id, be, de) })
}
