package runstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/optwire"
	c "github.com/unkn0wn-root/optwire/codec"
	"github.com/unkn0wn-root/optwire/genstore"
	"github.com/unkn0wn-root/optwire/internal/wire"
	"github.com/unkn0wn-root/optwire/optschema"
	pr "github.com/unkn0wn-root/optwire/provider"
	redisprovider "github.com/unkn0wn-root/optwire/provider/redis"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

type memProvider struct {
	mu     sync.Mutex
	m      map[string]memEntry
	reject bool
	delErr error
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false, nil
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.m[key] = memEntry{v: append([]byte(nil), value...), exp: exp}
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.delErr != nil {
		return p.delErr
	}
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(_ context.Context) error { return nil }

func (p *memProvider) has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[key]
	return ok
}

type failingGens struct {
	genstore.GenStore
	snapErr, bumpErr error
}

func (f failingGens) Snapshot(ctx context.Context, k string) (uint64, error) {
	if f.snapErr != nil {
		return 0, f.snapErr
	}
	return f.GenStore.Snapshot(ctx, k)
}

func (f failingGens) Bump(ctx context.Context, k string) (uint64, error) {
	if f.bumpErr != nil {
		return 0, f.bumpErr
	}
	return f.GenStore.Bump(ctx, k)
}

type recHooks struct {
	mu       sync.Mutex
	heals    []string
	rejected []string
	snapErrs int
	bumpErrs int
	outages  int
}

func (h *recHooks) SelfHeal(_, reason string) {
	h.mu.Lock()
	h.heals = append(h.heals, reason)
	h.mu.Unlock()
}
func (h *recHooks) ProviderSetRejected(k string) {
	h.mu.Lock()
	h.rejected = append(h.rejected, k)
	h.mu.Unlock()
}
func (h *recHooks) GenSnapshotError(string, error) { h.mu.Lock(); h.snapErrs++; h.mu.Unlock() }
func (h *recHooks) GenBumpError(string, error)     { h.mu.Lock(); h.bumpErrs++; h.mu.Unlock() }
func (h *recHooks) InvalidateOutage(string, error, error) {
	h.mu.Lock()
	h.outages++
	h.mu.Unlock()
}

func newJobStore(t *testing.T, mp pr.Provider, mod func(*Options[optschema.Job])) *Store[optschema.Job] {
	t.Helper()
	opts := Options[optschema.Job]{
		Namespace: "jobs",
		Provider:  mp,
		Codec:     optschema.NewJobCodec(nil, nil),
		Format:    FormatJSON,
	}
	if mod != nil {
		mod(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func queued() optschema.Job {
	return optschema.Job{Status: optschema.StatusQueued, StatusMessage: optschema.Ptr("waiting for a solver")}
}

func running(msg string) optschema.Job {
	return optschema.Job{
		Status:        optschema.StatusRunning,
		StatusMessage: optschema.Ptr(msg),
		OptResultSet: &optschema.OptResultSet{
			NumFunctionEvaluations: optschema.Ptr(int64(40)),
			ObjectiveFunction:      optschema.Ptr(0.5),
			OptParameterValues:     map[string]float64{"k1": 1.25},
		},
	}
}

func TestNewValidatesOptions(t *testing.T) {
	cases := []struct {
		opts Options[any]
		want error
	}{
		{Options[any]{Namespace: "n", Codec: c.JSON[any]{}}, ErrNoProvider},
		{Options[any]{Namespace: "n", Provider: newMemProvider()}, ErrNoCodec},
		{Options[any]{Provider: newMemProvider(), Codec: c.JSON[any]{}}, ErrNoNamespace},
	}
	for _, tc := range cases {
		if _, err := New(tc.opts); !errors.Is(err, tc.want) {
			t.Fatalf("want %v, got %v", tc.want, err)
		}
	}
}

// TestRunCASFlow walks a run through submit, poll, invalidate and a stale
// poller write.
func TestRunCASFlow(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	s := newJobStore(t, mp, nil)

	id := NewRunID()
	if _, err := ParseRunID(id); err != nil {
		t.Fatalf("run id %q: %v", id, err)
	}

	if _, ok, err := s.Get(ctx, id); err != nil || ok {
		t.Fatalf("Get miss expected, ok=%v err=%v", ok, err)
	}

	obs := s.SnapshotGen(ctx, id)
	if obs != 0 {
		t.Fatalf("SnapshotGen expected 0, got %d", obs)
	}
	if err := s.SetWithGen(ctx, id, queued(), obs, 0); err != nil {
		t.Fatalf("SetWithGen: %v", err)
	}
	got, ok, err := s.Get(ctx, id)
	if err != nil || !ok || got.Status != optschema.StatusQueued {
		t.Fatalf("Get after set: ok=%v err=%v got=%+v", ok, err, got)
	}

	if err := s.Invalidate(ctx, id); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := s.Get(ctx, id); ok {
		t.Fatalf("Get after invalidate should miss")
	}

	// a poller that snapshotted before the invalidate must not win
	if err := s.SetWithGen(ctx, id, running("stale"), obs, 0); err != nil {
		t.Fatalf("SetWithGen stale: %v", err)
	}
	if _, ok, _ := s.Get(ctx, id); ok {
		t.Fatalf("stale write should not populate the store")
	}

	fresh := s.SnapshotGen(ctx, id)
	if fresh != 1 {
		t.Fatalf("gen after invalidate = %d", fresh)
	}
	if err := s.SetWithGen(ctx, id, running("gen 3/40"), fresh, time.Minute); err != nil {
		t.Fatalf("SetWithGen fresh: %v", err)
	}
	got, ok, err = s.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Get after fresh set: ok=%v err=%v", ok, err)
	}
	if *got.StatusMessage != "gen 3/40" || got.OptResultSet.OptParameterValues["k1"] != 1.25 {
		t.Fatalf("unexpected document %+v", got)
	}
}

func TestSelfHeal(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	h := &recHooks{}
	s := newJobStore(t, mp, func(o *Options[optschema.Job]) { o.Hooks = h })
	k := s.storageKey("r1")

	payload, err := optschema.EncodeJob(queued())
	if err != nil {
		t.Fatal(err)
	}
	inject := func(b []byte) {
		t.Helper()
		if ok, err := mp.Set(ctx, k, b, 1, time.Minute); err != nil || !ok {
			t.Fatalf("inject: ok=%v err=%v", ok, err)
		}
	}
	expectHealed := func(reason string) {
		t.Helper()
		if _, ok, err := s.Get(ctx, "r1"); err != nil || ok {
			t.Fatalf("%s: Get should miss, ok=%v err=%v", reason, ok, err)
		}
		if mp.has(k) {
			t.Fatalf("%s: entry was not deleted", reason)
		}
		if last := h.heals[len(h.heals)-1]; last != reason {
			t.Fatalf("heal reason = %q want %q", last, reason)
		}
	}

	inject([]byte("not-a-frame"))
	expectHealed("corrupt")

	inject(wire.Encode(0, FormatCBOR, payload))
	expectHealed("format_mismatch")

	inject(wire.Encode(0, FormatJSON, []byte(`{"status": "exploded"}`)))
	expectHealed("value_decode")

	inject(wire.Encode(0, FormatJSON, payload))
	if _, err := s.gen.Bump(ctx, k); err != nil {
		t.Fatal(err)
	}
	expectHealed("gen_mismatch")

	if len(h.heals) != 4 {
		t.Fatalf("heals = %v", h.heals)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := newJobStore(t, newMemProvider(), nil)
	id := "r-update"

	err := s.Update(ctx, id, 0, func(cur optschema.Job, found bool) (optschema.Job, error) {
		if found {
			t.Fatalf("unexpected document %+v", cur)
		}
		return queued(), nil
	})
	if err != nil {
		t.Fatalf("Update create: %v", err)
	}

	err = s.Update(ctx, id, 0, func(cur optschema.Job, found bool) (optschema.Job, error) {
		if !found || cur.Status != optschema.StatusQueued {
			t.Fatalf("want queued document, got found=%v %+v", found, cur)
		}
		return running("started"), nil
	})
	if err != nil {
		t.Fatalf("Update transition: %v", err)
	}
	if got, _, _ := s.Get(ctx, id); got.Status != optschema.StatusRunning {
		t.Fatalf("status = %s", got.Status)
	}

	err = s.Update(ctx, id, 0, func(cur optschema.Job, _ bool) (optschema.Job, error) {
		if err := s.Invalidate(ctx, id); err != nil {
			t.Fatal(err)
		}
		cur.Status = optschema.StatusComplete
		return cur, nil
	})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	boom := errors.New("boom")
	err = s.Update(ctx, id, 0, func(optschema.Job, bool) (optschema.Job, error) { return optschema.Job{}, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestProviderRejectionFiresHook(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	mp.reject = true
	h := &recHooks{}
	s := newJobStore(t, mp, func(o *Options[optschema.Job]) { o.Hooks = h })

	if err := s.SetWithGen(ctx, "r", queued(), 0, 0); err != nil {
		t.Fatalf("rejection is not an error: %v", err)
	}
	if len(h.rejected) != 1 || h.rejected[0] != "run:jobs:r" {
		t.Fatalf("rejected = %v", h.rejected)
	}
}

func TestGenStoreFailures(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	h := &recHooks{}
	snapErr := errors.New("gen snapshot down")
	bumpErr := errors.New("gen bump down")
	gens := failingGens{GenStore: genstore.NewLocalGenStore(0, 0)}

	s := newJobStore(t, mp, func(o *Options[optschema.Job]) {
		o.Hooks = h
		o.GenStore = gens
	})
	if err := s.SetWithGen(ctx, "r", queued(), 0, 0); err != nil {
		t.Fatal(err)
	}

	// snapshot failures: reads miss without deleting, writes are skipped
	gens.snapErr = snapErr
	s.gen = gens
	if _, ok, err := s.Get(ctx, "r"); err != nil || ok {
		t.Fatalf("Get with failing gens: ok=%v err=%v", ok, err)
	}
	if !mp.has("run:jobs:r") {
		t.Fatalf("entry must survive an unvalidated read")
	}
	if err := s.SetWithGen(ctx, "r", running("x"), 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "r", 0, func(j optschema.Job, _ bool) (optschema.Job, error) { return j, nil }); !errors.Is(err, snapErr) {
		t.Fatalf("Update should surface the snapshot error, got %v", err)
	}
	if h.snapErrs == 0 {
		t.Fatalf("GenSnapshotError hook not fired")
	}

	// bump failure alone
	gens.snapErr, gens.bumpErr = nil, bumpErr
	s.gen = gens
	err := s.Invalidate(ctx, "r")
	var ie *InvalidateError
	if !errors.As(err, &ie) || !errors.Is(err, bumpErr) || ie.DelErr != nil {
		t.Fatalf("expected bump-only InvalidateError, got %v", err)
	}
	if IsInvalidateOutage(err) || h.bumpErrs != 1 {
		t.Fatalf("bump-only failure misreported: outage=%v bumpErrs=%d", IsInvalidateOutage(err), h.bumpErrs)
	}

	// both fail
	mp.delErr = errors.New("provider down")
	err = s.Invalidate(ctx, "r")
	if !IsInvalidateOutage(err) || h.outages != 1 {
		t.Fatalf("expected outage, got %v (outages=%d)", err, h.outages)
	}
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	s := newJobStore(t, mp, func(o *Options[optschema.Job]) { o.Disabled = true })

	if s.Enabled() {
		t.Fatalf("store should be disabled")
	}
	if err := s.SetWithGen(ctx, "r", queued(), 0, 0); err != nil {
		t.Fatal(err)
	}
	if len(mp.m) != 0 {
		t.Fatalf("disabled store wrote %d entries", len(mp.m))
	}
	if _, ok, _ := s.Get(ctx, "r"); ok {
		t.Fatalf("disabled store returned a hit")
	}
	if err := s.Invalidate(ctx, "r"); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotGens(t *testing.T) {
	ctx := context.Background()
	s := newJobStore(t, newMemProvider(), nil)

	for i := 0; i < 2; i++ {
		if err := s.Invalidate(ctx, "b"); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.SnapshotGens(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if got["a"] != 0 || got["b"] != 2 {
		t.Fatalf("SnapshotGens = %v", got)
	}
}

func TestUntypedDocumentsOverCBOR(t *testing.T) {
	ctx := context.Background()
	doc := optwire.NewDocumentCodec(nil, optschema.Run(), c.MustCBOR[any](true))
	s, err := New(Options[any]{
		Namespace: "raw",
		Provider:  newMemProvider(),
		Codec:     doc,
		Format:    FormatCBOR,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	native := queued().Native()
	if err := s.SetWithGen(ctx, "r", native, 0, 0); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get(ctx, "r")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	rec := got.(*optwire.Record)
	if rec.Get("StatusMessage") != "waiting for a solver" {
		t.Fatalf("unexpected record %v", rec)
	}
	j, err := optschema.JobFromNative(got)
	if err != nil || j.Status != optschema.StatusQueued {
		t.Fatalf("JobFromNative: %+v err=%v", j, err)
	}
}

// TestSharedRedisBackends models two pollers in different processes sharing a
// Redis provider and Redis generations.
func TestSharedRedisBackends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	open := func() *Store[optschema.Job] {
		rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		p, err := redisprovider.New(redisprovider.Config{Client: rdb})
		if err != nil {
			t.Fatal(err)
		}
		gens, err := genstore.NewRedisGenStore(genstore.RedisConfig{
			Client: rdb, Namespace: "jobs", TTL: 24 * time.Hour, CloseClient: true,
		})
		if err != nil {
			t.Fatal(err)
		}
		return newJobStore(t, p, func(o *Options[optschema.Job]) { o.GenStore = gens })
	}
	a, b := open(), open()

	obsA := a.SnapshotGen(ctx, "r")
	if err := b.Invalidate(ctx, "r"); err != nil {
		t.Fatal(err)
	}
	if err := a.SetWithGen(ctx, "r", running("late"), obsA, 0); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Get(ctx, "r"); ok {
		t.Fatalf("stale write from the other poller leaked through")
	}

	obsB := b.SnapshotGen(ctx, "r")
	if err := b.SetWithGen(ctx, "r", running("current"), obsB, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, ok, err := a.Get(ctx, "r")
	if err != nil || !ok || *got.StatusMessage != "current" {
		t.Fatalf("cross-process read: ok=%v err=%v got=%+v", ok, err, got)
	}
	if ttl := mr.TTL("run:jobs:r"); ttl != time.Minute {
		t.Fatalf("entry TTL = %v", ttl)
	}
}
