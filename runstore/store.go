package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/optwire"
	"github.com/unkn0wn-root/optwire/internal/wire"
)

func (s *Store[V]) storageKey(id string) string {
	return "run:" + s.ns + ":" + id
}

// Get returns the stored document for id. Provider errors are returned;
// entries that fail validation are deleted and reported as a miss.
func (s *Store[V]) Get(ctx context.Context, id string) (V, bool, error) {
	var zero V
	if !s.enabled {
		return zero, false, nil
	}
	k := s.storageKey(id)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}

	f, err := wire.Decode(raw)
	if err != nil {
		s.heal(ctx, k, "corrupt")
		return zero, false, nil
	}
	if f.Format != s.format {
		s.heal(ctx, k, "format_mismatch")
		return zero, false, nil
	}
	cur, err := s.snapshotGen(ctx, k)
	if err != nil {
		// cannot validate; treat as a miss but keep the entry
		return zero, false, nil
	}
	if f.Gen != cur {
		s.heal(ctx, k, "gen_mismatch")
		return zero, false, nil
	}
	v, err := s.codec.Decode(f.Payload)
	if err != nil {
		s.log.Debug("run payload decode failed", optwire.Fields{"key": k, "err": err.Error()})
		s.heal(ctx, k, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

func (s *Store[V]) heal(ctx context.Context, storageKey, reason string) {
	_ = s.provider.Del(ctx, storageKey)
	s.hooks.SelfHeal(storageKey, reason)
}

// SetWithGen writes doc only if id is still at observedGen. A skipped write is
// not an error. ttl=0 means DefaultTTL.
func (s *Store[V]) SetWithGen(ctx context.Context, id string, doc V, observedGen uint64, ttl time.Duration) error {
	_, err := s.setWithGen(ctx, id, doc, observedGen, ttl)
	return err
}

func (s *Store[V]) setWithGen(ctx context.Context, id string, doc V, observedGen uint64, ttl time.Duration) (bool, error) {
	if !s.enabled {
		return false, nil
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	k := s.storageKey(id)
	cur, err := s.snapshotGen(ctx, k)
	if err != nil || cur != observedGen {
		s.log.Debug("SetWithGen skipped (gen mismatch)", optwire.Fields{"id": id, "obs": observedGen, "cur": cur})
		return false, nil
	}
	payload, err := s.codec.Encode(doc)
	if err != nil {
		return false, err
	}
	frame := wire.Encode(observedGen, s.format, payload)
	ok, err := s.provider.Set(ctx, k, frame, s.setCost(k, frame), ttl)
	if err != nil {
		return false, err
	}
	if !ok {
		s.hooks.ProviderSetRejected(k)
		s.log.Debug("SetWithGen rejected by provider", optwire.Fields{"id": id, "bytes": len(frame)})
		return false, nil
	}
	return true, nil
}

// Update is an optimistic read-modify-write: fn receives the current document
// (and whether there was one) and returns the replacement. ErrStale means the
// run was invalidated while fn ran; the caller may retry.
func (s *Store[V]) Update(ctx context.Context, id string, ttl time.Duration, fn func(cur V, found bool) (V, error)) error {
	if !s.enabled {
		return nil
	}
	obs, err := s.snapshotGen(ctx, s.storageKey(id))
	if err != nil {
		return err
	}
	cur, found, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	next, err := fn(cur, found)
	if err != nil {
		return err
	}
	written, err := s.setWithGen(ctx, id, next, obs, ttl)
	if err != nil {
		return err
	}
	if !written {
		if now, _ := s.snapshotGen(ctx, s.storageKey(id)); now != obs {
			return ErrStale
		}
	}
	return nil
}

// Invalidate bumps the generation of id and deletes its entry, so writers
// holding an older generation are skipped.
func (s *Store[V]) Invalidate(ctx context.Context, id string) error {
	if !s.enabled {
		return nil
	}
	k := s.storageKey(id)
	newGen, bumpErr := s.gen.Bump(ctx, k)
	if bumpErr != nil {
		s.hooks.GenBumpError(k, bumpErr)
		s.log.Error("gen bump error", optwire.Fields{"key": k, "err": bumpErr.Error()})
	}
	delErr := s.provider.Del(ctx, k)

	switch {
	case bumpErr != nil && delErr != nil:
		s.hooks.InvalidateOutage(id, bumpErr, delErr)
		return &InvalidateError{ID: id, BumpErr: bumpErr, DelErr: delErr}
	case bumpErr != nil || delErr != nil:
		return &InvalidateError{ID: id, BumpErr: bumpErr, DelErr: delErr}
	}
	s.log.Debug("invalidated run", optwire.Fields{"id": id, "newGen": newGen})
	return nil
}

// SnapshotGen returns the current generation of id. On a generation store
// error it returns 0; SetWithGen re-checks and skips in that case.
func (s *Store[V]) SnapshotGen(ctx context.Context, id string) uint64 {
	g, _ := s.snapshotGen(ctx, s.storageKey(id))
	return g
}

// SnapshotGens returns generations for many runs, e.g. for a poller sweeping
// every active run.
func (s *Store[V]) SnapshotGens(ctx context.Context, ids []string) (map[string]uint64, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.storageKey(id)
	}
	m, err := s.gen.SnapshotMany(ctx, keys)
	if err != nil {
		s.hooks.GenSnapshotError(s.storageKey("*"), err)
		return nil, err
	}
	out := make(map[string]uint64, len(ids))
	for i, id := range ids {
		out[id] = m[keys[i]]
	}
	return out, nil
}

func (s *Store[V]) snapshotGen(ctx context.Context, storageKey string) (uint64, error) {
	g, err := s.gen.Snapshot(ctx, storageKey)
	if err != nil {
		s.hooks.GenSnapshotError(storageKey, err)
		s.log.Warn("gen snapshot error", optwire.Fields{"key": storageKey, "err": err.Error()})
		return 0, err
	}
	return g, nil
}

// IsInvalidateOutage reports whether err is an InvalidateError where both
// steps failed.
func IsInvalidateOutage(err error) bool {
	var ie *InvalidateError
	return errors.As(err, &ie) && ie.BumpErr != nil && ie.DelErr != nil
}
