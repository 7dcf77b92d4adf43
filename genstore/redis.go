package genstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis genstore: nil client")

// RedisGenStore shares generations across processes and survives restarts.
// With a TTL, idle generation keys expire; readers then observe gen=0 and
// stale run entries self-heal.
type RedisGenStore struct {
	rdb         redis.UniversalClient
	ns          string
	ttl         time.Duration
	closeClient bool
}

var _ GenStore = (*RedisGenStore)(nil)

type RedisConfig struct {
	Client    redis.UniversalClient
	Namespace string        // should match the run store namespace
	TTL       time.Duration // 0 disables expiry
	// CloseClient closes Client on Close; set only when the store owns it.
	CloseClient bool
}

func NewRedisGenStore(cfg RedisConfig) (*RedisGenStore, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &RedisGenStore{
		rdb:         cfg.Client,
		ns:          cfg.Namespace,
		ttl:         cfg.TTL,
		closeClient: cfg.CloseClient,
	}, nil
}

func (s *RedisGenStore) key(k string) string { return "gen:" + s.ns + ":" + k }

func parseGen(v any) (uint64, error) {
	switch vv := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseUint(vv, 10, 64)
	case []byte:
		return strconv.ParseUint(string(vv), 10, 64)
	case int64:
		if vv < 0 {
			return 0, fmt.Errorf("negative generation %d", vv)
		}
		return uint64(vv), nil
	default:
		return strconv.ParseUint(fmt.Sprint(vv), 10, 64)
	}
}

func (s *RedisGenStore) Snapshot(ctx context.Context, storageKey string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(storageKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	g, err := parseGen(res)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse at %s: %w", storageKey, err)
	}
	return g, nil
}

// SnapshotMany reads every key with one MGET.
func (s *RedisGenStore) SnapshotMany(ctx context.Context, storageKeys []string) (map[string]uint64, error) {
	if len(storageKeys) == 0 {
		return map[string]uint64{}, nil
	}
	keys := make([]string, len(storageKeys))
	for i, k := range storageKeys {
		keys[i] = s.key(k)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(storageKeys))
	for i, v := range vals {
		g, err := parseGen(v)
		if err != nil {
			return nil, fmt.Errorf("redis gen parse at %s: %w", storageKeys[i], err)
		}
		out[storageKeys[i]] = g
	}
	return out, nil
}

// Bump increments the generation. With a TTL, INCR and EXPIRE share one
// pipelined round trip.
func (s *RedisGenStore) Bump(ctx context.Context, storageKey string) (uint64, error) {
	k := s.key(storageKey)
	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Cleanup is a no-op; Redis expires keys itself when a TTL is set.
func (s *RedisGenStore) Cleanup(time.Duration) {}

func (s *RedisGenStore) Close(context.Context) error {
	if !s.closeClient {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
