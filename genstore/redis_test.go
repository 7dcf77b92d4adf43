package genstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisGenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, err := NewRedisGenStore(RedisConfig{Client: rdb, Namespace: "jobs", TTL: ttl, CloseClient: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, mr
}

func TestRedisNilClient(t *testing.T) {
	if _, err := NewRedisGenStore(RedisConfig{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestRedisBumpAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, 0)

	if g, err := s.Snapshot(ctx, "run:jobs:a"); err != nil || g != 0 {
		t.Fatalf("missing gen: g=%d err=%v", g, err)
	}
	for want := uint64(1); want <= 3; want++ {
		g, err := s.Bump(ctx, "run:jobs:a")
		if err != nil || g != want {
			t.Fatalf("Bump: g=%d err=%v want %d", g, err, want)
		}
	}
	if v, err := mr.Get("gen:jobs:run:jobs:a"); err != nil || v != "3" {
		t.Fatalf("raw key: %q err=%v", v, err)
	}
	if mr.TTL("gen:jobs:run:jobs:a") != 0 {
		t.Fatalf("unexpected TTL without config")
	}

	got, err := s.SnapshotMany(ctx, []string{"run:jobs:a", "run:jobs:b"})
	if err != nil {
		t.Fatal(err)
	}
	if got["run:jobs:a"] != 3 || got["run:jobs:b"] != 0 {
		t.Fatalf("SnapshotMany = %v", got)
	}
}

func TestRedisTTLExpiresGenerations(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, time.Hour)

	if _, err := s.Bump(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("gen:jobs:k"); ttl != time.Hour {
		t.Fatalf("TTL = %v", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if g, err := s.Snapshot(ctx, "k"); err != nil || g != 0 {
		t.Fatalf("expired gen: g=%d err=%v", g, err)
	}
}

func TestRedisParseError(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, 0)

	if err := mr.Set("gen:jobs:bad", "not-a-number"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Snapshot(ctx, "bad"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := s.SnapshotMany(ctx, []string{"bad"}); err == nil {
		t.Fatalf("expected parse error from SnapshotMany")
	}
}
