package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(client), mr
}

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	if err := r.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := r.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %s", got)
	}
}

func TestRedis_MissOnAbsent(t *testing.T) {
	r, _ := newTestRedis(t)
	if _, err := r.Get(context.Background(), "nope"); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestRedis_Expiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	if err := r.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	if _, err := r.Get(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestRedis_Delete(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	_ = r.Set(ctx, "k", []byte("v"), time.Minute)

	present, err := r.Delete(ctx, "k")
	if err != nil || !present {
		t.Fatalf("expected delete of present key, got present=%v err=%v", present, err)
	}
	present, err = r.Delete(ctx, "k")
	if err != nil || present {
		t.Fatalf("expected delete of absent key to report false, got present=%v err=%v", present, err)
	}
}

func TestRedis_Clear(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	_ = r.Set(ctx, "a", []byte("1"), time.Minute)
	_ = r.Set(ctx, "b", []byte("2"), 0)

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := r.Get(ctx, "a"); err != ErrCacheMiss {
		t.Fatalf("expected a cleared, got %v", err)
	}
}
