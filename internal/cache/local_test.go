package cache

import (
	"context"
	"testing"
	"time"
)

func TestLocal_RoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	if err := l.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := l.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("expected v, got %s", got)
	}
}

func TestLocal_MissOnAbsent(t *testing.T) {
	l := NewLocal()
	if _, err := l.Get(context.Background(), "nope"); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestLocal_Expiry(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	if err := l.Set(ctx, "k", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(120 * time.Millisecond)
	if _, err := l.Get(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestLocal_LazyExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	// Arm the entry with an already-passed deadline but leave the timer far
	// out, simulating a delayed eviction timer.
	l.mu.Lock()
	l.entries["k"] = localEntry{value: []byte("v"), expiresAt: time.Now().Add(-time.Second)}
	l.mu.Unlock()

	if _, err := l.Get(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("expected logically expired key to miss, got %v", err)
	}
}

func TestLocal_ResetCancelsStaleTimer(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	if err := l.Set(ctx, "k", []byte("v1"), 50*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Overwrite with a longer ttl; the first timer must not evict the new value.
	if err := l.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("re-set: %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	got, err := l.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected overwritten value to survive, got miss: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected v2, got %s", got)
	}
}

func TestLocal_NoExpiryWhenTTLZero(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	if err := l.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := l.Get(ctx, "k"); err != nil {
		t.Fatalf("expected no expiry, got %v", err)
	}
}

func TestLocal_Delete(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	_ = l.Set(ctx, "k", []byte("v"), time.Minute)

	present, err := l.Delete(ctx, "k")
	if err != nil || !present {
		t.Fatalf("expected delete of present key, got present=%v err=%v", present, err)
	}
	present, err = l.Delete(ctx, "k")
	if err != nil || present {
		t.Fatalf("expected delete of absent key to report false, got present=%v err=%v", present, err)
	}
}

func TestLocal_Clear(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	_ = l.Set(ctx, "a", []byte("1"), time.Minute)
	_ = l.Set(ctx, "b", []byte("2"), 0)

	if err := l.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := l.Get(ctx, "a"); err != ErrCacheMiss {
		t.Fatalf("expected a cleared, got %v", err)
	}
	if _, err := l.Get(ctx, "b"); err != ErrCacheMiss {
		t.Fatalf("expected b cleared, got %v", err)
	}
}
