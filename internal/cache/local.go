package cache

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
	timer     *time.Timer
}

// Local is an in-process TTL store backed by a map with per-key eviction
// timers. All map and timer mutations happen under the mutex since request
// handling runs across goroutines.
type Local struct {
	mu      sync.Mutex
	entries map[string]localEntry
}

// NewLocal creates an empty local store.
func NewLocal() *Local {
	return &Local{entries: make(map[string]localEntry)}
}

// Get returns the value for key, performing a lazy expiry check in case the
// eviction timer has not fired yet. A logically expired key is never returned.
func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !time.Now().Before(e.expiresAt) {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(l.entries, key)
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set stores value under key. A positive ttl (re)schedules an eviction timer;
// any prior timer for the key is cancelled first so a stale timer cannot
// delete a value that was overwritten with a longer ttl. ttl <= 0 means the
// entry never expires.
func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.entries[key]; ok && prev.timer != nil {
		prev.timer.Stop()
	}

	e := localEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
		e.timer = time.AfterFunc(ttl, func() {
			l.evict(key, e.expiresAt)
		})
	}
	l.entries[key] = e
	return nil
}

// evict removes key only if the stored entry still carries the deadline the
// timer was armed for; a concurrent re-Set replaces the deadline and wins.
func (l *Local) evict(key string, deadline time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[key]; ok && e.expiresAt.Equal(deadline) {
		delete(l.entries, key)
	}
}

// Delete removes key, reporting whether it was present.
func (l *Local) Delete(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(l.entries, key)
	return true, nil
}

// Clear drops every entry and cancels all pending timers.
func (l *Local) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	l.entries = make(map[string]localEntry)
	return nil
}

// Ping always succeeds for the local backend.
func (l *Local) Ping(_ context.Context) error {
	return nil
}
