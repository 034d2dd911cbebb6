// Package cache provides the TTL key/value store behind the job listings,
// with an external Redis backend and a local in-process fallback.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"job-board/internal/config"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the uniform contract both backends implement. Values are raw
// bytes; callers own serialization. A ttl <= 0 means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Select makes the one-time backend choice at startup: Redis when an address
// is configured and reachable, the local store otherwise. There is no
// mid-request failover; if Redis drops later, calls degrade at the facade.
func Select(ctx context.Context, cfg config.Config) Store {
	if cfg.RedisAddr == "" {
		log.Printf("cache: no redis address configured, using local backend")
		return NewLocal()
	}

	r := NewRedis(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, cfg.RedisDialTimeout)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		log.Printf("cache: redis unreachable (%v), using local backend", err)
		return NewLocal()
	}
	log.Printf("cache: using redis backend at %s", cfg.RedisAddr)
	return r
}
