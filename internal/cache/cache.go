package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/estate-api/internal/events"
	"github.com/yourorg/estate-api/internal/redisx"
	"github.com/yourorg/estate-api/listing"
)

const versionKey = "listings:ver"

// Meta describes when an envelope was produced and when it goes stale.
type Meta struct {
	LastFetch  time.Time `json:"last_fetch_at"`
	StaleAfter time.Time `json:"stale_after"`
	TTLSeconds int       `json:"ttl_seconds"`
	Source     string    `json:"source"`
	Version    int64     `json:"version"`
}

type Envelope struct {
	Data listing.Result `json:"data"`
	Meta Meta           `json:"meta"`
}

func (e Envelope) Stale(now time.Time) bool { return now.After(e.Meta.StaleAfter) }

// Cache stores search results under versioned keys. Bumping the version
// orphans every earlier entry; they age out through their TTL.
type Cache struct {
	kv         redisx.KV
	ttl        time.Duration
	staleAfter time.Duration
	lockTTL    time.Duration
	now        func() time.Time
}

func New(kv redisx.KV, ttl, staleAfter time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if staleAfter <= 0 || staleAfter > ttl {
		staleAfter = min(5*time.Minute, ttl)
	}
	return &Cache{kv: kv, ttl: ttl, staleAfter: staleAfter, lockTTL: 8 * time.Second, now: time.Now}
}

func (c *Cache) Version(ctx context.Context) (int64, error) {
	v, err := c.kv.Get(ctx, versionKey)
	if errors.Is(err, redisx.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache version: %w", err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cache version %q: %w", v, err)
	}
	return n, nil
}

// Key returns the cache key of q under the current version.
func (c *Cache) Key(ctx context.Context, q listing.Query) (string, error) {
	v, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("listings:v%d:%s", v, q.CacheKey()), nil
}

// Get returns the envelope under key; ok is false on a miss or an unreadable entry.
func (c *Cache) Get(ctx context.Context, key string) (env Envelope, ok bool, err error) {
	val, err := c.kv.Get(ctx, key)
	if errors.Is(err, redisx.Nil) {
		return env, false, nil
	}
	if err != nil {
		return env, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), &env); err != nil {
		zap.L().Warn("dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.kv.Del(ctx, key)
		return Envelope{}, false, nil
	}
	return env, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, res listing.Result, source string) (Envelope, error) {
	now := c.now().UTC()
	env := Envelope{Data: res}
	env.Meta.LastFetch = now
	env.Meta.StaleAfter = now.Add(c.staleAfter)
	env.Meta.TTLSeconds = int(c.ttl.Seconds())
	env.Meta.Source = source
	env.Meta.Version, _ = c.Version(ctx)
	b, err := json.Marshal(env)
	if err != nil {
		return env, fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.kv.Set(ctx, key, string(b), c.ttl); err != nil {
		return env, fmt.Errorf("cache set %s: %w", key, err)
	}
	return env, nil
}

// Lock takes a short-lived fill lock on key so only one request computes a miss.
func (c *Cache) Lock(ctx context.Context, key string) (bool, error) {
	return c.kv.SetNX(ctx, key+":lock", "1", c.lockTTL)
}

func (c *Cache) Unlock(ctx context.Context, key string) {
	_ = c.kv.Del(ctx, key+":lock")
}

// Bump invalidates every cached result.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	v, err := c.kv.Incr(ctx, versionKey)
	if err != nil {
		return 0, fmt.Errorf("bump cache version: %w", err)
	}
	return v, nil
}

// Invalidator bumps the cache version whenever listings change. Run follows
// PropertiesChanged, which suits a source that reads the store directly. A
// source with its own snapshot calls Invalidate once the snapshot moved.
type Invalidator struct {
	Cache *Cache
	Pub   events.Publisher
}

func (i *Invalidator) Run(ctx context.Context) error {
	sub := i.Pub.SubscribePropertiesChanged()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-sub:
			i.Invalidate(ctx, evt.Source)
		}
	}
}

// Invalidate bumps the version now. Failures are logged; entries then age
// out through staleAfter.
func (i *Invalidator) Invalidate(ctx context.Context, reason string) {
	v, err := i.Cache.Bump(ctx)
	if err != nil {
		zap.L().Warn("cache invalidation failed", zap.String("reason", reason), zap.Error(err))
		return
	}
	zap.L().Info("listing cache invalidated", zap.String("reason", reason), zap.Int64("version", v))
}
