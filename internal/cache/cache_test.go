package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/estate-api/internal/events"
	"github.com/yourorg/estate-api/internal/redisx"
	"github.com/yourorg/estate-api/listing"
)

func TestCache_PutGetStale(t *testing.T) {
	kv := redisx.NewMemory()
	c := New(kv, time.Hour, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	key, err := c.Key(ctx, listing.Query{})
	require.NoError(t, err)
	assert.Regexp(t, `^listings:v0:[0-9a-f]{32}$`, key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	res := listing.Result{Total: 2, Visible: 2, Items: []listing.Property{{ID: 1}, {ID: 2}}}
	_, err = c.Put(ctx, key, res, "memory")
	require.NoError(t, err)

	env, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, env.Data.Total)
	assert.Equal(t, "memory", env.Meta.Source)
	assert.Equal(t, 3600, env.Meta.TTLSeconds)
	assert.False(t, env.Stale(now.Add(30*time.Second)))
	assert.True(t, env.Stale(now.Add(2*time.Minute)))
}

func TestCache_BumpChangesKeys(t *testing.T) {
	c := New(redisx.NewMemory(), time.Hour, time.Minute)
	ctx := context.Background()
	before, err := c.Key(ctx, listing.Query{Search: "bole"})
	require.NoError(t, err)

	v, err := c.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	after, err := c.Key(ctx, listing.Query{Search: "bole"})
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestCache_UnreadableEntryIsAMiss(t *testing.T) {
	kv := redisx.NewMemory()
	c := New(kv, time.Hour, time.Minute)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "listings:v0:x", "{not json", 0))

	_, ok, err := c.Get(ctx, "listings:v0:x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Lock(t *testing.T) {
	c := New(redisx.NewMemory(), time.Hour, time.Minute)
	ctx := context.Background()
	ok, err := c.Lock(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = c.Lock(ctx, "k")
	assert.False(t, ok)
	c.Unlock(ctx, "k")
	ok, _ = c.Lock(ctx, "k")
	assert.True(t, ok)
}

func TestInvalidator_BumpsOnEvent(t *testing.T) {
	c := New(redisx.NewMemory(), time.Hour, time.Minute)
	pub := events.NewInMemory(4)
	inv := &Invalidator{Cache: c, Pub: pub}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- inv.Run(ctx) }()

	require.Eventually(t, func() bool {
		pub.PublishPropertiesChanged(ctx, events.PropertiesChanged{Source: "test"})
		v, err := c.Version(ctx)
		return err == nil && v > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestInvalidator_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := New(redisx.NewMemory(), time.Hour, time.Minute)
	inv := &Invalidator{Cache: c}

	inv.Invalidate(ctx, "seed")
	inv.Invalidate(ctx, "import")
	v, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}
