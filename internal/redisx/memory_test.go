package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ KV = (*Client)(nil)
	_ KV = (*Memory)(nil)
)

func TestMemory_StringsAndExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, Nil)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	ok, err := m.SetNX(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, Nil, "expired keys disappear")

	ok, err = m.SetNX(ctx, "k", "other", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_Incr(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		n, err := m.Incr(ctx, "ver")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	require.NoError(t, m.Set(ctx, "s", "abc", 0))
	_, err := m.Incr(ctx, "s")
	assert.Error(t, err)
}

func TestMemory_Sets(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SAdd(ctx, "fav", "3", "1", "3"))
	members, err := m.SMembers(ctx, "fav")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, members)

	ok, err := m.SIsMember(ctx, "fav", "1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.SRem(ctx, "fav", "1", "3"))
	members, err = m.SMembers(ctx, "fav")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, m.Set(ctx, "str", "x", 0))
	assert.Error(t, m.SAdd(ctx, "str", "1"))
}
