package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksBackend(t *testing.T) {
	c, err := New("", 0)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	assert.IsType(t, &Memory{}, c)

	s, err := miniredis.Run()
	if err != nil {
		t.Skip(err)
	}
	t.Cleanup(s.Close)

	c, err = New(s.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	assert.IsType(t, &Valkey{}, c)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newMemory(time.Minute, 0, func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "a", "1", 0))
	require.NoError(t, m.Set(ctx, "b", "2", 2*time.Minute))

	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(90 * time.Second)
	_, ok, _ = m.Get(ctx, "a")
	assert.False(t, ok, "default ttl entry should expire")
	v, ok, _ = m.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "b"))
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryJanitorSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(20 * time.Millisecond)
	t.Cleanup(m.Close)

	for i := 0; i < 500; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("page:%d", i), "x", 0))
	}
	require.Equal(t, 500, m.Len())
	assert.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryBoundedEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := newMemory(time.Minute, 3, func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "b", "2", 3*time.Minute))
	require.NoError(t, m.Set(ctx, "c", "3", 2*time.Minute))
	require.NoError(t, m.Set(ctx, "d", "4", 4*time.Minute))
	assert.Equal(t, 3, m.Len())
	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok, "entry closest to expiry is evicted")

	// Expired entries are dropped before any live one.
	now = now.Add(150 * time.Second)
	require.NoError(t, m.Set(ctx, "e", "5", time.Minute))
	assert.Equal(t, 3, m.Len())
	for _, key := range []string{"b", "d", "e"} {
		_, ok, _ := m.Get(ctx, key)
		assert.True(t, ok, key)
	}

	// Overwriting an existing key never evicts.
	require.NoError(t, m.Set(ctx, "b", "6", time.Minute))
	assert.Equal(t, 3, m.Len())
}

func TestValkeyRoundTrip(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Skip(err)
	}
	t.Cleanup(s.Close)

	c, err := New(s.Addr(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	ctx := context.Background()
	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "products:tr", `{"docs":[]}`, 0))
	assert.True(t, s.Exists(keyPrefix+"products:tr"))
	assert.Equal(t, time.Minute, s.TTL(keyPrefix+"products:tr"))

	v, ok, err := c.Get(ctx, "products:tr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"docs":[]}`, v)

	s.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "products:tr")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "x", "y", time.Hour))
	require.NoError(t, c.Delete(ctx, "x"))
	_, ok, _ = c.Get(ctx, "x")
	assert.False(t, ok)
}
