package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	var miss []float32
	hit, err := c.GetJSON(ctx, "emb:x", &miss)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "emb:x", []float32{0.5, 1}, time.Minute))

	var got []float32
	hit, err = c.GetJSON(ctx, "emb:x", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []float32{0.5, 1}, got)

	require.NoError(t, c.Del(ctx, "emb:x"))
	hit, _ = c.GetJSON(ctx, "emb:x", &got)
	assert.False(t, hit)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Millisecond)

	require.NoError(t, c.SetJSON(ctx, "k", "v", 5*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	var s string
	hit, err := c.GetJSON(ctx, "k", &s)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.SetJSON(ctx, "k", "text", time.Minute))

	var n int
	hit, err := c.GetJSON(ctx, "k", &n)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKeyIsStableAndSeparatesParts(t *testing.T) {
	k := Key("emb", "model-a", "berlin")
	assert.Equal(t, k, Key("emb", "model-a", "berlin"))
	assert.True(t, strings.HasPrefix(k, "emb:"))
	assert.Len(t, k, len("emb:")+64)

	assert.NotEqual(t, Key("emb", "ab", "c"), Key("emb", "a", "bc"))
	assert.NotEqual(t, k, Key("emb", "model-b", "berlin"))
}
