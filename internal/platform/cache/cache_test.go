package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, time.Minute), mr
}

func TestRedis_RoundTrip(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	var got payload
	found, err := c.Get(ctx, "density:2025-06", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "density:2025-06", payload{Count: 3, Label: "Available"}))
	found, err = c.Get(ctx, "density:2025-06", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Count: 3, Label: "Available"}, got)
}

func TestRedis_TTL(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "stats", payload{Count: 1}))

	mr.FastForward(2 * time.Minute)
	var got payload
	found, err := c.Get(ctx, "stats", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_Invalidate(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "schedule:density:2025-06", payload{}))
	require.NoError(t, c.Set(ctx, "schedule:stats:2025-06-10", payload{}))
	require.NoError(t, c.Set(ctx, "other", payload{}))

	require.NoError(t, c.Invalidate(ctx, "schedule:"))
	assert.False(t, mr.Exists("clinic:schedule:density:2025-06"))
	assert.False(t, mr.Exists("clinic:schedule:stats:2025-06-10"))
	assert.True(t, mr.Exists("clinic:other"))
}

func TestRedis_GetDecodeError(t *testing.T) {
	c, mr := newTestRedis(t)
	require.NoError(t, mr.Set("clinic:broken", "not json"))
	var got payload
	_, err := c.Get(context.Background(), "broken", &got)
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	_, err = Connect(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", payload{Count: 1}))
	var got payload
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx, ""))
}
