package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrWindow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	c := New(Config{Addr: addr, Prefix: "carvalue-test:"})
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	key := "window:" + uuid.NewString()

	for want := int64(1); want <= 3; want++ {
		count, ttl, err := c.IncrWindow(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	}
}

func TestIncrWindow_RearmsMissingExpiry(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	c := New(Config{Addr: addr, Prefix: "carvalue-test:"})
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	key := "window:" + uuid.NewString()

	// a counter left behind without an expiry
	require.NoError(t, c.redisdb.Set(ctx, "carvalue-test:"+key, 5, 0).Err())

	count, ttl, err := c.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
	assert.Equal(t, time.Minute, ttl)

	left, err := c.redisdb.TTL(ctx, "carvalue-test:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, left, time.Duration(0))
	assert.LessOrEqual(t, left, time.Minute)
}

func TestIncrWindow_Unreachable(t *testing.T) {
	c := New(Config{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err := c.IncrWindow(ctx, "k", time.Minute)
	assert.Error(t, err)
}
