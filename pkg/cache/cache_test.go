package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryIncrWindow(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.now))
	defer mc.Close()
	ctx := context.Background()

	n, ttl, err := mc.IncrWindow(ctx, "ip:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, ttl)

	clk.t = clk.t.Add(20 * time.Second)
	n, ttl, err = mc.IncrWindow(ctx, "ip:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 40*time.Second, ttl)

	clk.t = clk.t.Add(40 * time.Second)
	n, ttl, err = mc.IncrWindow(ctx, "ip:1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "window expired")
	assert.Equal(t, time.Minute, ttl)
}

func TestMemoryPurgeAndDelete(t *testing.T) {
	clk := &clock{t: time.Unix(0, 0)}
	mc := NewMemoryCache(WithMemoryCleanup(0), WithMemoryClock(clk.now))
	defer mc.Close()
	ctx := context.Background()

	_, _, _ = mc.IncrWindow(ctx, "a", time.Second)
	_, _, _ = mc.IncrWindow(ctx, "b", time.Hour)
	_, _, _ = mc.IncrWindow(ctx, "c", time.Hour)
	clk.t = clk.t.Add(2 * time.Second)
	mc.purge()
	assert.Equal(t, 2, mc.Len())

	require.NoError(t, mc.Delete(ctx, "b"))
	assert.Equal(t, 1, mc.Len())
	require.NoError(t, mc.Close())
	require.NoError(t, mc.Close())
}

func TestRedisKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := NewRedisCacheFromClient(client, "stockpulse")
	assert.Equal(t, "stockpulse:rl:1.2.3.4", c.wrapKey("rl:1.2.3.4"))
	assert.Equal(t, []string{"stockpulse:a", "stockpulse:b"}, c.wrapKeys("a", "b"))
	assert.Equal(t, "k", NewRedisCacheFromClient(client, "").wrapKey("k"))
}

func TestRedisOptions(t *testing.T) {
	cfg := defaultRedisConfig()
	for _, opt := range []RedisOption{
		WithRedisAddr("redis:6380"),
		WithRedisAuth("secret", 3),
		WithRedisPool(0, 5),
		WithRedisPrefix("stockpulse:prod"),
	} {
		opt(cfg)
	}
	assert.Equal(t, "redis:6380", cfg.Addr)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 3, cfg.DB)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5, cfg.MinIdleConns)
	assert.Equal(t, "stockpulse:prod", cfg.Prefix)
}

func TestNewRedisCacheFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, WithRedisAddr("127.0.0.1:1"))
	assert.ErrorContains(t, err, "redis ping")
}
