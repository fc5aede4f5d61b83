package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superapp/auth-service/internal/core/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsCache(client, ttl), mr
}

func TestStatsCache_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &domain.Stats{TotalUsers: 4, NewUsersToday: 1, ActiveSessions: 2, ServerStatus: "OK"}
	require.NoError(t, cache.Set(ctx, want))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStatsCache_Expires(t *testing.T) {
	cache, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.Stats{TotalUsers: 1}))
	mr.FastForward(31 * time.Second)

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsCache_Invalidate(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.Stats{TotalUsers: 1}))
	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists(statsKey))
}

func TestStatsCache_ConnectionError(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := cache.Get(context.Background())
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	_, err = Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestPing_ReportsUnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, Ping(context.Background(), client, time.Second))

	mr.Close()
	assert.Error(t, Ping(context.Background(), client, 100*time.Millisecond))
}
