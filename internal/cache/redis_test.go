package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_service_finder/internal/models"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, "", time.Minute), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetMatches(ctx, "plumber", 5)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	matches := []models.Match{{ID: "1", Score: 0.91}, {ID: "7", Score: 0.42}}
	require.NoError(t, c.SetMatches(ctx, "plumber", 5, matches))

	got, err := c.GetMatches(ctx, "plumber", 5)
	require.NoError(t, err)
	assert.Equal(t, matches, got)

	_, err = c.GetMatches(ctx, "plumber", 10)
	assert.True(t, errors.Is(err, ErrCacheMiss), "k is part of the key")
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetMatches(ctx, "gym", 3, []models.Match{{ID: "g1", Score: 1}}))
	assert.Equal(t, time.Minute, mr.TTL(c.Key("gym", 3)))

	mr.FastForward(2 * time.Minute)
	_, err := c.GetMatches(ctx, "gym", 3)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	key := c.Key("cafe", 10)
	assert.Contains(t, key, DefaultPrefix)
	assert.Len(t, key, len(DefaultPrefix)+64)
	assert.NotEqual(t, key, c.Key("cafe", 11))
}

func TestRedisCache_CorruptedValue(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(c.Key("dentist", 5), "not json"))

	_, err := c.GetMatches(context.Background(), "dentist", 5)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisCache_Flush(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetMatches(ctx, "a", 1, nil))
	require.NoError(t, c.SetMatches(ctx, "b", 1, nil))
	require.NoError(t, mr.Set("other:key", "keep"))

	n, err := c.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("other:key"))
}
