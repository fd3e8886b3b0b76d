package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	c := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return c, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cacheKey("cart_user123"), `{"items":[]}`))

	doc, err := c.Get(context.Background(), "cart_user123")

	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(doc))
}

func TestGet_CacheMiss(t *testing.T) {
	c, _, cleanup := setupTestRedis(t)
	defer cleanup()

	doc, err := c.Get(context.Background(), "cart_nobody")

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, doc)
}

func TestSet_WritesWithTTL(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	err := c.Set(context.Background(), "addresses_user1", []byte(`{"addresses":[]}`))
	require.NoError(t, err)

	stored, err := mr.Get(cacheKey("addresses_user1"))
	require.NoError(t, err)
	assert.Equal(t, `{"addresses":[]}`, stored)

	ttl := mr.TTL(cacheKey("addresses_user1"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)
}

func TestSet_Expires(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cart_user1", []byte(`{}`)))
	mr.FastForward(25 * time.Minute)

	_, err := c.Get(ctx, "cart_user1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cart_user1", []byte(`{}`)))
	require.NoError(t, c.Delete(ctx, "cart_user1"))

	assert.False(t, mr.Exists(cacheKey("cart_user1")))
	// deleting a missing key is fine
	assert.NoError(t, c.Delete(ctx, "cart_user1"))
}

func TestGet_ServerDown(t *testing.T) {
	c, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, err := c.Get(context.Background(), "cart_user1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
